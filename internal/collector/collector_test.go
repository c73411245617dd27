package collector

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/opensensor/stationd/internal/config"
	"github.com/opensensor/stationd/internal/errors"
	"github.com/opensensor/stationd/internal/health"
	"github.com/opensensor/stationd/internal/journal"
	"github.com/opensensor/stationd/internal/sensors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	readings int
}

func (f *fakeSource) Read() sensors.Reading {
	f.readings++
	temp := float32(20.0)
	return sensors.Reading{
		Timestamp:   time.Date(2024, 3, 1, 10, 30, f.readings, 0, time.UTC),
		StationID:   uuid.MustParse("7f2c1de0-0000-4000-8000-000000000001"),
		Temperature: &temp,
	}
}

type fakeHealth struct {
	collected int
}

func (f *fakeHealth) Collect() health.Record {
	f.collected++
	return health.Record{Timestamp: time.Now().UTC()}
}

type fakeWriter struct {
	dataBatches   [][]sensors.Reading
	healthBatches [][]health.Record
	failData      bool
}

func (f *fakeWriter) WriteReadings(batch []sensors.Reading, _ time.Time) (string, error) {
	if f.failData {
		return "", errors.New().New(errors.ErrWriteFailed)
	}
	copied := make([]sensors.Reading, len(batch))
	copy(copied, batch)
	f.dataBatches = append(f.dataBatches, copied)
	return "/tmp/data_1030.parquet", nil
}

func (f *fakeWriter) WriteHealth(batch []health.Record, _ time.Time) (string, error) {
	copied := make([]health.Record, len(batch))
	copy(copied, batch)
	f.healthBatches = append(f.healthBatches, copied)
	return "/tmp/health_1030.parquet", nil
}

type fakeSyncer struct {
	calls []string
	count int
}

func (f *fakeSyncer) SyncDirectory(_ context.Context, dir string) int {
	f.calls = append(f.calls, dir)
	return f.count
}

func testConfig() *config.Config {
	return &config.Config{
		StationID:      "7f2c1de0-0000-4000-8000-000000000001",
		Interval:       5,
		BatchDuration:  900,
		WarmupReadings: 10,
		HealthEnabled:  true,
		HealthEvery:    12,
		OutputDir:      "output",
		HealthDir:      "health",
		Storage:        config.Storage{SyncInterval: 15},
	}
}

func newTestCollector(cfg *config.Config, src SensorSource, hs HealthSource, w BatchWriter, s Syncer) *Collector {
	rec, _ := journal.New(false, "")
	c := New(cfg, src, hs, w, s, rec)
	// Park both boundaries far in the future so ticks never flush
	// unless a test moves them.
	c.nextBatch = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
	c.nextSync = c.nextBatch
	return c
}

func TestWarmupSuppression(t *testing.T) {
	cfg := testConfig()
	src := &fakeSource{}
	w := &fakeWriter{}
	c := newTestCollector(cfg, src, nil, w, nil)

	ctx := context.Background()
	for i := 0; i < cfg.WarmupReadings; i++ {
		c.tick(ctx)
	}
	assert.Empty(t, c.buffer, "warm-up readings must never be buffered")
	assert.Equal(t, cfg.WarmupReadings, src.readings, "sensors are still read during warm-up")

	c.tick(ctx)
	assert.Len(t, c.buffer, 1, "first post-warm-up reading must be buffered")
}

func TestHealthCadence(t *testing.T) {
	cfg := testConfig()
	cfg.WarmupReadings = 0
	cfg.HealthEvery = 3
	hs := &fakeHealth{}
	c := newTestCollector(cfg, &fakeSource{}, hs, &fakeWriter{}, nil)

	ctx := context.Background()
	for i := 0; i < 9; i++ {
		c.tick(ctx)
	}

	assert.Equal(t, 3, hs.collected, "health collected every third tick")
	assert.Len(t, c.healthBuffer, 3)
}

func TestFlushAtBatchBoundary(t *testing.T) {
	cfg := testConfig()
	cfg.WarmupReadings = 0
	w := &fakeWriter{}
	c := newTestCollector(cfg, &fakeSource{}, nil, w, nil)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		c.tick(ctx)
	}
	require.Len(t, c.buffer, 5)

	c.nextBatch = time.Now().UTC().Add(-time.Minute)
	c.tick(ctx)

	require.Len(t, w.dataBatches, 1)
	assert.Len(t, w.dataBatches[0], 6, "boundary tick's reading is included in the flush")
	assert.Empty(t, c.buffer, "buffer cleared after successful flush")
	assert.True(t, c.nextBatch.After(time.Now().UTC()), "next boundary recomputed")
}

func TestFailedFlushRetainsBuffer(t *testing.T) {
	cfg := testConfig()
	cfg.WarmupReadings = 0
	w := &fakeWriter{failData: true}
	c := newTestCollector(cfg, &fakeSource{}, nil, w, nil)

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		c.tick(ctx)
	}
	c.nextBatch = time.Now().UTC().Add(-time.Minute)
	c.tick(ctx)

	assert.Len(t, c.buffer, 5, "failed flush must not drop buffered readings")
	assert.True(t, c.nextBatch.After(time.Now().UTC()), "retry happens at the next boundary, not every tick")

	// Retry succeeds at the following boundary and drains everything.
	w.failData = false
	c.nextBatch = time.Now().UTC().Add(-time.Minute)
	c.tick(ctx)
	require.Len(t, w.dataBatches, 1)
	assert.Len(t, w.dataBatches[0], 6)
	assert.Empty(t, c.buffer)
}

func TestSyncAtBoundarySyncsBothTrees(t *testing.T) {
	cfg := testConfig()
	cfg.WarmupReadings = 0
	s := &fakeSyncer{count: 2}
	c := newTestCollector(cfg, &fakeSource{}, nil, &fakeWriter{}, s)

	c.nextSync = time.Now().UTC().Add(-time.Minute)
	c.tick(context.Background())

	assert.Equal(t, []string{"output", "health"}, s.calls)
	assert.True(t, c.nextSync.After(time.Now().UTC()))
}

func TestShutdownFlushesAndSyncs(t *testing.T) {
	cfg := testConfig()
	cfg.WarmupReadings = 0
	w := &fakeWriter{}
	s := &fakeSyncer{}
	c := newTestCollector(cfg, &fakeSource{}, nil, w, s)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		c.tick(ctx)
	}

	c.shutdown()

	require.Len(t, w.dataBatches, 1, "shutdown flushes the remaining buffer")
	assert.Len(t, w.dataBatches[0], 3)
	assert.NotEmpty(t, s.calls, "shutdown performs a final sync attempt")
}
