// Package collector owns the read-buffer-flush-sync loop. One
// goroutine drives everything; the buffers, boundaries and sync state
// have exactly one writer and need no locking.
package collector

import (
	"context"
	"time"

	"github.com/opensensor/stationd/internal/config"
	"github.com/opensensor/stationd/internal/health"
	"github.com/opensensor/stationd/internal/journal"
	"github.com/opensensor/stationd/internal/logger"
	"github.com/opensensor/stationd/internal/sensors"
)

// Collector is the collection state machine: it warms up, buffers
// readings, flushes at clock-aligned batch boundaries and triggers
// sync at clock-aligned sync boundaries.
type Collector struct {
	cfg          *config.Config
	source       SensorSource
	healthSource HealthSource
	writer       BatchWriter
	syncer       Syncer
	journal      journal.Recorder

	buffer       []sensors.Reading
	healthBuffer []health.Record

	readingsCount int
	ticks         int

	nextBatch time.Time
	nextSync  time.Time

	now func() time.Time
}

func New(
	cfg *config.Config,
	source SensorSource,
	healthSource HealthSource,
	batchWriter BatchWriter,
	syncer Syncer,
	recorder journal.Recorder,
) *Collector {
	c := &Collector{
		cfg:          cfg,
		source:       source,
		healthSource: healthSource,
		writer:       batchWriter,
		syncer:       syncer,
		journal:      recorder,
		now:          time.Now,
	}

	c.nextBatch = NextBoundary(c.now(), cfg.BatchEvery())
	if syncer != nil {
		c.nextSync = NextBoundary(c.now(), cfg.SyncEvery())
	}

	return c
}

// Run blocks until the context is cancelled. On cancellation it
// performs one final flush of any buffered readings and one final sync
// attempt before returning.
func (c *Collector) Run(ctx context.Context) error {
	batchMinutes := int(c.cfg.BatchEvery() / time.Minute)
	logger.Info().
		Int("interval_s", c.cfg.Interval).
		Int("batch_min", batchMinutes).
		Msg("Starting collection with clock-aligned batches")
	logger.Info().
		Int("readings", c.cfg.WarmupReadings).
		Int("approx_s", c.cfg.WarmupReadings*c.cfg.Interval).
		Msg("Sensor warm-up: initial readings will be discarded")
	logger.Info().
		Str("first_batch", c.nextBatch.Format("15:04:05 UTC")).
		Msg("First batch scheduled")

	if c.syncer != nil {
		logger.Info().
			Int("sync_min", int(c.cfg.SyncEvery()/time.Minute)).
			Str("first_sync", c.nextSync.Format("15:04:05 UTC")).
			Msg("Auto-sync enabled with clock-aligned intervals")
	}

	ticker := time.NewTicker(c.cfg.ReadInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return nil
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

// tick runs one poll cycle: read, buffer, maybe flush, maybe sync.
func (c *Collector) tick(ctx context.Context) {
	now := c.now().UTC()

	reading := c.source.Read()
	c.readingsCount++
	c.ticks++

	if c.readingsCount <= c.cfg.WarmupReadings {
		logger.Debug().
			Int("reading", c.readingsCount).
			Int("warmup", c.cfg.WarmupReadings).
			Msg("Skipping warm-up reading")
		return
	}

	c.buffer = append(c.buffer, reading)

	if c.healthSource != nil && c.ticks%c.cfg.HealthEvery == 0 {
		c.healthBuffer = append(c.healthBuffer, c.healthSource.Collect())
	}

	if !now.Before(c.nextBatch) {
		c.flush(ctx, now)
		c.nextBatch = NextBoundary(now, c.cfg.BatchEvery())
		logger.Info().
			Str("next_batch", c.nextBatch.Format("15:04:05 UTC")).
			Msg("Next batch scheduled")
	}

	if c.syncer != nil && !now.Before(c.nextSync) {
		c.sync(ctx)
		c.nextSync = NextBoundary(now, c.cfg.SyncEvery())
		logger.Info().
			Str("next_sync", c.nextSync.Format("15:04:05 UTC")).
			Msg("Next sync scheduled")
	}
}

// flush writes both buffers. A failed write keeps the buffer intact so
// the data rides along to the next boundary; repeated failures grow
// the buffer without bound, which is preferred over silent loss.
func (c *Collector) flush(ctx context.Context, flushedAt time.Time) {
	if len(c.buffer) == 0 && len(c.healthBuffer) == 0 {
		logger.Warn().Msg("No data to flush")
		return
	}

	if len(c.buffer) > 0 {
		start := c.now()
		path, err := c.writer.WriteReadings(c.buffer, flushedAt)
		c.record(ctx, journal.KindFlushData, len(c.buffer), c.now().Sub(start), err)

		if err != nil {
			logger.Error().Err(err).
				Int("buffered", len(c.buffer)).
				Msg("Failed to flush batch, retaining buffer")
		} else {
			logger.Info().
				Int("rows", len(c.buffer)).
				Str("path", path).
				Msg("Batch written")
			c.buffer = c.buffer[:0]
		}
	}

	if len(c.healthBuffer) > 0 {
		start := c.now()
		path, err := c.writer.WriteHealth(c.healthBuffer, flushedAt)
		c.record(ctx, journal.KindFlushHealth, len(c.healthBuffer), c.now().Sub(start), err)

		if err != nil {
			logger.Error().Err(err).
				Int("buffered", len(c.healthBuffer)).
				Msg("Failed to flush health batch, retaining buffer")
		} else {
			logger.Info().
				Int("rows", len(c.healthBuffer)).
				Str("path", path).
				Msg("Health batch written")
			c.healthBuffer = c.healthBuffer[:0]
		}
	}
}

// sync mirrors the data tree, and the health tree when enabled, to
// remote storage. Sync never fails the tick; connectivity problems are
// absorbed by the engine's offline state.
func (c *Collector) sync(ctx context.Context) {
	start := c.now()

	synced := c.syncer.SyncDirectory(ctx, c.cfg.OutputDir)
	if c.cfg.HealthEnabled {
		synced += c.syncer.SyncDirectory(ctx, c.cfg.HealthDir)
	}

	c.record(ctx, journal.KindSync, synced, c.now().Sub(start), nil)

	if synced > 0 {
		logger.Info().Int("files", synced).Msg("Synced files to cloud storage")
	}
}

func (c *Collector) record(ctx context.Context, kind string, count int, duration time.Duration, opErr error) {
	event := &journal.Event{
		Timestamp: c.now().UTC(),
		Kind:      kind,
		ItemCount: count,
		Duration:  duration,
		OK:        opErr == nil,
	}
	if opErr != nil {
		event.Detail = opErr.Error()
	}

	if err := c.journal.Record(ctx, event); err != nil {
		logger.Warn().Err(err).Msg("Failed to record journal event")
	}
}

// shutdown performs the final flush-then-sync sequence after the run
// context is cancelled.
func (c *Collector) shutdown() {
	logger.Info().Msg("Stopping collection...")

	ctx := context.Background()

	if len(c.buffer) > 0 || len(c.healthBuffer) > 0 {
		c.flush(ctx, c.now().UTC())
	}

	if c.syncer != nil {
		logger.Info().Msg("Performing final sync...")
		c.sync(ctx)
	}
}
