package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opensensor/stationd/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Load parses os.Args, which under go test carries -test.* flags the
// daemon's flag set does not know.
func stubArgs(t *testing.T) {
	t.Helper()
	old := os.Args
	os.Args = []string{"stationd"}
	t.Cleanup(func() { os.Args = old })
}

func writeConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stationd.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("STATIOND_CONFIG", path)
}

func TestLoadDefaults(t *testing.T) {
	stubArgs(t)
	t.Setenv("STATIOND_CONFIG", filepath.Join(t.TempDir(), "stationd.toml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Interval)
	assert.Equal(t, 900, cfg.BatchDuration)
	assert.Equal(t, 10, cfg.WarmupReadings)
	assert.True(t, cfg.Compensation)
	assert.Equal(t, 2.25, cfg.CompensationFactor)
	assert.True(t, cfg.HealthEnabled)
	assert.Equal(t, 12, cfg.HealthEvery)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, "health", cfg.HealthDir)
	assert.Equal(t, "snappy", cfg.Compression)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Storage.SyncEnabled)
	assert.Equal(t, 15, cfg.Storage.SyncInterval)
	assert.Equal(t, "s3", cfg.Storage.Provider)
}

func TestLoadFromFile(t *testing.T) {
	stubArgs(t)
	writeConfig(t, `
station_id = "7f2c1de0-0000-4000-8000-000000000001"
interval = 10
batch_duration = 600
log_level = "debug"

[storage]
sync = true
sync_interval = 30
provider = "r2"
bucket = "sensor-data"
prefix = "stations/prod"
endpoint = "https://example.r2.cloudflarestorage.com"
`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7f2c1de0-0000-4000-8000-000000000001", cfg.StationID)
	assert.Equal(t, cfg.StationID, cfg.Station().String())
	assert.Equal(t, 10*time.Second, cfg.ReadInterval())
	assert.Equal(t, 10*time.Minute, cfg.BatchEvery())
	assert.Equal(t, 30*time.Minute, cfg.SyncEvery())
	assert.Equal(t, "r2", cfg.Storage.Provider)
	assert.Equal(t, "sensor-data", cfg.Storage.Bucket)
}

func TestLoadMalformedFile(t *testing.T) {
	stubArgs(t)
	writeConfig(t, "interval = = 5\n")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.ErrReadConfig, errors.CodeOf(err))
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Interval:      5,
			BatchDuration: 900,
			LogLevel:      "info",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr errors.ErrorCode
	}{
		{"valid", func(*Config) {}, ""},
		{"zero interval", func(c *Config) { c.Interval = 0 }, errors.ErrInvalidInterval},
		{"negative interval", func(c *Config) { c.Interval = -5 }, errors.ErrInvalidInterval},
		{"batch shorter than a minute", func(c *Config) { c.BatchDuration = 30 }, errors.ErrInvalidInterval},
		{"bad station id", func(c *Config) { c.StationID = "pi-garden-1" }, errors.ErrInvalidStationID},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, errors.ErrInvalidLogLevel},
		{"log level the logger cannot parse", func(c *Config) { c.LogLevel = "warning" }, errors.ErrInvalidLogLevel},
		{"health enabled with zero cadence", func(c *Config) {
			c.HealthEnabled = true
			c.HealthEvery = 0
		}, errors.ErrInvalidInterval},
		{"health disabled ignores cadence", func(c *Config) { c.HealthEnabled = false; c.HealthEvery = 0 }, ""},
		{"compensation with zero factor", func(c *Config) {
			c.Compensation = true
			c.CompensationFactor = 0
		}, errors.ErrInvalidFactor},
		{"compensation with negative factor", func(c *Config) {
			c.Compensation = true
			c.CompensationFactor = -2.25
		}, errors.ErrInvalidFactor},
		{"sync without bucket", func(c *Config) { c.Storage.SyncEnabled = true; c.Storage.SyncInterval = 15 }, errors.ErrMissingConfig},
		{"sync with zero interval", func(c *Config) {
			c.Storage.SyncEnabled = true
			c.Storage.Bucket = "b"
			c.Storage.SyncInterval = 0
		}, errors.ErrInvalidInterval},
		{"journal without path", func(c *Config) { c.Journal = true }, errors.ErrMissingConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, errors.CodeOf(err))
		})
	}
}

func TestFlagsOverrideFileAndDefaults(t *testing.T) {
	old := os.Args
	os.Args = []string{"stationd", "--interval", "30", "--log-level", "debug"}
	t.Cleanup(func() { os.Args = old })
	writeConfig(t, "interval = 10\n")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Interval, "flags win over the config file")
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestEmptyStationIDIsAllowed(t *testing.T) {
	stubArgs(t)
	t.Setenv("STATIOND_CONFIG", filepath.Join(t.TempDir(), "stationd.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.StationID, "the daemon generates an identifier at startup when unset")
}
