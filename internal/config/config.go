package config

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/opensensor/stationd/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel = "info"

	defaultReadInterval   = 5   // seconds between sensor reads
	defaultBatchDuration  = 900 // seconds per batch (15 minutes)
	defaultWarmupReadings = 10
	defaultHealthEvery    = 12 // collect health every Nth tick
	defaultSyncInterval   = 15 // minutes between sync attempts
	defaultCompFactor     = 2.25
)

// Config holds the immutable station configuration. Values are loaded
// once at startup from the config file, environment and flags, and are
// never mutated afterwards.
type Config struct {
	StationID string `mapstructure:"station_id"`

	Interval       int `mapstructure:"interval"`
	BatchDuration  int `mapstructure:"batch_duration"`
	WarmupReadings int `mapstructure:"warmup_readings"`

	Compensation       bool    `mapstructure:"compensation"`
	CompensationFactor float64 `mapstructure:"compensation_factor"`

	HealthEnabled bool `mapstructure:"health"`
	HealthEvery   int  `mapstructure:"health_every"`

	Simulate bool `mapstructure:"simulate"`

	OutputDir   string `mapstructure:"output_dir"`
	HealthDir   string `mapstructure:"health_dir"`
	Compression string `mapstructure:"compression"`

	LogLevel string `mapstructure:"log_level"`

	Journal   bool   `mapstructure:"journal"`
	JournalDB string `mapstructure:"journal_db"`

	Storage Storage `mapstructure:"storage"`
}

// Storage holds the cloud sync configuration. Credentials are opaque
// connection parameters; provider selection happens once at startup.
type Storage struct {
	SyncEnabled     bool   `mapstructure:"sync"`
	SyncInterval    int    `mapstructure:"sync_interval"`
	Provider        string `mapstructure:"provider"`
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// Station returns the parsed station identifier.
func (c *Config) Station() uuid.UUID {
	id, _ := uuid.Parse(c.StationID)
	return id
}

// ReadInterval returns the tick interval as a duration.
func (c *Config) ReadInterval() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

// BatchEvery returns the batch duration as a duration.
func (c *Config) BatchEvery() time.Duration {
	return time.Duration(c.BatchDuration) * time.Second
}

// SyncEvery returns the sync interval as a duration.
func (c *Config) SyncEvery() time.Duration {
	return time.Duration(c.Storage.SyncInterval) * time.Minute
}

func Load() (*Config, error) {
	errFactory := errors.New()

	v := viper.New()
	v.SetDefault("interval", defaultReadInterval)
	v.SetDefault("batch_duration", defaultBatchDuration)
	v.SetDefault("warmup_readings", defaultWarmupReadings)
	v.SetDefault("compensation", true)
	v.SetDefault("compensation_factor", defaultCompFactor)
	v.SetDefault("health", true)
	v.SetDefault("health_every", defaultHealthEvery)
	v.SetDefault("simulate", false)
	v.SetDefault("output_dir", "output")
	v.SetDefault("health_dir", "health")
	v.SetDefault("compression", "snappy")
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("journal", false)
	v.SetDefault("journal_db", "/var/lib/stationd/journal.db")
	v.SetDefault("storage.sync", false)
	v.SetDefault("storage.sync_interval", defaultSyncInterval)
	v.SetDefault("storage.provider", "s3")
	v.SetDefault("storage.region", "us-west-2")

	fs := pflag.NewFlagSet("stationd", pflag.ContinueOnError)
	fs.String("station-id", "", "Unique UUID for this station")
	fs.Int("interval", defaultReadInterval, "Seconds between sensor reads")
	fs.Int("batch-duration", defaultBatchDuration, "Seconds per batch")
	fs.String("output-dir", "output", "Directory for sensor data")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warn, error)")
	fs.Bool("simulate", false, "Use simulated sensors instead of hardware")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	bindings := map[string]string{
		"station-id":     "station_id",
		"interval":       "interval",
		"batch-duration": "batch_duration",
		"output-dir":     "output_dir",
		"log-level":      "log_level",
		"simulate":       "simulate",
	}
	fs.Visit(func(f *pflag.Flag) {
		if key, ok := bindings[f.Name]; ok {
			v.Set(key, f.Value.String())
		}
	})

	// Config file: explicit path via STATIOND_CONFIG, otherwise /etc
	v.SetConfigName("stationd")
	v.SetConfigType("toml")
	if path := os.Getenv("STATIOND_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, errFactory.WithMessage(errors.ErrReadConfig,
				"Failed to read config file: "+err.Error())
		}
	}

	v.SetEnvPrefix("STATIOND")
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the loaded configuration for invalid values.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.BatchDuration < 60 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.BatchDuration)
	}
	if c.HealthEnabled && c.HealthEvery < 1 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.HealthEvery)
	}
	if c.Compensation && c.CompensationFactor <= 0 {
		return errFactory.WithData(errors.ErrInvalidFactor, c.CompensationFactor)
	}
	if c.StationID != "" {
		if _, err := uuid.Parse(c.StationID); err != nil {
			return errFactory.WithData(errors.ErrInvalidStationID, c.StationID)
		}
	}
	if !validLogLevel(c.LogLevel) {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	if c.Storage.SyncEnabled {
		if c.Storage.Bucket == "" {
			return errFactory.WithMessage(errors.ErrMissingConfig, "storage.bucket is required when sync is enabled")
		}
		if c.Storage.SyncInterval <= 0 {
			return errFactory.WithData(errors.ErrInvalidInterval, c.Storage.SyncInterval)
		}
	}
	if c.Journal && c.JournalDB == "" {
		return errFactory.WithMessage(errors.ErrMissingConfig, "journal_db is required when the journal is enabled")
	}

	return nil
}

// validLogLevel accepts exactly the level names the logger parses, so
// a level that passes validation can never fail logger init.
func validLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}
