package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/opensensor/stationd/internal/cloudsync"
	"github.com/opensensor/stationd/internal/collector"
	"github.com/opensensor/stationd/internal/config"
	"github.com/opensensor/stationd/internal/health"
	"github.com/opensensor/stationd/internal/journal"
	"github.com/opensensor/stationd/internal/logger"
	"github.com/opensensor/stationd/internal/sensors"
	"github.com/opensensor/stationd/internal/writer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogLevel, logger.IsService()); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug().Msg("Config loaded")

	stationID := cfg.Station()
	if cfg.StationID == "" {
		stationID = newStationID()
		logger.Warn().
			Str("station_id", stationID.String()).
			Msg("No station_id configured; generated one for this run. Persist it to keep partitions stable.")
	}

	caps := sensors.Capabilities{}
	if cfg.Simulate {
		logger.Info().Msg("Using simulated sensors")
		caps = sensors.NewSimulated(nil).Caps()
	}
	provider := sensors.NewProvider(stationID, caps, cfg.Compensation, cfg.CompensationFactor)

	batchWriter, err := writer.New(cfg.OutputDir, cfg.HealthDir, stationID, cfg.Compression)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize writer")
	}

	var monitor collector.HealthSource
	if cfg.HealthEnabled {
		monitor = health.NewMonitor()
	}

	var syncer collector.Syncer
	if cfg.Storage.SyncEnabled {
		store, err := cloudsync.NewStore(cfg.Storage)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize object store")
		}
		syncer = cloudsync.NewEngine(store)
	}

	recorder, err := journal.New(cfg.Journal, cfg.JournalDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize journal")
	}
	defer recorder.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	c := collector.New(cfg, provider, monitor, batchWriter, syncer, recorder)
	if err := c.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("error in main loop")
		os.Exit(1)
	}

	logger.Info().Msg("Exiting...")
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

// newStationID prefers a time-ordered UUIDv7 so stations sort by
// commissioning time, falling back to v4.
func newStationID() uuid.UUID {
	if id, err := uuid.NewV7(); err == nil {
		return id
	}

	return uuid.New()
}
