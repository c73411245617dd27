package collector

import (
	"context"
	"time"

	"github.com/opensensor/stationd/internal/health"
	"github.com/opensensor/stationd/internal/sensors"
)

// SensorSource supplies one environmental reading per call. Reads
// never fail; missing capabilities surface as nil fields.
type SensorSource interface {
	Read() sensors.Reading
}

// HealthSource supplies one device-health snapshot per call.
type HealthSource interface {
	Collect() health.Record
}

// BatchWriter persists a batch and returns the written file path.
type BatchWriter interface {
	WriteReadings(batch []sensors.Reading, flushedAt time.Time) (string, error)
	WriteHealth(batch []health.Record, flushedAt time.Time) (string, error)
}

// Syncer mirrors a local directory to remote storage and reports how
// many files it uploaded. It never returns an error; connectivity
// failures are absorbed by its offline state machine.
type Syncer interface {
	SyncDirectory(ctx context.Context, localDir string) int
}
