package journal

import (
	"context"
	"time"
)

// Event kinds recorded by the collector.
const (
	KindFlushData   = "flush_data"
	KindFlushHealth = "flush_health"
	KindSync        = "sync"
)

// Event is one flush or sync outcome. The journal gives field units a
// queryable local history of what the collector did and when, which
// log lines alone cannot provide after rotation.
type Event struct {
	Timestamp time.Time
	Kind      string
	ItemCount int
	Duration  time.Duration
	OK        bool
	Detail    string
}

// Recorder persists collector events.
type Recorder interface {
	Record(ctx context.Context, event *Event) error
	Close() error
}
