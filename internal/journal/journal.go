// Package journal keeps a local sqlite record of collector outcomes:
// one row per flush and per sync attempt.
package journal

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	"github.com/opensensor/stationd/internal/errors"
	"github.com/opensensor/stationd/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

const defaultDirPerm = 0o755

type sqliteJournal struct {
	db *sql.DB
	mu sync.Mutex
}

// New opens (or creates) the event journal. When dbPath is empty a
// no-op recorder is returned so callers never need to branch.
func New(enabled bool, dbPath string) (Recorder, error) {
	errFactory := errors.New()

	if !enabled {
		logger.Debug().Msg("Journal disabled, using no-op recorder")
		return &noopJournal{}, nil
	}
	if dbPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	logger.Debug().Str("path", dbPath).Msg("Initializing event journal")

	if err := os.MkdirAll(filepath.Dir(dbPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL")
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	return &sqliteJournal{db: db}, nil
}

func (j *sqliteJournal) Record(ctx context.Context, event *Event) error {
	errFactory := errors.New()

	if event == nil {
		return errFactory.New(ErrInvalidEvent)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.ExecContext(ctx, `
        INSERT INTO events (timestamp, kind, item_count, duration_ms, ok, detail)
        VALUES (?, ?, ?, ?, ?, ?)
    `,
		event.Timestamp.Unix(),
		event.Kind,
		event.ItemCount,
		event.Duration.Milliseconds(),
		boolToInt(event.OK),
		event.Detail,
	)
	if err != nil {
		return errFactory.Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (j *sqliteJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.db.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}

	return nil
}

type noopJournal struct{}

func (*noopJournal) Record(_ context.Context, _ *Event) error {
	return nil
}

func (*noopJournal) Close() error {
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
