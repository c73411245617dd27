package journal

import (
	"database/sql"

	"github.com/opensensor/stationd/internal/errors"
)

// initSchema initializes the event journal schema.
func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS events (
            id          INTEGER PRIMARY KEY AUTOINCREMENT,
            timestamp   INTEGER NOT NULL,
            kind        TEXT NOT NULL,
            item_count  INTEGER NOT NULL,
            duration_ms INTEGER NOT NULL,
            ok          INTEGER NOT NULL CHECK (ok IN (0, 1)),
            detail      TEXT
        );
        CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events (timestamp);
        CREATE INDEX IF NOT EXISTS idx_events_kind ON events (kind)
    `)
	if err != nil {
		return errors.New().Wrap(ErrSchemaInitFailed, err)
	}

	return nil
}
