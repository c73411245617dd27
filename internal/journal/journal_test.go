package journal

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/opensensor/stationd/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledJournalIsNoop(t *testing.T) {
	rec, err := New(false, "")
	require.NoError(t, err)
	defer rec.Close()

	assert.NoError(t, rec.Record(context.Background(), &Event{Kind: KindSync}))
	assert.NoError(t, rec.Record(context.Background(), nil))
}

func TestEnabledJournalRequiresPath(t *testing.T) {
	_, err := New(true, "")
	require.Error(t, err)
	assert.Equal(t, ErrInvalidDBPath, errors.CodeOf(err))
}

func TestRecordPersistsEvents(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")
	rec, err := New(true, dbPath)
	require.NoError(t, err)
	defer rec.Close()

	ctx := context.Background()
	now := time.Date(2024, 3, 1, 10, 45, 0, 0, time.UTC)

	require.NoError(t, rec.Record(ctx, &Event{
		Timestamp: now,
		Kind:      KindFlushData,
		ItemCount: 180,
		Duration:  42 * time.Millisecond,
		OK:        true,
	}))
	require.NoError(t, rec.Record(ctx, &Event{
		Timestamp: now.Add(time.Minute),
		Kind:      KindSync,
		ItemCount: 0,
		OK:        false,
		Detail:    "network unavailable",
	}))

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&count))
	assert.Equal(t, 2, count)

	var kind, detail string
	var items, ok int
	require.NoError(t, db.QueryRow(
		`SELECT kind, item_count, ok, detail FROM events WHERE kind = ?`, KindFlushData,
	).Scan(&kind, &items, &ok, &detail))
	assert.Equal(t, KindFlushData, kind)
	assert.Equal(t, 180, items)
	assert.Equal(t, 1, ok)
	assert.Empty(t, detail)

	require.NoError(t, db.QueryRow(
		`SELECT detail FROM events WHERE kind = ?`, KindSync,
	).Scan(&detail))
	assert.Equal(t, "network unavailable", detail)
}

func TestRecordRejectsNilEvent(t *testing.T) {
	rec, err := New(true, filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer rec.Close()

	err = rec.Record(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, ErrInvalidEvent, errors.CodeOf(err))
}

func TestReopenExistingJournal(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	rec, err := New(true, dbPath)
	require.NoError(t, err)
	require.NoError(t, rec.Record(context.Background(), &Event{Kind: KindFlushHealth, OK: true}))
	require.NoError(t, rec.Close())

	// Schema creation is idempotent across restarts.
	rec, err = New(true, dbPath)
	require.NoError(t, err)
	require.NoError(t, rec.Record(context.Background(), &Event{Kind: KindFlushHealth, OK: true}))
	require.NoError(t, rec.Close())

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&count))
	assert.Equal(t, 2, count)
}
