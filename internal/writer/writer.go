// Package writer converts reading batches into Hive-partitioned
// parquet files. Partition keys (station, year, month, day) live in
// the directory path, not in the file body, so downstream query tools
// recover them with hive_partitioning enabled.
package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/opensensor/stationd/internal/errors"
	"github.com/opensensor/stationd/internal/health"
	"github.com/opensensor/stationd/internal/logger"
	"github.com/opensensor/stationd/internal/sensors"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"
)

const (
	dirPerm = 0o755

	dataFilePrefix   = "data"
	healthFilePrefix = "health"
)

// Writer persists batches under a deterministic partition hierarchy:
//
//	<root>/station=<uuid>/year=<YYYY>/month=<MM>/day=<DD>/<prefix>_<HHMM>.parquet
//
// Files are written to a temp sibling and renamed so a reader never
// observes a half-written file.
type Writer struct {
	dataRoot   string
	healthRoot string
	stationID  uuid.UUID
	codec      compress.Codec
}

func New(dataRoot, healthRoot string, stationID uuid.UUID, compression string) (*Writer, error) {
	codec, err := codecFor(compression)
	if err != nil {
		return nil, err
	}

	return &Writer{
		dataRoot:   dataRoot,
		healthRoot: healthRoot,
		stationID:  stationID,
		codec:      codec,
	}, nil
}

func codecFor(compression string) (compress.Codec, error) {
	switch compression {
	case "snappy":
		return &parquet.Snappy, nil
	case "zstd":
		return &parquet.Zstd, nil
	case "gzip":
		return &parquet.Gzip, nil
	case "none", "uncompressed":
		return &parquet.Uncompressed, nil
	default:
		return nil, errors.New().WithData(errors.ErrInvalidCodec, compression)
	}
}

// WriteReadings flushes a sensor batch. The partition is derived from
// the first record's timestamp; the filename carries the flush
// wall-clock time. The station column is dropped from the file body.
func (w *Writer) WriteReadings(batch []sensors.Reading, flushedAt time.Time) (string, error) {
	if len(batch) == 0 {
		return "", errors.New().New(errors.ErrEmptyBatch)
	}

	rows := make([]readingRow, len(batch))
	for i := range batch {
		rows[i] = newReadingRow(&batch[i])
	}

	path := w.partitionPath(w.dataRoot, dataFilePrefix, batch[0].Timestamp, flushedAt)
	if err := writeFile(path, rows, w.codec); err != nil {
		return "", err
	}

	logger.Debug().
		Int("rows", len(rows)).
		Str("path", path).
		Msg("Wrote sensor partition")

	return path, nil
}

// WriteHealth flushes a health batch into its own directory tree.
func (w *Writer) WriteHealth(batch []health.Record, flushedAt time.Time) (string, error) {
	if len(batch) == 0 {
		return "", errors.New().New(errors.ErrEmptyBatch)
	}

	rows := make([]healthRow, len(batch))
	for i := range batch {
		rows[i] = newHealthRow(&batch[i])
	}

	path := w.partitionPath(w.healthRoot, healthFilePrefix, batch[0].Timestamp, flushedAt)
	if err := writeFile(path, rows, w.codec); err != nil {
		return "", err
	}

	logger.Debug().
		Int("rows", len(rows)).
		Str("path", path).
		Msg("Wrote health partition")

	return path, nil
}

func (w *Writer) partitionPath(root, prefix string, first, flushedAt time.Time) string {
	first = first.UTC()

	dir := filepath.Join(
		root,
		fmt.Sprintf("station=%s", w.stationID),
		fmt.Sprintf("year=%04d", first.Year()),
		fmt.Sprintf("month=%02d", int(first.Month())),
		fmt.Sprintf("day=%02d", first.Day()),
	)

	name := fmt.Sprintf("%s_%s.parquet", prefix, flushedAt.UTC().Format("1504"))

	return filepath.Join(dir, name)
}

func writeFile[T any](path string, rows []T, codec compress.Codec) error {
	errFactory := errors.New()

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return errFactory.Wrap(errors.ErrWriteFailed, err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return errFactory.Wrap(errors.ErrWriteFailed, err)
	}

	pw := parquet.NewGenericWriter[T](f, parquet.Compression(codec))
	if _, err := pw.Write(rows); err != nil {
		pw.Close()
		f.Close()
		os.Remove(tmp)
		return errFactory.Wrap(errors.ErrEncodeFailed, err)
	}
	if err := pw.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return errFactory.Wrap(errors.ErrEncodeFailed, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errFactory.Wrap(errors.ErrWriteFailed, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errFactory.Wrap(errors.ErrWriteFailed, err)
	}

	return nil
}
