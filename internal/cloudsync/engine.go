// Package cloudsync mirrors the local partition tree to remote object
// storage. Sync is incremental and content-addressed: correctness is
// recomputed from observable state on every cycle, so the collector
// can invoke it unconditionally with no bookkeeping of its own.
package cloudsync

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/opensensor/stationd/internal/logger"
)

const syncExtension = ".parquet"

// Engine tracks remote object state and an offline flag. It is owned
// and driven by the single collection goroutine; no locking.
type Engine struct {
	store       ObjectStore
	remoteCache map[string]ObjectInfo
	offline     bool
}

func NewEngine(store ObjectStore) *Engine {
	return &Engine{
		store:       store,
		remoteCache: make(map[string]ObjectInfo),
	}
}

// Offline reports whether the last remote listing failed with a
// network-class error. While offline no uploads are attempted.
func (e *Engine) Offline() bool {
	return e.offline
}

// SyncDirectory uploads every local parquet file that is absent or
// stale remotely, and returns how many files it uploaded. It never
// returns an error: network failures flip the offline flag and abort
// the cycle cleanly, per-file failures are logged and skipped.
func (e *Engine) SyncDirectory(ctx context.Context, localDir string) int {
	if _, err := os.Stat(localDir); err != nil {
		logger.Warn().Str("dir", localDir).Msg("Sync directory not found")
		return 0
	}

	if err := e.refreshRemoteCache(ctx); err != nil {
		return 0
	}
	if e.offline {
		logger.Info().Msg("Offline - skipping sync, will retry next interval")
		return 0
	}

	synced := 0
	skipped := 0

	walkErr := filepath.WalkDir(localDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Skipping unreadable path")
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), syncExtension) {
			return nil
		}

		rel, err := filepath.Rel(localDir, path)
		if err != nil {
			return nil
		}
		key := filepath.ToSlash(rel)

		upload, err := e.shouldUpload(path, key)
		if err != nil {
			logger.Warn().Err(err).Str("file", key).Msg("Skipping file, comparison failed")
			return nil
		}
		if !upload {
			skipped++
			return nil
		}

		if err := e.uploadFile(ctx, path, key); err != nil {
			logger.Warn().Err(err).Str("file", key).Msg("Upload failed, continuing with remaining files")
			return nil
		}
		synced++

		return nil
	})
	if walkErr != nil {
		logger.Error().Err(walkErr).Str("dir", localDir).Msg("Directory walk failed")
	}

	if synced > 0 {
		logger.Info().
			Int("uploaded", synced).
			Int("already_synced", skipped).
			Msg("Sync cycle complete")
	} else if skipped > 0 {
		logger.Debug().Int("files", skipped).Msg("All files already synced")
	}

	return synced
}

// refreshRemoteCache rebuilds the remote metadata cache from a full
// listing. A stale cache must never short-circuit uploads, so any
// failure here aborts the whole sync attempt.
func (e *Engine) refreshRemoteCache(ctx context.Context) error {
	objects, err := e.store.List(ctx)
	if err != nil {
		if isNetworkError(err) {
			if !e.offline {
				logger.Warn().Err(err).Msg("Network unavailable - working offline")
			}
			e.offline = true
		} else {
			logger.Error().Err(err).Msg("Failed to refresh remote cache")
		}
		return err
	}

	e.remoteCache = make(map[string]ObjectInfo, len(objects))
	for _, obj := range objects {
		e.remoteCache[obj.Key] = obj
	}

	if e.offline {
		logger.Info().Msg("Network restored - back online")
		e.offline = false
	}
	logger.Debug().Int("objects", len(e.remoteCache)).Msg("Remote cache refreshed")

	return nil
}

// shouldUpload decides upload necessity cheapest-first: presence, then
// size, then content digest.
func (e *Engine) shouldUpload(path, key string) (bool, error) {
	remote, ok := e.remoteCache[key]
	if !ok {
		return true, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if info.Size() != remote.Size {
		return true, nil
	}

	etag, err := fileETag(path)
	if err != nil {
		return false, err
	}

	return etag != remote.ETag, nil
}

func (e *Engine) uploadFile(ctx context.Context, path, key string) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := e.store.Put(ctx, key, body); err != nil {
		return err
	}

	// Keep the cache coherent so a second sync in the same run does
	// not need to re-list.
	e.remoteCache[key] = ObjectInfo{
		Key:  key,
		Size: int64(len(body)),
		ETag: etagOf(body),
	}

	logger.Debug().Str("file", key).Int("bytes", len(body)).Msg("Uploaded file")

	return nil
}

// fileETag computes the single-part S3 ETag of a local file: the MD5
// of its content, hex-encoded and quoted. Partition files are tens of
// kilobytes, far below any multipart threshold.
func fileETag(path string) (string, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	return etagOf(body), nil
}

func etagOf(body []byte) string {
	sum := md5.Sum(body)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}
