package sweep

import (
	"context"
	"time"

	"casemate-backend/internal/shared/metrics"
	"casemate-backend/internal/shared/storage/object"
	"casemate-backend/internal/shared/telemetry"
)

// FileIndex answers whether a blob is still referenced by a file entry.
type FileIndex interface {
	ExistsByStorageKey(ctx context.Context, storageKey string) (bool, error)
}

// Service deletes blobs that no file entry references. It is the
// reconciliation side of the non-transactional blob cleanup: record
// deletion commits first, blob deletion is best-effort, and this sweep
// guarantees orphans do not accumulate.
type Service struct {
	Store    object.ObjectStore
	Files    FileIndex
	Interval time.Duration
}

func NewService(store object.ObjectStore, files FileIndex, interval time.Duration) *Service {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Service{Store: store, Files: files, Interval: interval}
}

// Run performs one sweep pass and returns how many blobs were removed.
// Accepted race: a blob written by an in-flight upload whose file entry
// has not been recorded yet looks unreferenced and can be deleted out
// from under the upload. The sweep interval keeps the window rare.
func (s *Service) Run(ctx context.Context) (int, error) {
	keys, err := s.Store.List(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		referenced, err := s.Files.ExistsByStorageKey(ctx, key)
		if err != nil {
			telemetry.Warn("sweep.check", map[string]any{
				"storage_key": key,
				"error":       err.Error(),
			})
			continue
		}
		if referenced {
			continue
		}
		if err := s.Store.Delete(ctx, key); err != nil {
			telemetry.Warn("sweep.delete", map[string]any{
				"storage_key": key,
				"error":       err.Error(),
			})
			continue
		}
		deleted++
	}

	if deleted > 0 {
		metrics.AddSweepDeleted(uint64(deleted))
	}
	telemetry.Info("sweep.done", map[string]any{
		"scanned": len(keys),
		"deleted": deleted,
	})
	return deleted, nil
}

// Start runs the sweep on its interval until the context is cancelled.
func (s *Service) Start(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Run(ctx); err != nil && ctx.Err() == nil {
				telemetry.Error("sweep.run", map[string]any{"error": err.Error()})
			}
		}
	}
}
