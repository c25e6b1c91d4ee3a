package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Nandan222001/ask-anything/internal/ports/repository"
	"github.com/Nandan222001/ask-anything/internal/ports/storage"
)

const (
	storageCleanupName = "storage-cleanup"

	// cleanupBatchSize сколько задач забирается за один прогон
	cleanupBatchSize = 100
	// cleanupMaxAttempts после этого числа неудач задача выбрасывается из очереди
	cleanupMaxAttempts = 5
)

// StorageCleanup джоба добивает объекты, которые не удалось удалить
// при мягком удалении записи. Каждые 15 минут.
type StorageCleanup struct {
	cleanupRepo repository.ICleanupRepo
	objectStore storage.IObjectStore
	log         *slog.Logger
}

func NewStorageCleanup(
	cleanupRepo repository.ICleanupRepo,
	objectStore storage.IObjectStore,
	log *slog.Logger,
) *StorageCleanup {
	return &StorageCleanup{
		cleanupRepo: cleanupRepo,
		objectStore: objectStore,
		log:         log,
	}
}

func (j *StorageCleanup) Name() string {
	return storageCleanupName
}

// NextRun каждые 15 минут
func (j *StorageCleanup) NextRun(now time.Time) time.Time {
	return now.Add(15 * time.Minute)
}

// Run забирает пачку отложенных удалений и пробует выполнить каждое
func (j *StorageCleanup) Run(ctx context.Context) error {
	tasks, err := j.cleanupRepo.GetPending(ctx, cleanupBatchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch pending cleanups: %w", err)
	}
	if len(tasks) == 0 {
		return nil
	}

	var failed int
	for _, task := range tasks {
		if task.Attempts >= cleanupMaxAttempts {
			j.log.Warn("cleanup task exceeded max attempts, dropping",
				"object_path", task.ObjectPath,
				"attempts", task.Attempts)
			if err := j.cleanupRepo.MarkDone(ctx, task.ID); err != nil {
				j.log.Error("failed to drop cleanup task", "error", err, "id", task.ID)
			}
			continue
		}

		if err := j.objectStore.Delete(ctx, task.ObjectPath); err != nil {
			failed++
			j.log.Warn("cleanup delete failed",
				"error", err,
				"object_path", task.ObjectPath,
				"attempts", task.Attempts)
			if err := j.cleanupRepo.IncrementAttempts(ctx, task.ID); err != nil {
				j.log.Error("failed to record cleanup attempt", "error", err, "id", task.ID)
			}
			continue
		}

		if err := j.cleanupRepo.MarkDone(ctx, task.ID); err != nil {
			j.log.Error("failed to mark cleanup done", "error", err, "id", task.ID)
		}
	}

	j.log.Debug("storage cleanup pass finished",
		"total", len(tasks),
		"failed", failed)
	return nil
}
