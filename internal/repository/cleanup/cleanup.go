package cleanupRepo

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/Nandan222001/ask-anything/internal/domain"
	"github.com/Nandan222001/ask-anything/internal/ports/persistence"
	ports "github.com/Nandan222001/ask-anything/internal/ports/repository"
	"github.com/google/uuid"
)

type Repository struct {
	db  persistence.Persistence
	Log *slog.Logger
}

// New создаёт репозиторий очереди отложенной очистки хранилища
func New(db persistence.Persistence, log *slog.Logger) ports.ICleanupRepo {
	return &Repository{
		db:  db,
		Log: log,
	}
}

// Enqueue ставит путь объекта в очередь на удаление
func (r *Repository) Enqueue(ctx context.Context, task *domain.CleanupTask) error {
	query := `INSERT INTO pending_cleanups (id, object_path, attempts, created_at)
		VALUES ($1, $2, $3, $4)`
	err := r.db.Exec(ctx, query, task.ID, task.ObjectPath, task.Attempts, task.CreatedAt)
	if err != nil {
		r.Log.Error("failed to enqueue cleanup task",
			"error", err,
			"object_path", task.ObjectPath)
		return fmt.Errorf("failed to enqueue cleanup task: %w", err)
	}
	return nil
}

// GetPending возвращает задачи на удаление, старые первыми
func (r *Repository) GetPending(ctx context.Context, limit int) ([]*domain.CleanupTask, error) {
	tasks := make([]*domain.CleanupTask, 0, limit)
	query := `SELECT id, object_path, attempts, created_at FROM pending_cleanups
		ORDER BY created_at ASC LIMIT $1`
	if err := r.db.Select(ctx, &tasks, query, limit); err != nil {
		r.Log.Error("failed to get pending cleanup tasks", "error", err)
		return nil, fmt.Errorf("failed to get pending cleanup tasks: %w", err)
	}
	return tasks, nil
}

// MarkDone удаляет выполненную задачу из очереди
func (r *Repository) MarkDone(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM pending_cleanups WHERE id = $1`
	if err := r.db.Exec(ctx, query, id); err != nil {
		r.Log.Error("failed to mark cleanup task done",
			"error", err,
			"id", id)
		return fmt.Errorf("failed to mark cleanup task done: %w", err)
	}
	return nil
}

// IncrementAttempts фиксирует неудачную попытку удаления
func (r *Repository) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE pending_cleanups SET attempts = attempts + 1 WHERE id = $1`
	if err := r.db.Exec(ctx, query, id); err != nil {
		r.Log.Error("failed to increment cleanup attempts",
			"error", err,
			"id", id)
		return fmt.Errorf("failed to increment cleanup attempts: %w", err)
	}
	return nil
}
