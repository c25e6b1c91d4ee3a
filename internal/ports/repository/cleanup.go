package repository

import (
	"context"

	"github.com/Nandan222001/ask-anything/internal/domain"
	"github.com/google/uuid"
)

// ICleanupRepo интерфейс очереди отложенных удалений из объектного хранилища
type ICleanupRepo interface {
	Enqueue(ctx context.Context, task *domain.CleanupTask) error
	GetPending(ctx context.Context, limit int) ([]*domain.CleanupTask, error)
	MarkDone(ctx context.Context, id uuid.UUID) error
	IncrementAttempts(ctx context.Context, id uuid.UUID) error
}
