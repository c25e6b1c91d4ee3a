package repository

import (
	"context"
	"time"

	"github.com/Nandan222001/ask-anything/internal/domain"
	"github.com/google/uuid"
)

// IUserRepo интерфейс для работы с пользователями и их счётчиками использования
type IUserRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// ResetUsageIfExpired атомарно обнуляет счётчик, если окно истекло.
	// Условие "usage_reset_at <= now" в самом UPDATE, гонка двух сбросов схлопывается в один.
	ResetUsageIfExpired(ctx context.Context, id uuid.UUID, now time.Time, nextReset time.Time) (bool, error)
	// IncrementUsage атомарно инкрементирует дневной и суммарный счётчики
	IncrementUsage(ctx context.Context, id uuid.UUID) error
}
