package repository

import (
	"context"
	"time"

	"github.com/Nandan222001/ask-anything/internal/domain"
	"github.com/google/uuid"
)

// IExplanationRepo интерфейс для работы с записями объяснений
type IExplanationRepo interface {
	Create(ctx context.Context, e *domain.Explanation) (*domain.Explanation, error)
	FindDuplicate(ctx context.Context, userID uuid.UUID, imageHash string) (*domain.Explanation, error)
	GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Explanation, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, filter domain.ListFilter) (*domain.ExplanationPage, error)
	ToggleFavorite(ctx context.Context, id, userID uuid.UUID) (bool, error)
	SoftDelete(ctx context.Context, id, userID uuid.UUID) (*domain.Explanation, error)
	// DailyTotals число созданий с указанного момента по всем пользователям (для агрегации)
	DailyTotals(ctx context.Context, since time.Time) (int64, error)
}
