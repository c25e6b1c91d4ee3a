package repository

import (
	"context"

	"github.com/Nandan222001/ask-anything/internal/domain"
	"github.com/google/uuid"
)

// IMessageRepo интерфейс для работы с репликами чата
type IMessageRepo interface {
	Create(ctx context.Context, m *domain.Message) error
	// GetHistory возвращает все реплики объяснения от старых к новым
	GetHistory(ctx context.Context, explanationID uuid.UUID) ([]*domain.Message, error)
	// GetLastN возвращает последние n реплик от старых к новым (контекст для модели)
	GetLastN(ctx context.Context, explanationID uuid.UUID, n int) ([]*domain.Message, error)
	DeleteByExplanation(ctx context.Context, explanationID uuid.UUID) error
}
