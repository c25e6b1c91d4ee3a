package service

import (
	"context"

	"github.com/Nandan222001/ask-anything/internal/domain"
)

// IVisionService интерфейс анализа изображения и чата по нему.
// Analyze сам ходит в кэш и разбирает ответ модели в структурированный результат.
type IVisionService interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, bool, error)
	Chat(ctx context.Context, chatCtx domain.ChatContext, history []domain.ChatTurn, question string) (*domain.ChatResult, error)
}
