package explain

import (
	"context"

	"github.com/Nandan222001/ask-anything/internal/domain"
	"github.com/google/uuid"
)

// GetByID возвращает объяснение владельца и инкрементирует счётчик просмотров.
// Инкремент только при успешном чтении, на промахе счётчик не трогается.
func (s *Service) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Explanation, error) {
	explanation, err := s.ExplanationRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if err := s.ExplanationRepo.IncrementViews(ctx, id); err != nil {
		// Счётчик просмотров не стоит ошибки всего запроса
		s.Log.Warn("failed to increment view count", "error", err, "explanation_id", id)
	} else {
		explanation.ViewCount++
	}

	return explanation, nil
}

// List возвращает страницу объяснений владельца с фильтрами
func (s *Service) List(ctx context.Context, userID uuid.UUID, filter domain.ListFilter) (*domain.ExplanationPage, error) {
	return s.ExplanationRepo.List(ctx, userID, filter)
}
