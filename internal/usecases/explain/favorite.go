package explain

import (
	"context"

	"github.com/google/uuid"
)

// ToggleFavorite переключает флаг избранного и возвращает новое состояние
func (s *Service) ToggleFavorite(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	return s.ExplanationRepo.ToggleFavorite(ctx, id, userID)
}
