package explain

import (
	"context"
	"fmt"
	"time"

	"github.com/Nandan222001/ask-anything/internal/domain"
	"github.com/google/uuid"
)

// nextResetAfter скользящее окно: ровно сутки от момента сброса,
// а не ближайшая календарная полночь
func nextResetAfter(now time.Time) time.Time {
	return now.UTC().Add(24 * time.Hour)
}

// loadUserWithFreshWindow возвращает пользователя, сбросив дневной счётчик, если окно истекло
func (s *Service) loadUserWithFreshWindow(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.UserRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	now := time.Now()
	if !user.UsageResetAt.After(now) {
		reset, err := s.UserRepo.ResetUsageIfExpired(ctx, userID, now, nextResetAfter(now))
		if err != nil {
			return nil, fmt.Errorf("failed to reset usage window: %w", err)
		}
		if reset {
			user.DailyCount = 0
			user.UsageResetAt = nextResetAfter(now)
		} else {
			// Сброс сделал параллельный запрос, перечитываем актуальные счётчики
			user, err = s.UserRepo.GetByID(ctx, userID)
			if err != nil {
				return nil, fmt.Errorf("failed to reload user: %w", err)
			}
		}
	}
	return user, nil
}

// reserveQuota проверяет, что квота не исчерпана. Счётчик НЕ инкрементируется:
// списание происходит в commitQuota только после успешного сохранения результата.
func (s *Service) reserveQuota(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.loadUserWithFreshWindow(ctx, userID)
	if err != nil {
		return nil, err
	}

	limit := s.Limits.Limit(user.Tier)
	if user.DailyCount >= limit {
		s.Log.Debug("quota exceeded",
			"user_id", userID,
			"tier", user.Tier,
			"used", user.DailyCount,
			"limit", limit)
		return nil, &domain.QuotaError{
			Used:    user.DailyCount,
			Limit:   limit,
			ResetAt: user.UsageResetAt,
		}
	}
	return user, nil
}

// commitQuota списывает одну единицу квоты. Вызывается строго после того,
// как объяснение сохранено: упавший анализ квоту не тратит.
func (s *Service) commitQuota(ctx context.Context, userID uuid.UUID) {
	if err := s.UserRepo.IncrementUsage(ctx, userID); err != nil {
		// Запись уже создана, пользователю отказывать поздно
		s.Log.Error("failed to commit quota usage", "error", err, "user_id", userID)
	}
}

// GetUsageStatus возвращает текущее состояние квоты пользователя
func (s *Service) GetUsageStatus(ctx context.Context, userID uuid.UUID) (*domain.UsageStatus, error) {
	user, err := s.loadUserWithFreshWindow(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.UsageStatus{
		Tier:    user.Tier,
		Used:    user.DailyCount,
		Limit:   s.Limits.Limit(user.Tier),
		ResetAt: user.UsageResetAt,
	}, nil
}
