package explain

import (
	"context"
	"testing"
	"time"

	"github.com/Nandan222001/ask-anything/internal/domain"
	"github.com/google/uuid"
)

// Окно скользящее: сброс поздним вечером открывает полные сутки, а не остаток до полуночи
func TestNextResetAfter_RollingWindow(t *testing.T) {
	now := time.Date(2026, 8, 29, 23, 30, 0, 0, time.UTC)
	reset := nextResetAfter(now)
	if window := reset.Sub(now); window != 24*time.Hour {
		t.Fatalf("expected 24h window, got %s (reset at %s)", window, reset)
	}

	// Локальное время не меняет длину окна
	local := now.In(time.FixedZone("UTC+5", 5*3600))
	if window := nextResetAfter(local).Sub(local); window != 24*time.Hour {
		t.Errorf("expected 24h window for non-UTC input, got %s", window)
	}
}

// Просроченное окно сбрасывается до проверки лимита, даже если счётчик упёрся в лимит
func TestCreate_ExpiredWindowResetsBeforeLimitCheck(t *testing.T) {
	env := newTestEnv(t)
	env.user.DailyCount = 10
	env.user.UsageResetAt = time.Now().Add(-time.Hour)

	resetCalls := 0
	env.users.ResetUsageIfExpiredFunc = func(ctx context.Context, id uuid.UUID, now, nextReset time.Time) (bool, error) {
		resetCalls++
		if window := nextReset.Sub(now); window != 24*time.Hour {
			t.Errorf("expected rolling 24h window, got %s", window)
		}
		env.user.DailyCount = 0
		env.user.UsageResetAt = nextReset
		return true, nil
	}

	_, err := env.svc.Create(context.Background(), CreateParams{
		UserID:     env.user.ID,
		ImageBytes: makeJPEG(t, 64, 64, 10),
	})
	if err != nil {
		t.Fatalf("create after window expiry must succeed: %v", err)
	}
	if resetCalls != 1 {
		t.Errorf("expected one reset call, got %d", resetCalls)
	}
	if env.user.DailyCount != 1 {
		t.Errorf("expected count 1 after reset and creation, got %d", env.user.DailyCount)
	}
}

// Проигранная гонка сброса перечитывает пользователя вместо повторного сброса
func TestCreate_LostResetRaceReloadsUser(t *testing.T) {
	env := newTestEnv(t)
	env.user.DailyCount = 3
	env.user.UsageResetAt = time.Now().Add(-time.Minute)

	env.users.ResetUsageIfExpiredFunc = func(ctx context.Context, id uuid.UUID, now, nextReset time.Time) (bool, error) {
		// Сброс уже сделал параллельный запрос
		env.user.DailyCount = 1
		env.user.UsageResetAt = nextReset
		return false, nil
	}

	status, err := env.svc.GetUsageStatus(context.Background(), env.user.ID)
	if err != nil {
		t.Fatalf("usage status failed: %v", err)
	}
	if status.Used != 1 {
		t.Errorf("expected reloaded count 1, got %d", status.Used)
	}
}

func TestGetUsageStatus(t *testing.T) {
	env := newTestEnv(t)
	env.user.Tier = domain.TierPro
	env.user.DailyCount = 42

	status, err := env.svc.GetUsageStatus(context.Background(), env.user.ID)
	if err != nil {
		t.Fatalf("usage status failed: %v", err)
	}

	if status.Tier != domain.TierPro {
		t.Errorf("unexpected tier: %s", status.Tier)
	}
	if status.Used != 42 {
		t.Errorf("unexpected used: %d", status.Used)
	}
	if status.Limit != 1000 {
		t.Errorf("unexpected limit: %d", status.Limit)
	}
	if !status.ResetAt.Equal(env.user.UsageResetAt) {
		t.Errorf("unexpected reset time: %v", status.ResetAt)
	}
}

func TestTierLimits(t *testing.T) {
	limits := testLimits()

	cases := []struct {
		tier  domain.Tier
		limit int
	}{
		{domain.TierFree, 10},
		{domain.TierPro, 1000},
		{domain.TierDeveloper, 10000},
		{domain.Tier("unknown"), 10}, // неизвестный тариф трактуется как free
	}
	for _, c := range cases {
		if got := limits.Limit(c.tier); got != c.limit {
			t.Errorf("tier %s: expected limit %d, got %d", c.tier, c.limit, got)
		}
	}
}
