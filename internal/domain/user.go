package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tier тариф подписки, определяет только дневной лимит
type Tier string

const (
	TierFree      Tier = "free"
	TierPro       Tier = "pro"
	TierDeveloper Tier = "developer"
)

func (t Tier) IsValid() bool {
	return t == TierFree || t == TierPro || t == TierDeveloper
}

// TierLimits дневные лимиты по тарифам
type TierLimits struct {
	Free      int `envconfig:"FREE" default:"10"`
	Pro       int `envconfig:"PRO" default:"1000"`
	Developer int `envconfig:"DEVELOPER" default:"10000"`
}

// Limit возвращает дневной лимит для тарифа (неизвестный тариф считается free)
func (l TierLimits) Limit(tier Tier) int {
	switch tier {
	case TierPro:
		return l.Pro
	case TierDeveloper:
		return l.Developer
	default:
		return l.Free
	}
}

// User пользователь со встроенным счётчиком использования
type User struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Email         *string   `json:"email,omitempty" db:"email"`
	Tier          Tier      `json:"tier" db:"tier"`
	DailyCount    int       `json:"daily_count" db:"daily_count"`
	UsageResetAt  time.Time `json:"usage_reset_at" db:"usage_reset_at"`
	LifetimeCount int64     `json:"lifetime_count" db:"lifetime_count"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// UsageStatus текущее состояние квоты для отдачи клиенту
type UsageStatus struct {
	Tier    Tier      `json:"tier"`
	Used    int       `json:"used"`
	Limit   int       `json:"limit"`
	ResetAt time.Time `json:"reset_at"`
}
