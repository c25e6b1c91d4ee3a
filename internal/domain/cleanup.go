package domain

import (
	"time"

	"github.com/google/uuid"
)

// CleanupTask отложенное удаление объекта из хранилища.
// Появляется, когда best-effort удаление при soft-delete не удалось.
type CleanupTask struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ObjectPath string    `json:"object_path" db:"object_path"`
	Attempts   int       `json:"attempts" db:"attempts"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// UsageEvent событие использования для учёта затрат (уходит в Kafka, fire-and-forget)
type UsageEvent struct {
	UserID        uuid.UUID `json:"user_id"`
	ExplanationID uuid.UUID `json:"explanation_id"`
	Model         string    `json:"model"`
	TokensUsed    int       `json:"tokens_used"`
	ProcessingMs  int64     `json:"processing_ms"`
	Cached        bool      `json:"cached"`
	CreatedAt     time.Time `json:"created_at"`
}
