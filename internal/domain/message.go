package domain

import (
	"time"

	"github.com/google/uuid"
)

// MessageRole роль участника диалога
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

func (r MessageRole) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message одна реплика чата, привязана ровно к одному объяснению
type Message struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	ExplanationID uuid.UUID   `json:"explanation_id" db:"explanation_id"`
	UserID        uuid.UUID   `json:"user_id" db:"user_id"`
	Role          MessageRole `json:"role" db:"role"`
	Content       string      `json:"content" db:"content"`
	TokensUsed    int         `json:"tokens_used" db:"tokens_used"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
}
