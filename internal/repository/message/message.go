package messageRepo

import (
	"context"
	"fmt"
	"strings"

	"log/slog"

	"github.com/Nandan222001/ask-anything/internal/domain"
	"github.com/Nandan222001/ask-anything/internal/ports/persistence"
	ports "github.com/Nandan222001/ask-anything/internal/ports/repository"
	"github.com/google/uuid"
)

type messageColumns struct {
	TableName     string
	ID            string
	ExplanationID string
	UserID        string
	Role          string
	Content       string
	TokensUsed    string
	CreatedAt     string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns messageColumns
}

// New создаёт новый репозиторий сообщений чата
func New(db persistence.Persistence, log *slog.Logger) ports.IMessageRepo {
	cols := messageColumns{
		TableName:     "messages",
		ID:            "id",
		ExplanationID: "explanation_id",
		UserID:        "user_id",
		Role:          "role",
		Content:       "content",
		TokensUsed:    "tokens_used",
		CreatedAt:     "created_at",
	}
	return &Repository{
		db:      db,
		Log:     log,
		columns: cols,
	}
}

func (r *Repository) allColumns() string {
	return strings.Join([]string{
		r.columns.ID,
		r.columns.ExplanationID,
		r.columns.UserID,
		r.columns.Role,
		r.columns.Content,
		r.columns.TokensUsed,
		r.columns.CreatedAt,
	}, ", ")
}

// Create сохраняет сообщение
func (r *Repository) Create(ctx context.Context, m *domain.Message) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.columns.TableName,
		r.allColumns())
	err := r.db.Exec(ctx, query,
		m.ID,
		m.ExplanationID,
		m.UserID,
		m.Role,
		m.Content,
		m.TokensUsed,
		m.CreatedAt)
	if err != nil {
		r.Log.Error("failed to create message",
			"error", err,
			"explanation_id", m.ExplanationID)
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// GetHistory возвращает всю переписку по объяснению, старые первыми
func (r *Repository) GetHistory(ctx context.Context, explanationID uuid.UUID) ([]*domain.Message, error) {
	messages := make([]*domain.Message, 0)
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s ASC`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.ExplanationID,
		r.columns.CreatedAt)
	if err := r.db.Select(ctx, &messages, query, explanationID); err != nil {
		r.Log.Error("failed to get chat history",
			"error", err,
			"explanation_id", explanationID)
		return nil, fmt.Errorf("failed to get chat history: %w", err)
	}
	return messages, nil
}

// GetLastN возвращает последние n сообщений в хронологическом порядке
func (r *Repository) GetLastN(ctx context.Context, explanationID uuid.UUID, n int) ([]*domain.Message, error) {
	messages := make([]*domain.Message, 0, n)
	query := fmt.Sprintf(`SELECT %s FROM (
			SELECT %s FROM %s WHERE %s = $1 ORDER BY %s DESC LIMIT $2
		) AS recent ORDER BY %s ASC`,
		r.allColumns(),
		r.allColumns(),
		r.columns.TableName,
		r.columns.ExplanationID,
		r.columns.CreatedAt,
		r.columns.CreatedAt)
	if err := r.db.Select(ctx, &messages, query, explanationID, n); err != nil {
		r.Log.Error("failed to get last messages",
			"error", err,
			"explanation_id", explanationID)
		return nil, fmt.Errorf("failed to get last messages: %w", err)
	}
	return messages, nil
}

// DeleteByExplanation удаляет переписку вместе с объяснением
func (r *Repository) DeleteByExplanation(ctx context.Context, explanationID uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		r.columns.TableName,
		r.columns.ExplanationID)
	if err := r.db.Exec(ctx, query, explanationID); err != nil {
		r.Log.Error("failed to delete chat history",
			"error", err,
			"explanation_id", explanationID)
		return fmt.Errorf("failed to delete chat history: %w", err)
	}
	return nil
}
