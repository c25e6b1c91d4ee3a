package userRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/Nandan222001/ask-anything/internal/domain"
	"github.com/Nandan222001/ask-anything/internal/ports/persistence"
	ports "github.com/Nandan222001/ask-anything/internal/ports/repository"
	"github.com/google/uuid"
)

type userColumns struct {
	TableName     string
	ID            string
	Email         string
	Tier          string
	DailyCount    string
	UsageResetAt  string
	LifetimeCount string
	CreatedAt     string
	UpdatedAt     string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns userColumns
}

// New создаёт новый репозиторий пользователей
func New(db persistence.Persistence, log *slog.Logger) ports.IUserRepo {
	cols := userColumns{
		TableName:     "users",
		ID:            "id",
		Email:         "email",
		Tier:          "tier",
		DailyCount:    "daily_count",
		UsageResetAt:  "usage_reset_at",
		LifetimeCount: "lifetime_count",
		CreatedAt:     "created_at",
		UpdatedAt:     "updated_at",
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
		r.columns.Email,
		r.columns.Tier,
		r.columns.DailyCount,
		r.columns.UsageResetAt,
		r.columns.LifetimeCount,
		r.columns.CreatedAt,
		r.columns.UpdatedAt,
	}, ", ")
}

// GetByID получает пользователя по идентификатору
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.ID)
	err := r.db.Get(ctx, &u, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.Log.Error("failed to get user by id",
			"error", err,
			"id", id)
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &u, nil
}

// ResetUsageIfExpired обнуляет дневной счётчик, если окно истекло.
// Условие "usage_reset_at <= now" в самом UPDATE, поэтому при гонке
// сброс выполнит ровно один из конкурентных запросов.
func (r *Repository) ResetUsageIfExpired(ctx context.Context, id uuid.UUID, now, nextReset time.Time) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = 0, %s = $3, %s = $2
		WHERE %s = $1 AND %s <= $2`,
		r.columns.TableName,
		r.columns.DailyCount,
		r.columns.UsageResetAt,
		r.columns.UpdatedAt,
		r.columns.ID,
		r.columns.UsageResetAt)
	rowsAffected, err := r.db.ExecWithResult(ctx, query, id, now, nextReset)
	if err != nil {
		r.Log.Error("failed to reset usage window",
			"error", err,
			"id", id)
		return false, fmt.Errorf("failed to reset usage window: %w", err)
	}
	if rowsAffected > 0 {
		r.Log.Debug("usage window reset", "id", id, "next_reset", nextReset)
	}
	return rowsAffected > 0, nil
}

// IncrementUsage инкрементирует дневной и пожизненный счётчики
func (r *Repository) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = %s + 1, %s = %s + 1, %s = NOW() WHERE %s = $1`,
		r.columns.TableName,
		r.columns.DailyCount,
		r.columns.DailyCount,
		r.columns.LifetimeCount,
		r.columns.LifetimeCount,
		r.columns.UpdatedAt,
		r.columns.ID)
	if err := r.db.Exec(ctx, query, id); err != nil {
		r.Log.Error("failed to increment usage",
			"error", err,
			"id", id)
		return fmt.Errorf("failed to increment usage: %w", err)
	}
	return nil
}
