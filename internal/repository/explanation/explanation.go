package explanationRepo

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

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type explanationColumns struct {
	TableName     string
	ID            string
	UserID        string
	ImageURL      string
	ThumbnailURL  string
	ImageHash     string
	Prompt        string
	Explanation   string
	Model         string
	ProcessingMs  string
	Confidence    string
	Category      string
	Tags          string
	Language      string
	DeveloperMode string
	Favorite      string
	ViewCount     string
	CreatedAt     string
	DeletedAt     string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns explanationColumns
}

// New создаёт новый репозиторий для работы с объяснениями
func New(db persistence.Persistence, log *slog.Logger) ports.IExplanationRepo {
	cols := explanationColumns{
		TableName:     "explanations",
		ID:            "id",
		UserID:        "user_id",
		ImageURL:      "image_url",
		ThumbnailURL:  "thumbnail_url",
		ImageHash:     "image_hash",
		Prompt:        "prompt",
		Explanation:   "explanation",
		Model:         "model",
		ProcessingMs:  "processing_ms",
		Confidence:    "confidence",
		Category:      "category",
		Tags:          "tags",
		Language:      "language",
		DeveloperMode: "developer_mode",
		Favorite:      "favorite",
		ViewCount:     "view_count",
		CreatedAt:     "created_at",
		DeletedAt:     "deleted_at",
	}
	return &Repository{
		db:      db,
		Log:     log,
		columns: cols,
	}
}

// allColumns возвращает строку со всеми колонками (18 колонок)
func (r *Repository) allColumns() string {
	return strings.Join([]string{
		r.columns.ID,
		r.columns.UserID,
		r.columns.ImageURL,
		r.columns.ThumbnailURL,
		r.columns.ImageHash,
		r.columns.Prompt,
		r.columns.Explanation,
		r.columns.Model,
		r.columns.ProcessingMs,
		r.columns.Confidence,
		r.columns.Category,
		r.columns.Tags,
		r.columns.Language,
		r.columns.DeveloperMode,
		r.columns.Favorite,
		r.columns.ViewCount,
		r.columns.CreatedAt,
		r.columns.DeletedAt,
	}, ", ")
}

// Create вставляет запись. При гонке по уникальному индексу (user_id, image_hash)
// среди живых записей конфликт не ошибка: возвращается уже существующая запись.
func (r *Repository) Create(ctx context.Context, e *domain.Explanation) (*domain.Explanation, error) {
	query := fmt.Sprintf(`INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (%s, %s) WHERE %s IS NULL DO NOTHING`,
		r.columns.TableName,
		r.allColumns(),
		r.columns.UserID,
		r.columns.ImageHash,
		r.columns.DeletedAt)

	rowsAffected, err := r.db.ExecWithResult(ctx, query,
		e.ID,
		e.UserID,
		e.ImageURL,
		e.ThumbnailURL,
		e.ImageHash,
		e.Prompt,
		e.Explanation,
		e.Model,
		e.ProcessingMs,
		e.Confidence,
		e.Category,
		e.Tags,
		e.Language,
		e.DeveloperMode,
		e.Favorite,
		e.ViewCount,
		e.CreatedAt,
		e.DeletedAt)
	if err != nil {
		r.Log.Error("failed to create explanation",
			"error", err,
			"user_id", e.UserID,
			"image_hash", e.ImageHash)
		return nil, fmt.Errorf("failed to create explanation: %w", err)
	}

	if rowsAffected == 0 {
		// Параллельный запрос успел вставить ту же пару (владелец, хэш)
		existing, err := r.FindDuplicate(ctx, e.UserID, e.ImageHash)
		if err != nil {
			return nil, fmt.Errorf("failed to read conflicting explanation: %w", err)
		}
		if existing == nil {
			return nil, fmt.Errorf("explanation conflict without existing record")
		}
		r.Log.Debug("create resolved to existing explanation",
			"id", existing.ID,
			"user_id", e.UserID)
		return existing, nil
	}

	r.Log.Debug("explanation created successfully",
		"id", e.ID,
		"user_id", e.UserID)
	return e, nil
}

// FindDuplicate ищет самую свежую живую запись по (владелец, хэш); nil если нет
func (r *Repository) FindDuplicate(ctx context.Context, userID uuid.UUID, imageHash string) (*domain.Explanation, error) {
	var e domain.Explanation
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 AND %s IS NULL ORDER BY %s DESC LIMIT 1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.UserID,
		r.columns.ImageHash,
		r.columns.DeletedAt,
		r.columns.CreatedAt)
	err := r.db.Get(ctx, &e, query, userID, imageHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.Log.Error("failed to find duplicate",
			"error", err,
			"user_id", userID,
			"image_hash", imageHash)
		return nil, fmt.Errorf("failed to find duplicate: %w", err)
	}
	return &e, nil
}

// GetByID получает живую запись владельца
func (r *Repository) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Explanation, error) {
	var e domain.Explanation
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 AND %s IS NULL`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.ID,
		r.columns.UserID,
		r.columns.DeletedAt)
	err := r.db.Get(ctx, &e, query, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.Log.Error("failed to get explanation by id",
			"error", err,
			"id", id,
			"user_id", userID)
		return nil, fmt.Errorf("failed to get explanation by id: %w", err)
	}
	return &e, nil
}

// IncrementViews инкрементирует счётчик просмотров
func (r *Repository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = %s + 1 WHERE %s = $1`,
		r.columns.TableName,
		r.columns.ViewCount,
		r.columns.ViewCount,
		r.columns.ID)
	if err := r.db.Exec(ctx, query, id); err != nil {
		r.Log.Error("failed to increment views",
			"error", err,
			"id", id)
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}

// List постраничная выборка живых записей владельца, новые первыми.
// Поиск: подстрока в тексте объяснения без учёта регистра или точное совпадение тега.
func (r *Repository) List(ctx context.Context, userID uuid.UUID, filter domain.ListFilter) (*domain.ExplanationPage, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	conditions := []string{
		fmt.Sprintf("%s = $1", r.columns.UserID),
		fmt.Sprintf("%s IS NULL", r.columns.DeletedAt),
	}
	args := []interface{}{userID}

	if filter.Category != nil {
		args = append(args, *filter.Category)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", r.columns.Category, len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%", filter.Search)
		conditions = append(conditions, fmt.Sprintf("(%s ILIKE $%d OR %s ? $%d)",
			r.columns.Explanation, len(args)-1, r.columns.Tags, len(args)))
	}
	if filter.FavoritesOnly {
		conditions = append(conditions, fmt.Sprintf("%s = TRUE", r.columns.Favorite))
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, r.columns.TableName, where)
	if err := r.db.Get(ctx, &total, countQuery, args...); err != nil {
		r.Log.Error("failed to count explanations",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to count explanations: %w", err)
	}

	items := make([]*domain.Explanation, 0, limit)
	args = append(args, limit, (page-1)*limit)
	listQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s DESC LIMIT $%d OFFSET $%d`,
		r.allColumns(),
		r.columns.TableName,
		where,
		r.columns.CreatedAt,
		len(args)-1,
		len(args))
	if err := r.db.Select(ctx, &items, listQuery, args...); err != nil {
		r.Log.Error("failed to list explanations",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to list explanations: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return &domain.ExplanationPage{
		Items:      items,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}

// ToggleFavorite переключает флаг избранного и возвращает новое состояние
func (r *Repository) ToggleFavorite(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	var favorite bool
	query := fmt.Sprintf(`UPDATE %s SET %s = NOT %s WHERE %s = $1 AND %s = $2 AND %s IS NULL RETURNING %s`,
		r.columns.TableName,
		r.columns.Favorite,
		r.columns.Favorite,
		r.columns.ID,
		r.columns.UserID,
		r.columns.DeletedAt,
		r.columns.Favorite)
	err := r.db.QueryRow(ctx, query, id, userID).Scan(&favorite)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, domain.ErrNotFound
		}
		r.Log.Error("failed to toggle favorite",
			"error", err,
			"id", id,
			"user_id", userID)
		return false, fmt.Errorf("failed to toggle favorite: %w", err)
	}

	r.Log.Debug("favorite toggled", "id", id, "favorite", favorite)
	return favorite, nil
}

// SoftDelete проставляет метку удаления и возвращает запись (URL-ы нужны для очистки хранилища)
func (r *Repository) SoftDelete(ctx context.Context, id, userID uuid.UUID) (*domain.Explanation, error) {
	var e domain.Explanation
	query := fmt.Sprintf(`UPDATE %s SET %s = $3 WHERE %s = $1 AND %s = $2 AND %s IS NULL RETURNING %s`,
		r.columns.TableName,
		r.columns.DeletedAt,
		r.columns.ID,
		r.columns.UserID,
		r.columns.DeletedAt,
		r.allColumns())
	err := r.db.QueryRow(ctx, query, id, userID, time.Now()).StructScan(&e)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.Log.Error("failed to soft delete explanation",
			"error", err,
			"id", id,
			"user_id", userID)
		return nil, fmt.Errorf("failed to soft delete explanation: %w", err)
	}

	r.Log.Debug("explanation soft deleted", "id", id, "user_id", userID)
	return &e, nil
}

// DailyTotals возвращает число созданий с указанного момента по всем пользователям.
// Мягко удалённые записи считаются: создание состоялось и квоту потратило.
func (r *Repository) DailyTotals(ctx context.Context, since time.Time) (int64, error) {
	var total int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s >= $1`,
		r.columns.TableName,
		r.columns.CreatedAt)
	if err := r.db.Get(ctx, &total, query, since); err != nil {
		r.Log.Error("failed to count daily totals",
			"error", err,
			"since", since)
		return 0, fmt.Errorf("failed to count daily totals: %w", err)
	}
	return total, nil
}
