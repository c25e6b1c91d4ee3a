package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Category категория объяснения (закрытый набор + "other" как запасной вариант)
type Category string

const (
	CategoryFood       Category = "food"
	CategoryPlant      Category = "plant"
	CategoryAnimal     Category = "animal"
	CategoryLandmark   Category = "landmark"
	CategoryTechnology Category = "technology"
	CategoryVehicle    Category = "vehicle"
	CategoryArt        Category = "art"
	CategoryDocument   Category = "document"
	CategoryFashion    Category = "fashion"
	CategoryNature     Category = "nature"
	CategoryHousehold  Category = "household"
	CategoryOther      Category = "other"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryFood, CategoryPlant, CategoryAnimal, CategoryLandmark,
		CategoryTechnology, CategoryVehicle, CategoryArt, CategoryDocument,
		CategoryFashion, CategoryNature, CategoryHousehold, CategoryOther:
		return true
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// NormalizeCategory приводит произвольную строку от модели к валидной категории
func NormalizeCategory(s string) Category {
	c := Category(s)
	if c.IsValid() {
		return c
	}
	return CategoryOther
}

// Tags список тегов, хранится как JSONB с поддержкой sql.Scanner
type Tags []string

// Scan реализует sql.Scanner для сканирования JSONB из БД
func (t *Tags) Scan(value interface{}) error {
	if value == nil {
		*t = Tags{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for Tags: %T", value)
	}
	if len(data) == 0 {
		*t = Tags{}
		return nil
	}
	return json.Unmarshal(data, t)
}

// Value реализует driver.Valuer для сохранения в БД
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t)
}

// Explanation одна запись "фото → объяснение", принадлежит пользователю
type Explanation struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	UserID        uuid.UUID  `json:"user_id" db:"user_id"`
	ImageURL      string     `json:"image_url" db:"image_url"`
	ThumbnailURL  string     `json:"thumbnail_url" db:"thumbnail_url"`
	ImageHash     string     `json:"image_hash" db:"image_hash"` // sha-256 финальных байт основного файла, ключ дедупликации
	Prompt        *string    `json:"prompt,omitempty" db:"prompt"`
	Explanation   string     `json:"explanation" db:"explanation"`
	Model         string     `json:"model" db:"model"`
	ProcessingMs  int64      `json:"processing_ms" db:"processing_ms"`
	Confidence    float64    `json:"confidence" db:"confidence"` // всегда в [0,1]
	Category      Category   `json:"category" db:"category"`
	Tags          Tags       `json:"tags" db:"tags"`
	Language      string     `json:"language" db:"language"`
	DeveloperMode bool       `json:"developer_mode" db:"developer_mode"`
	Favorite      bool       `json:"favorite" db:"favorite"`
	ViewCount     int64      `json:"view_count" db:"view_count"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty" db:"deleted_at"` // null = живая запись
}

// IsDeleted проверяет мягкое удаление
func (e *Explanation) IsDeleted() bool {
	return e.DeletedAt != nil
}

// ClampConfidence зажимает confidence в [0,1]
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ListFilter параметры выборки списка объяснений
type ListFilter struct {
	Page          int
	Limit         int
	Category      *Category
	Search        string
	FavoritesOnly bool
}

// ExplanationPage страница результатов списка
type ExplanationPage struct {
	Items      []*Explanation `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
}
