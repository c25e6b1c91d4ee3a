package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidImage повреждённое или неподдерживаемое изображение (ошибка входных данных, без ретраев)
	ErrInvalidImage = errors.New("invalid image")
	// ErrImageConstraint изображение валидное, но нарушает ограничения по размеру/габаритам
	ErrImageConstraint = errors.New("image constraint violation")
	// ErrInvalidInput текстовый ввод (промпт, вопрос в чате) пустой или превышает лимит
	ErrInvalidInput = errors.New("invalid input")
	// ErrUploadFailed не удалось загрузить файл в объектное хранилище
	ErrUploadFailed = errors.New("upload failed")
	// ErrAnalysisFailed внешняя модель не ответила или ответила ошибкой
	ErrAnalysisFailed = errors.New("analysis failed")
	// ErrQuotaExceeded дневной лимит тарифа исчерпан
	ErrQuotaExceeded = errors.New("quota exceeded")
	// ErrNotFound запись не существует, не принадлежит пользователю или удалена
	ErrNotFound = errors.New("not found")
)

// QuotaError ошибка превышения квоты с временем сброса для клиента
type QuotaError struct {
	Used    int
	Limit   int
	ResetAt time.Time
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("quota exceeded: %d/%d, resets at %s", e.Used, e.Limit, e.ResetAt.Format(time.RFC3339))
}

// Is позволяет проверять QuotaError через errors.Is(err, ErrQuotaExceeded)
func (e *QuotaError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// ValidationError причина отклонения входных данных, читаемая человеком
type ValidationError struct {
	Kind   error // ErrInvalidImage, ErrImageConstraint или ErrInvalidInput
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == e.Kind
}
