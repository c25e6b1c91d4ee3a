package storage

import (
	"context"
	"time"
)

// IObjectStore интерфейс для работы с S3-совместимым хранилищем (MinIO)
type IObjectStore interface {
	// Upload загружает объект и возвращает публичный URL
	Upload(ctx context.Context, data []byte, path string, contentType string) (string, error)
	// Delete удаляет объект; вызывающие трактуют ошибку как best-effort
	Delete(ctx context.Context, path string) error
	// PresignedPut генерирует presigned URL для прямой загрузки клиентом
	PresignedPut(ctx context.Context, path string, expires time.Duration) (string, error)
}
