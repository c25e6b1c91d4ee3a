package cache

import (
	"context"
	"time"
)

// Cache интерфейс кэша результатов. Get на промахе возвращает ("", nil):
// отсутствие значения для best-effort кэша не ошибка.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
