package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Nandan222001/ask-anything/internal/ports/cache"
	"github.com/redis/go-redis/v9"
)

// Client реализация cache.Cache поверх Redis. Кэш в сервисе best-effort:
// промах не ошибка, а недоступность Redis деградирует до работы без кэша.
type Client struct {
	client *redis.Client
}

// NewClient оборачивает подключение в cache.Cache
func NewClient(client *redis.Client) cache.Cache {
	return &Client{
		client: client,
	}
}

// Get возвращает значение по ключу; промах это ("", nil), не ошибка
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return val, nil
}

// Set записывает значение с TTL
func (c *Client) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Delete инвалидирует ключ
func (c *Client) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// Close закрывает подключение к кэшу
func (c *Client) Close() error {
	return c.client.Close()
}
