package s3

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/Nandan222001/ask-anything/internal/ports/storage"
	"github.com/minio/minio-go/v7"
)

// Client обёртка над minio.Client для работы с объектным хранилищем
type Client struct {
	client  *minio.Client
	bucket  string
	baseURL string
	log     *slog.Logger
}

// NewClient создаёт новый клиент хранилища
func NewClient(client *minio.Client, bucket, baseURL string, log *slog.Logger) storage.IObjectStore {
	return &Client{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		log:     log,
	}
}

// Upload загружает объект и возвращает публичный URL
func (c *Client) Upload(ctx context.Context, data []byte, path string, contentType string) (string, error) {
	_, err := c.client.PutObject(ctx, c.bucket, path, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", path, err)
	}

	c.log.Debug("object uploaded",
		"path", path,
		"size", len(data),
		"content_type", contentType)

	return c.publicURL(path), nil
}

// Delete удаляет объект по пути
func (c *Client) Delete(ctx context.Context, path string) error {
	if err := c.client.RemoveObject(ctx, c.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", path, err)
	}
	c.log.Debug("object deleted", "path", path)
	return nil
}

// PresignedPut генерирует presigned URL для прямой загрузки клиентом
func (c *Client) PresignedPut(ctx context.Context, path string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = 5 * time.Minute // дефолтный TTL
	}

	url, err := c.client.PresignedPutObject(ctx, c.bucket, path, expires)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL for %s: %w", path, err)
	}

	return url.String(), nil
}

func (c *Client) publicURL(path string) string {
	return c.baseURL + "/" + strings.TrimPrefix(path, "/")
}
