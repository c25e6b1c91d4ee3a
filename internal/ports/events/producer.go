package events

import (
	"context"

	"github.com/Nandan222001/ask-anything/internal/domain"
)

// IProducer интерфейс для отправки событий использования (аналитика/учёт затрат)
type IProducer interface {
	SendUsageEvent(ctx context.Context, event *domain.UsageEvent) error
	SendDailyAggregate(ctx context.Context, day string, total int64) error
	Close() error
}
