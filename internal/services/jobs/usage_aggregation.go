package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Nandan222001/ask-anything/internal/ports/events"
	"github.com/Nandan222001/ask-anything/internal/ports/repository"
)

const usageAggregationName = "usage-aggregation"

// UsageAggregation джоба считает суммарное число созданий за прошедшие
// сутки и шлёт агрегат в Kafka. Каждый день в 00:05 UTC.
type UsageAggregation struct {
	explanationRepo repository.IExplanationRepo
	producer        events.IProducer
	log             *slog.Logger
}

func NewUsageAggregation(
	explanationRepo repository.IExplanationRepo,
	producer events.IProducer,
	log *slog.Logger,
) *UsageAggregation {
	return &UsageAggregation{
		explanationRepo: explanationRepo,
		producer:        producer,
		log:             log,
	}
}

func (j *UsageAggregation) Name() string {
	return usageAggregationName
}

// NextRun каждый день в 00:05 UTC
func (j *UsageAggregation) NextRun(now time.Time) time.Time {
	nowUTC := now.UTC()
	next := time.Date(nowUTC.Year(), nowUTC.Month(), nowUTC.Day(), 0, 5, 0, 0, time.UTC)
	if !next.After(nowUTC) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

// Run агрегирует прошедшие сутки
func (j *UsageAggregation) Run(ctx context.Context) error {
	dayStart := time.Now().UTC().Truncate(24 * time.Hour).Add(-24 * time.Hour)

	total, err := j.explanationRepo.DailyTotals(ctx, dayStart)
	if err != nil {
		return fmt.Errorf("failed to aggregate daily usage: %w", err)
	}

	day := dayStart.Format("2006-01-02")
	if err := j.producer.SendDailyAggregate(ctx, day, total); err != nil {
		return fmt.Errorf("failed to send daily aggregate: %w", err)
	}

	j.log.Info("daily usage aggregated", "day", day, "total", total)
	return nil
}
