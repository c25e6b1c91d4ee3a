package jobs

import (
	"context"
	"io"
	"testing"
	"time"

	"log/slog"

	"github.com/Nandan222001/ask-anything/internal/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUsageAggregation_Run(t *testing.T) {
	expectedStart := time.Now().UTC().Truncate(24 * time.Hour).Add(-24 * time.Hour)

	var gotSince time.Time
	explanations := &testutil.MockExplanationRepo{
		DailyTotalsFunc: func(ctx context.Context, since time.Time) (int64, error) {
			gotSince = since
			return 42, nil
		},
	}

	var gotDay string
	var gotTotal int64
	producer := &testutil.MockProducer{
		SendDailyAggregateFunc: func(ctx context.Context, day string, total int64) error {
			gotDay = day
			gotTotal = total
			return nil
		},
	}

	job := NewUsageAggregation(explanations, producer, testLogger())
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if !gotSince.Equal(expectedStart) {
		t.Errorf("expected totals since %s, got %s", expectedStart, gotSince)
	}
	if gotDay != expectedStart.Format("2006-01-02") {
		t.Errorf("unexpected aggregate day: %q", gotDay)
	}
	if gotTotal != 42 {
		t.Errorf("expected total 42, got %d", gotTotal)
	}
}

func TestUsageAggregation_NextRun(t *testing.T) {
	job := NewUsageAggregation(&testutil.MockExplanationRepo{}, &testutil.MockProducer{}, testLogger())

	// До 00:05 запуск сегодня, после - завтра
	before := time.Date(2026, 8, 29, 0, 1, 0, 0, time.UTC)
	if next := job.NextRun(before); !next.Equal(time.Date(2026, 8, 29, 0, 5, 0, 0, time.UTC)) {
		t.Errorf("unexpected next run before window: %s", next)
	}
	after := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	if next := job.NextRun(after); !next.Equal(time.Date(2026, 8, 30, 0, 5, 0, 0, time.UTC)) {
		t.Errorf("unexpected next run after window: %s", next)
	}
}
