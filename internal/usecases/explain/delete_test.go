package explain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Nandan222001/ask-anything/internal/domain"
	"github.com/google/uuid"
)

func TestDelete_RemovesBothObjects(t *testing.T) {
	env := newTestEnv(t)
	explanation := chatExplanation(env.user.ID)

	env.explanations.SoftDeleteFunc = func(ctx context.Context, id, userID uuid.UUID) (*domain.Explanation, error) {
		now := time.Now()
		e := *explanation
		e.DeletedAt = &now
		return &e, nil
	}

	deleted := make(chan string, 2)
	env.store.DeleteFunc = func(ctx context.Context, path string) error {
		deleted <- path
		return nil
	}

	if err := env.svc.Delete(context.Background(), explanation.ID, env.user.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	// Очистка хранилища асинхронная
	paths := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case p := <-deleted:
			paths[p] = true
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for object deletion")
		}
	}
	if len(paths) != 2 {
		t.Errorf("expected main and thumbnail paths, got %v", paths)
	}
}

func TestDelete_StorageFailureEnqueuesCleanup(t *testing.T) {
	env := newTestEnv(t)
	explanation := chatExplanation(env.user.ID)

	env.explanations.SoftDeleteFunc = func(ctx context.Context, id, userID uuid.UUID) (*domain.Explanation, error) {
		return explanation, nil
	}
	env.store.DeleteFunc = func(ctx context.Context, path string) error {
		return errors.New("storage unavailable")
	}

	enqueued := make(chan *domain.CleanupTask, 2)
	env.cleanups.EnqueueFunc = func(ctx context.Context, task *domain.CleanupTask) error {
		enqueued <- task
		return nil
	}

	// Ошибка хранилища не пробрасывается: запись уже удалена
	if err := env.svc.Delete(context.Background(), explanation.ID, env.user.ID); err != nil {
		t.Fatalf("delete must not fail on storage errors: %v", err)
	}

	for i := 0; i < 2; i++ {
		select {
		case task := <-enqueued:
			if task.ObjectPath == "" {
				t.Error("cleanup task must carry the object path")
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for cleanup enqueue")
		}
	}
}

func TestDelete_RemovesChatHistory(t *testing.T) {
	env := newTestEnv(t)
	explanation := chatExplanation(env.user.ID)

	env.explanations.SoftDeleteFunc = func(ctx context.Context, id, userID uuid.UUID) (*domain.Explanation, error) {
		return explanation, nil
	}

	historyDeletes := 0
	env.messages.DeleteByExplanationFunc = func(ctx context.Context, explanationID uuid.UUID) error {
		historyDeletes++
		if explanationID != explanation.ID {
			t.Errorf("history deleted for wrong explanation: %s", explanationID)
		}
		return nil
	}

	if err := env.svc.Delete(context.Background(), explanation.ID, env.user.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if historyDeletes != 1 {
		t.Errorf("expected chat history deleted with the explanation, got %d calls", historyDeletes)
	}
}

func TestDelete_NotFound(t *testing.T) {
	env := newTestEnv(t)
	env.explanations.SoftDeleteFunc = func(ctx context.Context, id, userID uuid.UUID) (*domain.Explanation, error) {
		return nil, domain.ErrNotFound
	}

	err := env.svc.Delete(context.Background(), uuid.New(), env.user.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetByID_IncrementsViews(t *testing.T) {
	env := newTestEnv(t)
	explanation := chatExplanation(env.user.ID)
	explanation.ViewCount = 5

	env.explanations.GetByIDFunc = func(ctx context.Context, id, userID uuid.UUID) (*domain.Explanation, error) {
		e := *explanation
		return &e, nil
	}
	increments := 0
	env.explanations.IncrementViewsFunc = func(ctx context.Context, id uuid.UUID) error {
		increments++
		return nil
	}

	got, err := env.svc.GetByID(context.Background(), explanation.ID, env.user.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if increments != 1 {
		t.Errorf("expected one view increment, got %d", increments)
	}
	if got.ViewCount != 6 {
		t.Errorf("expected returned view count 6, got %d", got.ViewCount)
	}
}

func TestGetByID_MissDoesNotIncrement(t *testing.T) {
	env := newTestEnv(t)
	env.explanations.GetByIDFunc = func(ctx context.Context, id, userID uuid.UUID) (*domain.Explanation, error) {
		return nil, domain.ErrNotFound
	}
	increments := 0
	env.explanations.IncrementViewsFunc = func(ctx context.Context, id uuid.UUID) error {
		increments++
		return nil
	}

	_, err := env.svc.GetByID(context.Background(), uuid.New(), env.user.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if increments != 0 {
		t.Error("miss must not increment the view counter")
	}
}
