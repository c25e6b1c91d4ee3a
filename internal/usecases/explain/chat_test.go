package explain

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Nandan222001/ask-anything/internal/domain"
	"github.com/google/uuid"
)

func chatExplanation(userID uuid.UUID) *domain.Explanation {
	return &domain.Explanation{
		ID:          uuid.New(),
		UserID:      userID,
		Explanation: "A vintage motorcycle.",
		Category:    domain.CategoryVehicle,
		ImageHash:   "hash-e",
		CreatedAt:   time.Now(),
	}
}

// storedMessages имитирует таблицу сообщений одного объяснения
type storedMessages struct {
	items []*domain.Message
}

func (s *storedMessages) add(m *domain.Message) {
	s.items = append(s.items, m)
}

func (s *storedMessages) lastN(n int) []*domain.Message {
	if len(s.items) <= n {
		return append([]*domain.Message{}, s.items...)
	}
	return append([]*domain.Message{}, s.items[len(s.items)-n:]...)
}

func TestSendMessage_PersistsQuestionBeforeModelCall(t *testing.T) {
	env := newTestEnv(t)
	explanation := chatExplanation(env.user.ID)
	env.explanations.GetByIDFunc = func(ctx context.Context, id, userID uuid.UUID) (*domain.Explanation, error) {
		return explanation, nil
	}

	store := &storedMessages{}
	env.messages.CreateFunc = func(ctx context.Context, m *domain.Message) error {
		store.add(m)
		return nil
	}
	env.messages.GetLastNFunc = func(ctx context.Context, explanationID uuid.UUID, n int) ([]*domain.Message, error) {
		return store.lastN(n), nil
	}

	// Модель падает: вопрос пользователя должен остаться сохранённым
	env.vision.ChatFunc = func(ctx context.Context, chatCtx domain.ChatContext, history []domain.ChatTurn, question string) (*domain.ChatResult, error) {
		return nil, domain.ErrAnalysisFailed
	}

	_, err := env.svc.SendMessage(context.Background(), explanation.ID, env.user.ID, "Is it restored?")
	if !errors.Is(err, domain.ErrAnalysisFailed) {
		t.Fatalf("expected ErrAnalysisFailed, got %v", err)
	}
	if len(store.items) != 1 || store.items[0].Role != domain.RoleUser {
		t.Fatalf("user question must be persisted before the model call, stored %d", len(store.items))
	}
}

// Сценарий: 12 сохранённых реплик, модель получает контекстом только последние 10
func TestSendMessage_ContextWindowBounded(t *testing.T) {
	env := newTestEnv(t)
	explanation := chatExplanation(env.user.ID)
	env.explanations.GetByIDFunc = func(ctx context.Context, id, userID uuid.UUID) (*domain.Explanation, error) {
		return explanation, nil
	}

	store := &storedMessages{}
	for i := 0; i < 12; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		store.add(&domain.Message{
			ID:            uuid.New(),
			ExplanationID: explanation.ID,
			UserID:        env.user.ID,
			Role:          role,
			Content:       fmt.Sprintf("turn %d", i),
			CreatedAt:     time.Now().Add(time.Duration(i) * time.Second),
		})
	}

	env.messages.CreateFunc = func(ctx context.Context, m *domain.Message) error {
		store.add(m)
		return nil
	}
	env.messages.GetLastNFunc = func(ctx context.Context, explanationID uuid.UUID, n int) ([]*domain.Message, error) {
		if n != 10 {
			t.Errorf("expected context window of 10, got %d", n)
		}
		return store.lastN(n), nil
	}
	env.messages.GetHistoryFunc = func(ctx context.Context, explanationID uuid.UUID) ([]*domain.Message, error) {
		return append([]*domain.Message{}, store.items...), nil
	}

	var gotHistory []domain.ChatTurn
	env.vision.ChatFunc = func(ctx context.Context, chatCtx domain.ChatContext, history []domain.ChatTurn, question string) (*domain.ChatResult, error) {
		gotHistory = history
		if chatCtx.Explanation != explanation.Explanation {
			t.Errorf("chat context must carry the original explanation")
		}
		return &domain.ChatResult{Response: "Yes, fully restored.", TokensUsed: 30, Model: "gpt-4o"}, nil
	}

	reply, err := env.svc.SendMessage(context.Background(), explanation.ID, env.user.ID, "Is it restored?")
	if err != nil {
		t.Fatalf("send message failed: %v", err)
	}

	// Окно 10 минус текущий вопрос, он уходит отдельной репликой
	if len(gotHistory) != 9 {
		t.Errorf("expected 9 history turns, got %d", len(gotHistory))
	}
	if reply.Role != domain.RoleAssistant || reply.Content != "Yes, fully restored." {
		t.Errorf("unexpected assistant reply: %+v", reply)
	}

	// История целиком: 12 старых плюс новая пара
	history, err := env.svc.GetHistory(context.Background(), explanation.ID, env.user.ID)
	if err != nil {
		t.Fatalf("get history failed: %v", err)
	}
	if len(history) != 14 {
		t.Errorf("expected 14 stored messages, got %d", len(history))
	}
}

func TestSendMessage_ForeignExplanationNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.explanations.GetByIDFunc = func(ctx context.Context, id, userID uuid.UUID) (*domain.Explanation, error) {
		return nil, domain.ErrNotFound
	}

	created := 0
	env.messages.CreateFunc = func(ctx context.Context, m *domain.Message) error {
		created++
		return nil
	}

	_, err := env.svc.SendMessage(context.Background(), uuid.New(), env.user.ID, "hello")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if created != 0 {
		t.Error("no message may be persisted for a foreign explanation")
	}
	if env.vision.ChatCalls != 0 {
		t.Error("no model call for a foreign explanation")
	}
}

func TestSendMessage_EmptyTextRejected(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.SendMessage(context.Background(), uuid.New(), env.user.ID, "   ")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	// Текстовая валидация не маскируется под ошибку изображения
	if errors.Is(err, domain.ErrInvalidImage) {
		t.Error("text validation must not report an image error")
	}
}
