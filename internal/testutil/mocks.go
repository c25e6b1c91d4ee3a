package testutil

import (
	"context"
	"errors"
	"time"

	"github.com/Nandan222001/ask-anything/internal/domain"
	"github.com/Nandan222001/ask-anything/internal/ports/vision"
	"github.com/google/uuid"
)

// MockExplanationRepo мок репозитория объяснений с подменяемыми функциями
type MockExplanationRepo struct {
	CreateFunc         func(ctx context.Context, e *domain.Explanation) (*domain.Explanation, error)
	FindDuplicateFunc  func(ctx context.Context, userID uuid.UUID, imageHash string) (*domain.Explanation, error)
	GetByIDFunc        func(ctx context.Context, id, userID uuid.UUID) (*domain.Explanation, error)
	IncrementViewsFunc func(ctx context.Context, id uuid.UUID) error
	ListFunc           func(ctx context.Context, userID uuid.UUID, filter domain.ListFilter) (*domain.ExplanationPage, error)
	ToggleFavoriteFunc func(ctx context.Context, id, userID uuid.UUID) (bool, error)
	SoftDeleteFunc     func(ctx context.Context, id, userID uuid.UUID) (*domain.Explanation, error)
	DailyTotalsFunc    func(ctx context.Context, since time.Time) (int64, error)
}

func (m *MockExplanationRepo) Create(ctx context.Context, e *domain.Explanation) (*domain.Explanation, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, e)
	}
	return nil, errors.New("not implemented")
}

func (m *MockExplanationRepo) FindDuplicate(ctx context.Context, userID uuid.UUID, imageHash string) (*domain.Explanation, error) {
	if m.FindDuplicateFunc != nil {
		return m.FindDuplicateFunc(ctx, userID, imageHash)
	}
	return nil, errors.New("not implemented")
}

func (m *MockExplanationRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Explanation, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id, userID)
	}
	return nil, errors.New("not implemented")
}

func (m *MockExplanationRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	if m.IncrementViewsFunc != nil {
		return m.IncrementViewsFunc(ctx, id)
	}
	return nil
}

func (m *MockExplanationRepo) List(ctx context.Context, userID uuid.UUID, filter domain.ListFilter) (*domain.ExplanationPage, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, filter)
	}
	return nil, errors.New("not implemented")
}

func (m *MockExplanationRepo) ToggleFavorite(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	if m.ToggleFavoriteFunc != nil {
		return m.ToggleFavoriteFunc(ctx, id, userID)
	}
	return false, errors.New("not implemented")
}

func (m *MockExplanationRepo) SoftDelete(ctx context.Context, id, userID uuid.UUID) (*domain.Explanation, error) {
	if m.SoftDeleteFunc != nil {
		return m.SoftDeleteFunc(ctx, id, userID)
	}
	return nil, errors.New("not implemented")
}

func (m *MockExplanationRepo) DailyTotals(ctx context.Context, since time.Time) (int64, error) {
	if m.DailyTotalsFunc != nil {
		return m.DailyTotalsFunc(ctx, since)
	}
	return 0, errors.New("not implemented")
}

// MockMessageRepo мок репозитория сообщений
type MockMessageRepo struct {
	CreateFunc              func(ctx context.Context, m *domain.Message) error
	GetHistoryFunc          func(ctx context.Context, explanationID uuid.UUID) ([]*domain.Message, error)
	GetLastNFunc            func(ctx context.Context, explanationID uuid.UUID, n int) ([]*domain.Message, error)
	DeleteByExplanationFunc func(ctx context.Context, explanationID uuid.UUID) error
}

func (m *MockMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, msg)
	}
	return errors.New("not implemented")
}

func (m *MockMessageRepo) GetHistory(ctx context.Context, explanationID uuid.UUID) ([]*domain.Message, error) {
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx, explanationID)
	}
	return nil, errors.New("not implemented")
}

func (m *MockMessageRepo) GetLastN(ctx context.Context, explanationID uuid.UUID, n int) ([]*domain.Message, error) {
	if m.GetLastNFunc != nil {
		return m.GetLastNFunc(ctx, explanationID, n)
	}
	return nil, errors.New("not implemented")
}

func (m *MockMessageRepo) DeleteByExplanation(ctx context.Context, explanationID uuid.UUID) error {
	if m.DeleteByExplanationFunc != nil {
		return m.DeleteByExplanationFunc(ctx, explanationID)
	}
	return nil
}

// MockUserRepo мок репозитория пользователей
type MockUserRepo struct {
	GetByIDFunc             func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ResetUsageIfExpiredFunc func(ctx context.Context, id uuid.UUID, now, nextReset time.Time) (bool, error)
	IncrementUsageFunc      func(ctx context.Context, id uuid.UUID) error
}

func (m *MockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *MockUserRepo) ResetUsageIfExpired(ctx context.Context, id uuid.UUID, now, nextReset time.Time) (bool, error) {
	if m.ResetUsageIfExpiredFunc != nil {
		return m.ResetUsageIfExpiredFunc(ctx, id, now, nextReset)
	}
	return false, errors.New("not implemented")
}

func (m *MockUserRepo) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	if m.IncrementUsageFunc != nil {
		return m.IncrementUsageFunc(ctx, id)
	}
	return errors.New("not implemented")
}

// MockCleanupRepo мок очереди отложенной очистки
type MockCleanupRepo struct {
	EnqueueFunc           func(ctx context.Context, task *domain.CleanupTask) error
	GetPendingFunc        func(ctx context.Context, limit int) ([]*domain.CleanupTask, error)
	MarkDoneFunc          func(ctx context.Context, id uuid.UUID) error
	IncrementAttemptsFunc func(ctx context.Context, id uuid.UUID) error
}

func (m *MockCleanupRepo) Enqueue(ctx context.Context, task *domain.CleanupTask) error {
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, task)
	}
	return nil
}

func (m *MockCleanupRepo) GetPending(ctx context.Context, limit int) ([]*domain.CleanupTask, error) {
	if m.GetPendingFunc != nil {
		return m.GetPendingFunc(ctx, limit)
	}
	return nil, errors.New("not implemented")
}

func (m *MockCleanupRepo) MarkDone(ctx context.Context, id uuid.UUID) error {
	if m.MarkDoneFunc != nil {
		return m.MarkDoneFunc(ctx, id)
	}
	return errors.New("not implemented")
}

func (m *MockCleanupRepo) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	if m.IncrementAttemptsFunc != nil {
		return m.IncrementAttemptsFunc(ctx, id)
	}
	return errors.New("not implemented")
}

// MockVisionService мок сервиса анализа
type MockVisionService struct {
	AnalyzeFunc func(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, bool, error)
	ChatFunc    func(ctx context.Context, chatCtx domain.ChatContext, history []domain.ChatTurn, question string) (*domain.ChatResult, error)

	AnalyzeCalls int
	ChatCalls    int
}

func (m *MockVisionService) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, bool, error) {
	m.AnalyzeCalls++
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, req)
	}
	return nil, false, errors.New("not implemented")
}

func (m *MockVisionService) Chat(ctx context.Context, chatCtx domain.ChatContext, history []domain.ChatTurn, question string) (*domain.ChatResult, error) {
	m.ChatCalls++
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, chatCtx, history, question)
	}
	return nil, errors.New("not implemented")
}

// MockObjectStore мок объектного хранилища
type MockObjectStore struct {
	UploadFunc       func(ctx context.Context, data []byte, path string, contentType string) (string, error)
	DeleteFunc       func(ctx context.Context, path string) error
	PresignedPutFunc func(ctx context.Context, path string, expires time.Duration) (string, error)
}

func (m *MockObjectStore) Upload(ctx context.Context, data []byte, path string, contentType string) (string, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, data, path, contentType)
	}
	return "http://storage.local/captures/" + path, nil
}

func (m *MockObjectStore) Delete(ctx context.Context, path string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, path)
	}
	return nil
}

func (m *MockObjectStore) PresignedPut(ctx context.Context, path string, expires time.Duration) (string, error) {
	if m.PresignedPutFunc != nil {
		return m.PresignedPutFunc(ctx, path, expires)
	}
	return "http://storage.local/presigned/" + path, nil
}

// MockProducer мок продюсера событий
type MockProducer struct {
	SendUsageEventFunc     func(ctx context.Context, event *domain.UsageEvent) error
	SendDailyAggregateFunc func(ctx context.Context, day string, total int64) error
}

func (m *MockProducer) SendUsageEvent(ctx context.Context, event *domain.UsageEvent) error {
	if m.SendUsageEventFunc != nil {
		return m.SendUsageEventFunc(ctx, event)
	}
	return nil
}

func (m *MockProducer) SendDailyAggregate(ctx context.Context, day string, total int64) error {
	if m.SendDailyAggregateFunc != nil {
		return m.SendDailyAggregateFunc(ctx, day, total)
	}
	return nil
}

func (m *MockProducer) Close() error { return nil }

// MockVisionProvider мок vision-провайдера
type MockVisionProvider struct {
	AnalyzeFunc func(ctx context.Context, params vision.AnalyzeParams) (*vision.Reply, error)
	ChatFunc    func(ctx context.Context, messages []vision.ChatMessage) (*vision.Reply, error)

	AnalyzeCalls int
	ChatCalls    int
}

func (m *MockVisionProvider) Analyze(ctx context.Context, params vision.AnalyzeParams) (*vision.Reply, error) {
	m.AnalyzeCalls++
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, params)
	}
	return nil, errors.New("not implemented")
}

func (m *MockVisionProvider) Chat(ctx context.Context, messages []vision.ChatMessage) (*vision.Reply, error) {
	m.ChatCalls++
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, messages)
	}
	return nil, errors.New("not implemented")
}

// MockCache мок кэша в памяти
type MockCache struct {
	values map[string]string

	GetCalls int
	SetCalls int
}

func NewMockCache() *MockCache {
	return &MockCache{values: make(map[string]string)}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	m.GetCalls++
	return m.values[key], nil
}

func (m *MockCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	m.SetCalls++
	m.values[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func (m *MockCache) Close() error { return nil }
