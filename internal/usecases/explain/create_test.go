package explain

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"testing"
	"time"

	"log/slog"

	"github.com/Nandan222001/ask-anything/internal/domain"
	"github.com/Nandan222001/ask-anything/internal/pkg/imageproc"
	"github.com/Nandan222001/ask-anything/internal/testutil"
	"github.com/google/uuid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// makeJPEG генерирует валидный JPEG; seed меняет пиксели, а с ними и хэш
func makeJPEG(t *testing.T, w, h int, seed uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x) + seed, G: uint8(y), B: seed, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("failed to encode test jpeg: %v", err)
	}
	return buf.Bytes()
}

type testEnv struct {
	svc          *Service
	explanations *testutil.MockExplanationRepo
	messages     *testutil.MockMessageRepo
	users        *testutil.MockUserRepo
	cleanups     *testutil.MockCleanupRepo
	vision       *testutil.MockVisionService
	store        *testutil.MockObjectStore

	user       *domain.User
	increments int
}

func testLimits() domain.TierLimits {
	return domain.TierLimits{Free: 10, Pro: 1000, Developer: 10000}
}

func testConfig() Config {
	return Config{ChatContextTurns: 10, MaxQuestionLen: 2000, MaxPromptLen: 2000}
}

// newTestEnv собирает сервис с рабочими по умолчанию моками:
// свободная квота, дубликатов нет, анализ успешен
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		explanations: &testutil.MockExplanationRepo{},
		messages:     &testutil.MockMessageRepo{},
		users:        &testutil.MockUserRepo{},
		cleanups:     &testutil.MockCleanupRepo{},
		vision:       &testutil.MockVisionService{},
		store:        &testutil.MockObjectStore{},
		user: &domain.User{
			ID:           uuid.New(),
			Tier:         domain.TierFree,
			DailyCount:   0,
			UsageResetAt: time.Now().Add(12 * time.Hour),
		},
	}

	env.users.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
		u := *env.user
		return &u, nil
	}
	env.users.IncrementUsageFunc = func(ctx context.Context, id uuid.UUID) error {
		env.increments++
		env.user.DailyCount++
		env.user.LifetimeCount++
		return nil
	}
	env.explanations.FindDuplicateFunc = func(ctx context.Context, userID uuid.UUID, hash string) (*domain.Explanation, error) {
		return nil, nil
	}
	env.explanations.CreateFunc = func(ctx context.Context, e *domain.Explanation) (*domain.Explanation, error) {
		return e, nil
	}
	env.vision.AnalyzeFunc = func(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, bool, error) {
		return &domain.AnalysisResult{
			Explanation:  "A red square pattern.",
			Category:     domain.CategoryArt,
			Tags:         domain.Tags{"pattern"},
			Confidence:   0.9,
			Model:        "gpt-4o",
			TokensUsed:   100,
			ProcessingMs: 5,
		}, false, nil
	}

	env.svc = New(
		env.explanations,
		env.messages,
		env.users,
		env.cleanups,
		env.vision,
		env.store,
		&testutil.MockProducer{},
		imageproc.New(imageproc.Config{}),
		testLimits(),
		testConfig(),
		testLogger(),
	)
	return env
}

func TestCreate_Success(t *testing.T) {
	env := newTestEnv(t)

	explanation, err := env.svc.Create(context.Background(), CreateParams{
		UserID:     env.user.ID,
		ImageBytes: makeJPEG(t, 64, 64, 1),
		Prompt:     "what is this",
		Mode:       domain.ModeStandard,
		Language:   "en",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if explanation.Explanation != "A red square pattern." {
		t.Errorf("unexpected explanation text: %q", explanation.Explanation)
	}
	if explanation.ImageHash == "" {
		t.Error("expected non-empty image hash")
	}
	if explanation.ImageURL == "" || explanation.ThumbnailURL == "" {
		t.Error("expected uploaded asset URLs on the record")
	}
	if env.increments != 1 {
		t.Errorf("expected exactly one quota increment, got %d", env.increments)
	}
	if env.vision.AnalyzeCalls != 1 {
		t.Errorf("expected one model call, got %d", env.vision.AnalyzeCalls)
	}
}

func TestCreate_InvalidImageRejectedEarly(t *testing.T) {
	env := newTestEnv(t)
	uploads := 0
	env.store.UploadFunc = func(ctx context.Context, data []byte, path, contentType string) (string, error) {
		uploads++
		return "http://storage.local/" + path, nil
	}

	_, err := env.svc.Create(context.Background(), CreateParams{
		UserID:     env.user.ID,
		ImageBytes: []byte("definitely not an image"),
	})
	if !errors.Is(err, domain.ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
	if uploads != 0 {
		t.Errorf("invalid image must not be uploaded, got %d uploads", uploads)
	}
	if env.vision.AnalyzeCalls != 0 || env.increments != 0 {
		t.Error("invalid image must not reach the model or quota")
	}
}

func TestCreate_PromptTooLongRejected(t *testing.T) {
	env := newTestEnv(t)

	long := make([]byte, 2001)
	for i := range long {
		long[i] = 'a'
	}
	_, err := env.svc.Create(context.Background(), CreateParams{
		UserID:     env.user.ID,
		ImageBytes: makeJPEG(t, 64, 64, 8),
		Prompt:     string(long),
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if env.vision.AnalyzeCalls != 0 || env.increments != 0 {
		t.Error("oversized prompt must not reach the model or quota")
	}
}

func TestCreate_DuplicateShortCircuits(t *testing.T) {
	env := newTestEnv(t)

	imageBytes := makeJPEG(t, 64, 64, 2)
	first, err := env.svc.Create(context.Background(), CreateParams{
		UserID:     env.user.ID,
		ImageBytes: imageBytes,
	})
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	// Повторная загрузка видит запись первой
	env.explanations.FindDuplicateFunc = func(ctx context.Context, userID uuid.UUID, hash string) (*domain.Explanation, error) {
		if hash != first.ImageHash {
			t.Errorf("dedup lookup with wrong hash: %q", hash)
		}
		return first, nil
	}

	second, err := env.svc.Create(context.Background(), CreateParams{
		UserID:     env.user.ID,
		ImageBytes: imageBytes,
	})
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("expected same explanation id, got %s and %s", first.ID, second.ID)
	}
	if env.vision.AnalyzeCalls != 1 {
		t.Errorf("duplicate must not call the model, got %d calls", env.vision.AnalyzeCalls)
	}
	if env.increments != 1 {
		t.Errorf("duplicate must not consume quota, got %d increments", env.increments)
	}
}

func TestCreate_QuotaExceeded(t *testing.T) {
	env := newTestEnv(t)
	env.user.DailyCount = 10 // лимит free

	_, err := env.svc.Create(context.Background(), CreateParams{
		UserID:     env.user.ID,
		ImageBytes: makeJPEG(t, 64, 64, 3),
	})

	if !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	var quotaErr *domain.QuotaError
	if !errors.As(err, &quotaErr) {
		t.Fatal("expected QuotaError with details")
	}
	if quotaErr.Used != 10 || quotaErr.Limit != 10 {
		t.Errorf("unexpected quota details: %d/%d", quotaErr.Used, quotaErr.Limit)
	}
	if env.vision.AnalyzeCalls != 0 {
		t.Error("over-quota request must not call the model")
	}
}

func TestCreate_FailedAnalysisDoesNotConsumeQuota(t *testing.T) {
	env := newTestEnv(t)
	env.vision.AnalyzeFunc = func(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, bool, error) {
		return nil, false, domain.ErrAnalysisFailed
	}

	_, err := env.svc.Create(context.Background(), CreateParams{
		UserID:     env.user.ID,
		ImageBytes: makeJPEG(t, 64, 64, 4),
	})
	if !errors.Is(err, domain.ErrAnalysisFailed) {
		t.Fatalf("expected ErrAnalysisFailed, got %v", err)
	}
	if env.increments != 0 {
		t.Errorf("failed analysis must not consume quota, got %d increments", env.increments)
	}

	// Квота свободна, повторная попытка проходит
	env.vision.AnalyzeFunc = nil
	env.vision.AnalyzeFunc = func(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, bool, error) {
		return &domain.AnalysisResult{Explanation: "ok", Category: domain.CategoryOther, Tags: domain.Tags{}, Confidence: 0.8, Model: "gpt-4o"}, false, nil
	}
	if _, err := env.svc.Create(context.Background(), CreateParams{
		UserID:     env.user.ID,
		ImageBytes: makeJPEG(t, 64, 64, 4),
	}); err != nil {
		t.Fatalf("retry after failed analysis must succeed: %v", err)
	}
	if env.increments != 1 {
		t.Errorf("successful retry must consume quota once, got %d", env.increments)
	}
}

func TestCreate_UploadFailureAborts(t *testing.T) {
	env := newTestEnv(t)
	env.store.UploadFunc = func(ctx context.Context, data []byte, path, contentType string) (string, error) {
		return "", errors.New("connection refused")
	}

	_, err := env.svc.Create(context.Background(), CreateParams{
		UserID:     env.user.ID,
		ImageBytes: makeJPEG(t, 64, 64, 5),
	})
	if !errors.Is(err, domain.ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
	if env.vision.AnalyzeCalls != 0 || env.increments != 0 {
		t.Error("failed upload must not reach the model or quota")
	}
}

// Сценарий: девятое создание проходит, дубликат бесплатен, десятое новое упирается в лимит
func TestCreate_QuotaScenarioAtBoundary(t *testing.T) {
	env := newTestEnv(t)
	env.user.DailyCount = 9

	imageA := makeJPEG(t, 64, 64, 6)
	created, err := env.svc.Create(context.Background(), CreateParams{
		UserID:     env.user.ID,
		ImageBytes: imageA,
	})
	if err != nil {
		t.Fatalf("creation at 9/10 must succeed: %v", err)
	}
	if env.user.DailyCount != 10 {
		t.Fatalf("expected count 10 after creation, got %d", env.user.DailyCount)
	}

	// Те же байты: возврат той же записи, счётчик не растёт
	env.explanations.FindDuplicateFunc = func(ctx context.Context, userID uuid.UUID, hash string) (*domain.Explanation, error) {
		if hash == created.ImageHash {
			return created, nil
		}
		return nil, nil
	}
	dup, err := env.svc.Create(context.Background(), CreateParams{
		UserID:     env.user.ID,
		ImageBytes: imageA,
	})
	if err != nil {
		t.Fatalf("duplicate re-upload must succeed: %v", err)
	}
	if dup.ID != created.ID {
		t.Error("duplicate must return the original record")
	}
	if env.user.DailyCount != 10 {
		t.Errorf("duplicate must not change count, got %d", env.user.DailyCount)
	}

	// Другое изображение: лимит исчерпан
	_, err = env.svc.Create(context.Background(), CreateParams{
		UserID:     env.user.ID,
		ImageBytes: makeJPEG(t, 64, 64, 7),
	})
	if !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded for distinct image at limit, got %v", err)
	}
}
