package explain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Nandan222001/ask-anything/internal/domain"
	"github.com/google/uuid"
)

// CreateParams входные данные запроса на создание объяснения
type CreateParams struct {
	UserID     uuid.UUID
	ImageBytes []byte
	Prompt     string
	Mode       domain.AnalysisMode
	Language   string
}

// Create прогоняет изображение через пайплайн: обработка, загрузка,
// дедупликация, квота, анализ, сохранение, списание квоты.
// Повторная загрузка тех же байт возвращает существующую запись без вызова модели.
func (s *Service) Create(ctx context.Context, params CreateParams) (*domain.Explanation, error) {
	prompt := strings.TrimSpace(params.Prompt)
	if len(prompt) > s.Cfg.MaxPromptLen {
		return nil, &domain.ValidationError{
			Kind:   domain.ErrInvalidInput,
			Reason: fmt.Sprintf("prompt too long: %d > %d characters", len(prompt), s.Cfg.MaxPromptLen),
		}
	}
	mode := params.Mode
	if mode == "" {
		mode = domain.ModeStandard
	}

	// Шаг 1: валидация и нормализация изображения, побочных эффектов нет
	if err := s.Processor.Validate(params.ImageBytes); err != nil {
		return nil, err
	}
	processed, err := s.Processor.Process(params.ImageBytes)
	if err != nil {
		return nil, err
	}

	// Шаг 2: загрузка обоих файлов. Пути детерминированы по хэшу,
	// поэтому повторная загрузка тех же байт перезаписывает те же объекты.
	mainPath := objectPath(params.UserID, processed.MainHash, false)
	thumbPath := objectPath(params.UserID, processed.MainHash, true)

	imageURL, err := s.ObjectStore.Upload(ctx, processed.Main, mainPath, "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUploadFailed, err)
	}
	thumbnailURL, err := s.ObjectStore.Upload(ctx, processed.Thumbnail, thumbPath, "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUploadFailed, err)
	}

	// Шаг 3: дедупликация. Полный short-circuit: без квоты, без модели,
	// без инкремента просмотров.
	existing, err := s.ExplanationRepo.FindDuplicate(ctx, params.UserID, processed.MainHash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.Log.Debug("duplicate image, returning existing explanation",
			"user_id", params.UserID,
			"explanation_id", existing.ID)
		return existing, nil
	}

	// Шаг 4: проверка квоты до дорогого внешнего вызова
	if _, err := s.reserveQuota(ctx, params.UserID); err != nil {
		return nil, err
	}

	// Шаг 5: анализ. Квота ещё не списана — упавший анализ бесплатен.
	result, cached, err := s.VisionService.Analyze(ctx, domain.AnalysisRequest{
		ImageURL:  imageURL,
		ImageHash: processed.MainHash,
		Prompt:    prompt,
		Mode:      mode,
		Language:  params.Language,
	})
	if err != nil {
		return nil, err
	}

	// Шаг 6: сохранение записи
	var promptPtr *string
	if prompt != "" {
		promptPtr = &prompt
	}
	explanation := &domain.Explanation{
		ID:            uuid.New(),
		UserID:        params.UserID,
		ImageURL:      imageURL,
		ThumbnailURL:  thumbnailURL,
		ImageHash:     processed.MainHash,
		Prompt:        promptPtr,
		Explanation:   result.Explanation,
		Model:         result.Model,
		ProcessingMs:  result.ProcessingMs,
		Confidence:    domain.ClampConfidence(result.Confidence),
		Category:      result.Category,
		Tags:          result.Tags,
		Language:      params.Language,
		DeveloperMode: mode == domain.ModeDeveloper,
		CreatedAt:     time.Now(),
	}
	created, err := s.ExplanationRepo.Create(ctx, explanation)
	if err != nil {
		return nil, err
	}
	if created.ID != explanation.ID {
		// Гонка двух одинаковых загрузок: вставку выиграл параллельный запрос,
		// наша квота не тратится
		return created, nil
	}

	// Шаг 7: списание квоты строго после успешного сохранения
	s.commitQuota(ctx, params.UserID)

	// Шаг 8: событие использования, fire-and-forget
	s.emitUsageEvent(created, result.TokensUsed, cached)

	s.Log.Debug("explanation created",
		"explanation_id", created.ID,
		"user_id", params.UserID,
		"category", created.Category,
		"cached", cached)
	return created, nil
}

// emitUsageEvent шлёт событие аналитики в отдельной горутине, ошибки только логируются
func (s *Service) emitUsageEvent(e *domain.Explanation, tokensUsed int, cached bool) {
	if s.Producer == nil {
		return
	}
	event := &domain.UsageEvent{
		UserID:        e.UserID,
		ExplanationID: e.ID,
		Model:         e.Model,
		TokensUsed:    tokensUsed,
		ProcessingMs:  e.ProcessingMs,
		Cached:        cached,
		CreatedAt:     time.Now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Producer.SendUsageEvent(ctx, event); err != nil {
			s.Log.Warn("failed to send usage event", "error", err, "explanation_id", e.ID)
		}
	}()
}

// objectPath путь объекта в хранилище, детерминирован по владельцу и хэшу
func objectPath(userID uuid.UUID, hash string, thumbnail bool) string {
	if thumbnail {
		return fmt.Sprintf("explanations/%s/%s_thumb.jpg", userID, hash)
	}
	return fmt.Sprintf("explanations/%s/%s.jpg", userID, hash)
}
