package explain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Nandan222001/ask-anything/internal/domain"
	"github.com/google/uuid"
)

// SendMessage задаёт уточняющий вопрос по объяснению и возвращает ответ модели.
// Вопрос сохраняется до вызова модели: упавший вызов не теряет реплику пользователя.
func (s *Service) SendMessage(ctx context.Context, explanationID, userID uuid.UUID, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &domain.ValidationError{
			Kind:   domain.ErrInvalidInput,
			Reason: "message text is empty",
		}
	}
	if len(text) > s.Cfg.MaxQuestionLen {
		return nil, &domain.ValidationError{
			Kind:   domain.ErrInvalidInput,
			Reason: fmt.Sprintf("message too long: %d > %d characters", len(text), s.Cfg.MaxQuestionLen),
		}
	}

	// Проверка владения родительским объяснением
	explanation, err := s.ExplanationRepo.GetByID(ctx, explanationID, userID)
	if err != nil {
		return nil, err
	}

	userMessage := &domain.Message{
		ID:            uuid.New(),
		ExplanationID: explanationID,
		UserID:        userID,
		Role:          domain.RoleUser,
		Content:       text,
		CreatedAt:     time.Now(),
	}
	if err := s.MessageRepo.Create(ctx, userMessage); err != nil {
		return nil, err
	}

	// Контекст модели: последние N реплик, включая только что сохранённый вопрос
	recent, err := s.MessageRepo.GetLastN(ctx, explanationID, s.Cfg.ChatContextTurns)
	if err != nil {
		return nil, err
	}
	history := make([]domain.ChatTurn, 0, len(recent))
	for _, m := range recent {
		// Текущий вопрос уходит отдельной последней репликой
		if m.ID == userMessage.ID {
			continue
		}
		history = append(history, domain.ChatTurn{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	mode := domain.ModeStandard
	if explanation.DeveloperMode {
		mode = domain.ModeDeveloper
	}
	result, err := s.VisionService.Chat(ctx, domain.ChatContext{
		Explanation: explanation.Explanation,
		Category:    explanation.Category,
		Mode:        mode,
	}, history, text)
	if err != nil {
		return nil, err
	}

	assistantMessage := &domain.Message{
		ID:            uuid.New(),
		ExplanationID: explanationID,
		UserID:        userID,
		Role:          domain.RoleAssistant,
		Content:       result.Response,
		TokensUsed:    result.TokensUsed,
		CreatedAt:     time.Now(),
	}
	if err := s.MessageRepo.Create(ctx, assistantMessage); err != nil {
		return nil, err
	}

	s.Log.Debug("chat turn completed",
		"explanation_id", explanationID,
		"user_id", userID,
		"tokens_used", result.TokensUsed)
	return assistantMessage, nil
}

// GetHistory возвращает всю переписку по объяснению от старых к новым.
// Без окна контекста: ограничение N касается только того, что уходит модели.
func (s *Service) GetHistory(ctx context.Context, explanationID, userID uuid.UUID) ([]*domain.Message, error) {
	// Чужие и удалённые объяснения отдают not found, не пустую историю
	if _, err := s.ExplanationRepo.GetByID(ctx, explanationID, userID); err != nil {
		return nil, err
	}
	return s.MessageRepo.GetHistory(ctx, explanationID)
}
