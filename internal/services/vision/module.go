package vision

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/Nandan222001/ask-anything/internal/domain"
	"github.com/Nandan222001/ask-anything/internal/ports/cache"
	"github.com/Nandan222001/ask-anything/internal/ports/service"
	"github.com/Nandan222001/ask-anything/internal/ports/vision"
)

// degradedConfidence потолок уверенности для ответа, полученного после
// повторного вызова с пониженной детализацией
const degradedConfidence = 0.5

// degradedTokenDivisor во сколько раз режется бюджет токенов при ретрае
const degradedTokenDivisor = 2

type Config struct {
	CacheTTLHours int `envconfig:"CACHE_TTL_HOURS" default:"168"`
	MaxTokens     int `envconfig:"MAX_TOKENS" default:"800"`
}

// Service реализует IVisionService поверх vision-провайдера с кэшем в Redis
type Service struct {
	provider vision.IProvider
	cache    cache.Cache
	cfg      Config
	Log      *slog.Logger
}

// New создаёт сервис анализа изображений. Кэш опционален (nil отключает кэширование).
func New(provider vision.IProvider, c cache.Cache, cfg Config, log *slog.Logger) service.IVisionService {
	return &Service{
		provider: provider,
		cache:    c,
		cfg:      cfg,
		Log:      log,
	}
}

// Analyze возвращает структурированный результат анализа изображения.
// Второе возвращаемое значение — признак попадания в кэш.
func (s *Service) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, bool, error) {
	key := analysisCacheKey(req)

	if cached := s.readCache(ctx, key); cached != nil {
		s.Log.Debug("vision analysis cache hit", "image_hash", req.ImageHash)
		// Время обработки отражает этот запрос, а не исходный вызов модели
		cached.ProcessingMs = 0
		return cached, true, nil
	}

	start := time.Now()

	userPrompt := req.Prompt
	if userPrompt == "" {
		userPrompt = defaultUserPrompt
	}
	params := vision.AnalyzeParams{
		ImageURL:     req.ImageURL,
		SystemPrompt: buildAnalysisSystemPrompt(req.Mode, req.Language),
		UserPrompt:   userPrompt,
		Detail:       vision.DetailHigh,
		MaxTokens:    s.cfg.MaxTokens,
	}

	degraded := false
	reply, err := s.provider.Analyze(ctx, params)
	if err != nil {
		var badReq *vision.BadRequestError
		if !errors.As(err, &badReq) {
			return nil, false, fmt.Errorf("%w: %s", domain.ErrAnalysisFailed, err)
		}
		// Изображение не прошло у провайдера: одна повторная попытка
		// с пониженной детализацией и урезанным бюджетом токенов, дальше сдаёмся
		s.Log.Warn("vision provider rejected request, retrying with low detail",
			"error", err,
			"image_hash", req.ImageHash)
		params.Detail = vision.DetailLow
		params.MaxTokens = s.cfg.MaxTokens / degradedTokenDivisor
		degraded = true
		reply, err = s.provider.Analyze(ctx, params)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %s", domain.ErrAnalysisFailed, err)
		}
	}

	parsed := parseAnalysis(reply.Text)
	if degraded && parsed.Confidence > degradedConfidence {
		parsed.Confidence = degradedConfidence
	}

	result := &domain.AnalysisResult{
		Explanation:  parsed.Explanation,
		Category:     domain.Category(parsed.Category),
		Tags:         parsed.Tags,
		Confidence:   parsed.Confidence,
		Model:        reply.Model,
		TokensUsed:   reply.TokensUsed,
		ProcessingMs: time.Since(start).Milliseconds(),
	}

	s.writeCache(ctx, key, result)
	return result, false, nil
}

// Chat отвечает на уточняющий вопрос в контексте готового объяснения
func (s *Service) Chat(ctx context.Context, chatCtx domain.ChatContext, history []domain.ChatTurn, question string) (*domain.ChatResult, error) {
	messages := make([]vision.ChatMessage, 0, len(history)+2)
	messages = append(messages, vision.ChatMessage{
		Role:    "system",
		Content: buildChatSystemPrompt(chatCtx),
	})
	for _, turn := range history {
		messages = append(messages, vision.ChatMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}
	messages = append(messages, vision.ChatMessage{
		Role:    string(domain.RoleUser),
		Content: question,
	})

	reply, err := s.provider.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrAnalysisFailed, err)
	}
	if reply.Text == "" {
		return nil, fmt.Errorf("%w: provider returned empty reply", domain.ErrAnalysisFailed)
	}

	return &domain.ChatResult{
		Response:   reply.Text,
		TokensUsed: reply.TokensUsed,
		Model:      reply.Model,
	}, nil
}

// readCache достаёт результат из кэша; любая ошибка кэша не фатальна
func (s *Service) readCache(ctx context.Context, key string) *domain.AnalysisResult {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil || raw == "" {
		return nil
	}
	var result domain.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		s.Log.Warn("failed to decode cached analysis, ignoring", "error", err, "key", key)
		return nil
	}
	return &result
}

func (s *Service) writeCache(ctx context.Context, key string, result *domain.AnalysisResult) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		s.Log.Warn("failed to encode analysis for cache", "error", err)
		return
	}
	ttl := time.Duration(s.cfg.CacheTTLHours) * time.Hour
	if err := s.cache.Set(ctx, key, string(raw), ttl); err != nil {
		s.Log.Warn("failed to cache analysis", "error", err, "key", key)
	}
}

// analysisCacheKey ключ кэша: хэш изображения + всё, что влияет на ответ модели
func analysisCacheKey(req domain.AnalysisRequest) string {
	sum := sha256.Sum256([]byte(req.ImageHash + "|" + req.Prompt + "|" + string(req.Mode) + "|" + req.Language))
	return "vision:analysis:" + hex.EncodeToString(sum[:])
}
