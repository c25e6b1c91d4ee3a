package explain

import (
	"log/slog"

	"github.com/Nandan222001/ask-anything/internal/domain"
	"github.com/Nandan222001/ask-anything/internal/pkg/imageproc"
	"github.com/Nandan222001/ask-anything/internal/ports/events"
	"github.com/Nandan222001/ask-anything/internal/ports/repository"
	"github.com/Nandan222001/ask-anything/internal/ports/service"
	"github.com/Nandan222001/ask-anything/internal/ports/storage"
)

// Config параметры пайплайна объяснений
type Config struct {
	// ChatContextTurns сколько последних реплик уходит модели как контекст чата
	ChatContextTurns int `envconfig:"CHAT_CONTEXT_TURNS" default:"10"`
	// MaxQuestionLen максимальная длина вопроса в чате
	MaxQuestionLen int `envconfig:"MAX_QUESTION_LEN" default:"2000"`
	// MaxPromptLen максимальная длина пользовательского промпта при создании
	MaxPromptLen int `envconfig:"MAX_PROMPT_LEN" default:"2000"`
}

// Service бизнес-логика пайплайна "фото → объяснение"
type Service struct {
	ExplanationRepo repository.IExplanationRepo
	MessageRepo     repository.IMessageRepo
	UserRepo        repository.IUserRepo
	CleanupRepo     repository.ICleanupRepo
	VisionService   service.IVisionService
	ObjectStore     storage.IObjectStore
	Producer        events.IProducer
	Processor       *imageproc.Processor
	Limits          domain.TierLimits
	Cfg             Config
	Log             *slog.Logger
}

// New создаёт сервис пайплайна объяснений
func New(
	explanationRepo repository.IExplanationRepo,
	messageRepo repository.IMessageRepo,
	userRepo repository.IUserRepo,
	cleanupRepo repository.ICleanupRepo,
	visionService service.IVisionService,
	objectStore storage.IObjectStore,
	producer events.IProducer,
	processor *imageproc.Processor,
	limits domain.TierLimits,
	cfg Config,
	log *slog.Logger,
) *Service {
	return &Service{
		ExplanationRepo: explanationRepo,
		MessageRepo:     messageRepo,
		UserRepo:        userRepo,
		CleanupRepo:     cleanupRepo,
		VisionService:   visionService,
		ObjectStore:     objectStore,
		Producer:        producer,
		Processor:       processor,
		Limits:          limits,
		Cfg:             cfg,
		Log:             log,
	}
}
