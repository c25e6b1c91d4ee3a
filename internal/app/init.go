package app

import (
	"fmt"
	"net/http"

	server "github.com/Nandan222001/ask-anything/internal/adapters/primary/http"
	explanationsController "github.com/Nandan222001/ask-anything/internal/adapters/primary/http/controllers/explanations"
	healthcheckController "github.com/Nandan222001/ask-anything/internal/adapters/primary/http/controllers/healthcheck"
	uploadsController "github.com/Nandan222001/ask-anything/internal/adapters/primary/http/controllers/uploads"
	kafkaAdapter "github.com/Nandan222001/ask-anything/internal/adapters/secondary/kafka"
	"github.com/Nandan222001/ask-anything/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/Nandan222001/ask-anything/internal/adapters/secondary/storage/redis"
	"github.com/Nandan222001/ask-anything/internal/adapters/secondary/storage/s3"
	"github.com/Nandan222001/ask-anything/internal/adapters/secondary/visionapi"
	"github.com/Nandan222001/ask-anything/internal/pkg/imageproc"
	"github.com/Nandan222001/ask-anything/internal/ports/cache"
	"github.com/Nandan222001/ask-anything/internal/ports/events"
	cleanupRepo "github.com/Nandan222001/ask-anything/internal/repository/cleanup"
	explanationRepo "github.com/Nandan222001/ask-anything/internal/repository/explanation"
	messageRepo "github.com/Nandan222001/ask-anything/internal/repository/message"
	userRepo "github.com/Nandan222001/ask-anything/internal/repository/user"
	jobsService "github.com/Nandan222001/ask-anything/internal/services/jobs"
	visionService "github.com/Nandan222001/ask-anything/internal/services/vision"
	"github.com/Nandan222001/ask-anything/internal/usecases/explain"
	"github.com/jmoiron/sqlx"
)

// Dependencies собранный граф зависимостей приложения
type Dependencies struct {
	DB           *sqlx.DB
	Cache        cache.Cache
	Producer     events.IProducer
	HTTPServer   *http.Server
	JobScheduler *jobsService.Scheduler
}

// initDependencies поднимает подключения и собирает слои приложения
func (a *App) initDependencies() (*Dependencies, error) {
	db, err := a.initPostgres()
	if err != nil {
		return nil, fmt.Errorf("failed to init postgres: %w", err)
	}
	persistenceLayer := pg.NewDB(db)

	// Redis кэш результатов анализа: без него сервис работает, просто без кэша
	var analysisCache cache.Cache
	redisClient, err := a.Cfg.Redis.NewConnection()
	if err != nil {
		a.Log.Warn("redis unavailable, vision cache disabled", "error", err)
	} else {
		analysisCache = redisAdapter.NewClient(redisClient)
		a.Log.Info("redis connected successfully")
	}

	minioClient, err := a.Cfg.S3.NewClient()
	if err != nil {
		return nil, fmt.Errorf("failed to init object storage: %w", err)
	}
	objectStore := s3.NewClient(minioClient, a.Cfg.S3.Bucket, a.Cfg.S3.BaseURL(), a.Log)
	a.Log.Info("object storage connected successfully")

	// Kafka опциональна: без неё события использования не отправляются
	var producer events.IProducer
	if a.Cfg.Kafka.Enabled {
		kafkaProducer, err := kafkaAdapter.NewProducer(a.Cfg.Kafka, a.Log)
		if err != nil {
			return nil, fmt.Errorf("failed to init kafka producer: %w", err)
		}
		producer = kafkaProducer
		a.Log.Info("kafka producer connected successfully")
	}

	explanations := explanationRepo.New(persistenceLayer, a.Log)
	messages := messageRepo.New(persistenceLayer, a.Log)
	users := userRepo.New(persistenceLayer, a.Log)
	cleanups := cleanupRepo.New(persistenceLayer, a.Log)

	visionProvider := visionapi.NewClient(a.Cfg.VisionAPI, a.Log)
	analyzer := visionService.New(visionProvider, analysisCache, a.Cfg.Analyzer, a.Log)
	processor := imageproc.New(a.Cfg.Image)

	explainService := explain.New(
		explanations,
		messages,
		users,
		cleanups,
		analyzer,
		objectStore,
		producer,
		processor,
		a.Cfg.Limits,
		a.Cfg.Pipeline,
		a.Log,
	)

	httpServer := server.NewHTTPServer(a.Cfg.Server, a.Log,
		healthcheckController.New(db, a.Log),
		explanationsController.New(explainService, a.Log),
		uploadsController.New(objectStore, a.Log),
	)

	scheduler := jobsService.NewScheduler(a.Log)
	scheduler.Register(jobsService.NewStorageCleanup(cleanups, objectStore, a.Log))
	if producer != nil {
		scheduler.Register(jobsService.NewUsageAggregation(explanations, producer, a.Log))
	}

	return &Dependencies{
		DB:           db,
		Cache:        analysisCache,
		Producer:     producer,
		HTTPServer:   httpServer,
		JobScheduler: scheduler,
	}, nil
}
