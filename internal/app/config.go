package app

import (
	server "github.com/Nandan222001/ask-anything/internal/adapters/primary/http"
	kafkaAdapter "github.com/Nandan222001/ask-anything/internal/adapters/secondary/kafka"
	"github.com/Nandan222001/ask-anything/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/Nandan222001/ask-anything/internal/adapters/secondary/storage/redis"
	"github.com/Nandan222001/ask-anything/internal/adapters/secondary/storage/s3"
	"github.com/Nandan222001/ask-anything/internal/adapters/secondary/visionapi"
	"github.com/Nandan222001/ask-anything/internal/domain"
	"github.com/Nandan222001/ask-anything/internal/pkg/imageproc"
	"github.com/Nandan222001/ask-anything/internal/pkg/logger"
	visionService "github.com/Nandan222001/ask-anything/internal/services/vision"
	"github.com/Nandan222001/ask-anything/internal/usecases/explain"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Postgres  *pg.Config           `envconfig:"POSTGRES"`
	Redis     *redisAdapter.Config `envconfig:"REDIS"`
	S3        *s3.Config           `envconfig:"S3"`
	Kafka     *kafkaAdapter.Config `envconfig:"KAFKA"`
	VisionAPI *visionapi.Config    `envconfig:"VISION_API"`
	Analyzer  visionService.Config `envconfig:"ANALYZER"`
	Image     imageproc.Config     `envconfig:"IMAGE"`
	Pipeline  explain.Config       `envconfig:"PIPELINE"`
	Limits    domain.TierLimits    `envconfig:"LIMITS"`
	Log       *logger.Config       `envconfig:"LOG"`
	Server    *server.Config       `envconfig:"APISERVER"`
}

func NewEnvConfig(envPrefix string) (*Config, error) {
	cfg := &Config{}

	_ = godotenv.Load("deployments/local/.env")

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
