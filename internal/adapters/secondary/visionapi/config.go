package visionapi

type Config struct {
	BaseURL       string `envconfig:"BASE_URL" default:"https://api.openai.com"`
	ApiVersion    string `envconfig:"VERSION" default:"v1"`
	ApiKey        string `envconfig:"API_KEY"`
	Model         string `envconfig:"MODEL" default:"gpt-4o"`
	FallbackModel string `envconfig:"FALLBACK_MODEL" default:"gpt-4o-mini"`
	TimeoutSec    int    `envconfig:"TIMEOUT" default:"30"`
	SkipSSL       string `envconfig:"SKIP_SSL"` // Railway требует строки вместо bool
}

func (c *Config) ShouldSkipSSL() bool {
	return c.SkipSSL == "true" || c.SkipSSL == "1" || c.SkipSSL == "True"
}
