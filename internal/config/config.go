package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`

	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	AWSRegion          string `env:"AWS_REGION,required,notEmpty"`
	LambdaFunctionName string `env:"LAMBDA_FUNCTION_NAME" envDefault:"coffee_chatbot_docker_function2"`
	ContextWindowSize  int    `env:"CONTEXT_WINDOW_SIZE" envDefault:"3"`

	SessionSecret     string `env:"SESSION_SECRET,required,notEmpty"`
	SessionTTLMinutes int    `env:"SESSION_TTL_MINUTES" envDefault:"1440"`
	CookieSecure      bool   `env:"COOKIE_SECURE" envDefault:"false"`

	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
