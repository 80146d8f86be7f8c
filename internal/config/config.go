// README: Config loader; environment variables parsed with caarlos0/env.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type HTTPConfig struct {
	Addr            string        `env:"ROAMLY_HTTP_ADDR" envDefault:":8080"`
	AllowedOrigins  []string      `env:"ROAMLY_ALLOWED_ORIGINS" envSeparator:","`
	ShutdownTimeout time.Duration `env:"ROAMLY_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type AIConfig struct {
	GeminiKey string `env:"GEMINI_API_KEY,required,notEmpty"`
	Model     string `env:"ROAMLY_GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	// RequestTimeout bounds a single itinerary generation or chat turn.
	RequestTimeout time.Duration `env:"ROAMLY_AI_TIMEOUT" envDefault:"60s"`
	SessionIdleTTL time.Duration `env:"ROAMLY_CHAT_IDLE_TTL" envDefault:"30m"`
	MonthlyQuota   int           `env:"ROAMLY_MONTHLY_QUOTA" envDefault:"100"`
}

type MapsConfig struct {
	APIKey   string `env:"GOOGLE_MAPS_API_KEY"`
	Language string `env:"ROAMLY_MAPS_LANGUAGE" envDefault:"en"`
}

type DBConfig struct {
	DSN      string `env:"ROAMLY_DB_DSN"`
	MaxConns int32  `env:"ROAMLY_DB_MAX_CONNS" envDefault:"10"`
}

type RedisConfig struct {
	Addr         string        `env:"ROAMLY_REDIS_ADDR"`
	Password     string        `env:"ROAMLY_REDIS_PASSWORD"`
	DB           int           `env:"ROAMLY_REDIS_DB" envDefault:"0"`
	ItineraryTTL time.Duration `env:"ROAMLY_ITINERARY_TTL" envDefault:"168h"`
}

type FirebaseConfig struct {
	ProjectID       string `env:"ROAMLY_FIREBASE_PROJECT_ID"`
	CredentialsFile string `env:"ROAMLY_FIREBASE_CREDENTIALS"`
}

type Config struct {
	Env      string `env:"ROAMLY_ENV" envDefault:"development"`
	LogLevel string `env:"ROAMLY_LOG_LEVEL" envDefault:"info"`

	HTTP     HTTPConfig
	AI       AIConfig
	Maps     MapsConfig
	DB       DBConfig
	Redis    RedisConfig
	Firebase FirebaseConfig
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.AI.RequestTimeout <= 0 {
		return Config{}, fmt.Errorf("ROAMLY_AI_TIMEOUT must be positive")
	}
	return cfg, nil
}

func (c Config) IsProduction() bool { return c.Env == "production" }
