package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"local"`
	Port   string `env:"PORT" envDefault:"8080"`

	// BackendURL is the base URL of the document-chat API.
	BackendURL string `env:"BACKEND_URL" envDefault:"http://localhost:8000"`

	// Identity provider (GoTrue-compatible).
	AuthURL     string `env:"AUTH_URL"`
	AuthAnonKey string `env:"AUTH_ANON_KEY"`

	// JWTSecret verifies access-token signatures. When empty, claims are
	// read without verification, matching the backend's development mode.
	JWTSecret string `env:"JWT_SECRET"`

	// SessionSecret is the master secret the cookie keys are derived from.
	SessionSecret string `env:"SESSION_SECRET"`

	PollInterval  time.Duration `env:"POLL_INTERVAL" envDefault:"2s"`
	MaxUploadSize int64         `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"`

	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"60s"`

	// WebDir holds the static page assets served at the site routes.
	WebDir string `env:"WEB_DIR" envDefault:"./web"`
}

// LoadConfig loads the environment variables and returns the config.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.AuthURL == "" {
		return nil, fmt.Errorf("AUTH_URL not set")
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET not set")
	}
	return cfg, nil
}
