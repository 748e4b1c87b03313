package httpapi

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the HTTP server settings, read from the environment.
type Config struct {
	Addr            string        `env:"FUNNEL_HTTP_ADDR" envDefault:"127.0.0.1:8080"`
	ReadTimeout     time.Duration `env:"FUNNEL_HTTP_READ_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"FUNNEL_HTTP_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// LoadConfig parses Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
