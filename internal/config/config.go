package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr      string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath        string     `env:"DB_PATH" envDefault:"data/campushunt.db"`
	QRSecret      string     `env:"QR_SECRET" envDefault:"dev-only-qr-secret"`
	AdminUsername string     `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string     `env:"ADMIN_PASSWORD" envDefault:"changeme-admin"`
	LogLevel      slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir        string     `env:"SPA_DIR" envDefault:"../web/dist"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
