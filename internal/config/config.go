package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dfryer1193/wizardry/shared/db/sqlite"
	"github.com/rs/zerolog"
)

type Config struct {
	Addr            string        `env:"WIZARDRY_ADDR" envDefault:":3000"`
	FilesDir        string        `env:"WIZARDRY_FILES_DIR" envDefault:"./files"`
	DefaultExt      string        `env:"WIZARDRY_DEFAULT_EXT" envDefault:"png"`
	Naming          string        `env:"WIZARDRY_NAMING" envDefault:"token"`
	MaxUploadBytes  int64         `env:"WIZARDRY_MAX_UPLOAD_BYTES" envDefault:"8388608"`
	ShutdownTimeout time.Duration `env:"WIZARDRY_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	SweepGrace      time.Duration `env:"WIZARDRY_SWEEP_GRACE" envDefault:"10m"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty       bool          `env:"LOG_PRETTY" envDefault:"false"`

	SQLite sqlite.SQLiteConfig
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("WIZARDRY_MAX_UPLOAD_BYTES must be positive, got %d", cfg.MaxUploadBytes)
	}
	return cfg, nil
}

// Level returns the configured zerolog level, falling back to info.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
