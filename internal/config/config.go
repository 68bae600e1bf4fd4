package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds server configuration loaded from the environment
type Config struct {
	// Host and Port for the HTTP listener
	Host string `env:"SCORESRV_HOST" envDefault:""`
	Port int    `env:"SCORESRV_PORT" envDefault:"8080"`

	// StorageType selects the storage backend (memory, sqlite or redis)
	StorageType string `env:"SCORESRV_STORAGE" envDefault:"memory"`
	// SQLitePath is the database file for the sqlite backend
	SQLitePath string `env:"SCORESRV_SQLITE_PATH" envDefault:"scoreserver.db"`
	// RedisURL is the connection URL for the redis backend
	RedisURL string `env:"SCORESRV_REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// HashConcurrency bounds concurrent password hash computations;
	// 0 means one per CPU
	HashConcurrency int `env:"SCORESRV_HASH_CONCURRENCY" envDefault:"0"`

	// LogLevel is the minimum slog level (debug, info, warn, error)
	LogLevel string `env:"SCORESRV_LOG_LEVEL" envDefault:"info"`
}

// Load parses configuration from the environment
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
