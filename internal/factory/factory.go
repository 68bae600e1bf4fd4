package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/replayhq/scoreserver/internal/dependencies/clock"
	"github.com/replayhq/scoreserver/internal/services/account"
	"github.com/replayhq/scoreserver/internal/services/game"
	"github.com/replayhq/scoreserver/internal/services/leaderboard"
	"github.com/replayhq/scoreserver/internal/services/password"
	"github.com/replayhq/scoreserver/internal/services/score"
	"github.com/replayhq/scoreserver/internal/storage"
	"github.com/replayhq/scoreserver/internal/storage/memory"
	redisstorage "github.com/replayhq/scoreserver/internal/storage/redis"
	"github.com/replayhq/scoreserver/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeSQLite = "sqlite"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	Storage storage.Storage
	Clock   clock.Clock
	Hasher  *password.Hasher

	AccountService     *account.Service
	GameService        *game.Service
	ScoreService       *score.Service
	LeaderboardService *leaderboard.Service
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "sqlite" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// HasherConfig holds password hashing settings (optional)
	// If zero value, defaults to password.DefaultConfig()
	HasherConfig password.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = sqliteStore
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'sqlite' or 'redis'")
	}

	hasherCfg := cfg.HasherConfig
	if hasherCfg.Params == (password.Params{}) {
		hasherCfg = password.DefaultConfig()
	}

	return newWithDependencies(store, clock.New(), password.New(hasherCfg), logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, hasher *password.Hasher, logger *slog.Logger) *App {
	return &App{
		Storage: store,
		Clock:   clk,
		Hasher:  hasher,

		AccountService:     account.New(store, hasher, clk, logger),
		GameService:        game.New(store, clk),
		ScoreService:       score.New(store, clk, logger),
		LeaderboardService: leaderboard.New(store),
	}
}

// Close releases storage resources for backends that hold connections
func (a *App) Close() error {
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
