// Package config reads tracker settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/KirkDiggler/initiative-tracker/internal/errors"
)

// Store backends
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// EnvPrefix is prepended to every variable name
const EnvPrefix = "TRACKER_"

// Config holds the tracker settings. Flags may override fields after Load.
type Config struct {
	Session    string        `env:"SESSION" envDefault:"default"`
	Store      string        `env:"STORE" envDefault:"sqlite"`
	RedisAddr  string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	SQLitePath string        `env:"SQLITE_PATH" envDefault:"tracker.db"`
	CookieTTL  time.Duration `env:"COOKIE_TTL" envDefault:"8760h"`
	IconBase   string        `env:"ICON_BASE" envDefault:"/images/"`
	LogLevel   string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads .env files (missing files are skipped) and then the
// environment. Variables already set in the environment win over .env.
// With no files given, ./.env is tried.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to read "+f)
		}
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse environment")
	}
	return cfg, nil
}

// Validate checks the settings
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	errors.ValidateRequired("session", c.Session, vb)
	errors.ValidateEnum("store", c.Store, []string{StoreMemory, StoreRedis, StoreSQLite}, vb)
	if c.Store == StoreRedis {
		errors.ValidateRequired("redis_addr", c.RedisAddr, vb)
	}
	if c.Store == StoreSQLite {
		errors.ValidateRequired("sqlite_path", c.SQLitePath, vb)
	}
	errors.ValidatePositive("cookie_ttl", c.CookieTTL, vb)
	if _, err := ParseLevel(c.LogLevel); err != nil {
		vb.Fieldf("log_level", "unknown level %q", c.LogLevel)
	}

	return vb.Build()
}

// ParseLevel maps a level name to its slog level
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, errors.InvalidArgumentf("unknown log level %q", name)
	}
	return level, nil
}
