package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/initiative-tracker/internal/catalog"
	"github.com/KirkDiggler/initiative-tracker/internal/config"
	"github.com/KirkDiggler/initiative-tracker/internal/cookie"
	"github.com/KirkDiggler/initiative-tracker/internal/errors"
	"github.com/KirkDiggler/initiative-tracker/internal/orchestrators/session"
	redisclient "github.com/KirkDiggler/initiative-tracker/internal/redis"
	"github.com/KirkDiggler/initiative-tracker/internal/repositories/cookies"
	"github.com/KirkDiggler/initiative-tracker/internal/tracker"
)

// app is the wired tracker for one CLI invocation
type app struct {
	cfg      *config.Config
	catalog  *catalog.Catalog
	engine   *tracker.Engine
	sessions session.Service
	out      io.Writer
	closers  []func() error
}

func setupLogging(cfg *config.Config) {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func newRepository(cfg *config.Config) (cookies.Repository, func() error, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return cookies.NewInMemory(&cookies.InMemoryConfig{TTL: cfg.CookieTTL}), nil, nil

	case config.StoreRedis:
		client, err := redisclient.NewClient(cfg.RedisAddr, &redisclient.Options{
			DialTimeout: 2 * time.Second,
			MaxRetries:  1,
		})
		if err != nil {
			return nil, nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to create redis client")
		}
		repo, err := cookies.NewRedis(&cookies.RedisConfig{Client: client, TTL: cfg.CookieTTL})
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return repo, client.Close, nil

	case config.StoreSQLite:
		repo, err := cookies.NewSQLite(&cookies.SQLiteConfig{Path: cfg.SQLitePath, TTL: cfg.CookieTTL})
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil

	default:
		return nil, nil, errors.InvalidArgumentf("unknown store %q", cfg.Store)
	}
}

func newApp(cfg *config.Config, repo cookies.Repository, out io.Writer) (*app, error) {
	cat := catalog.Default()

	engine, err := tracker.NewEngine(&tracker.Config{Catalog: cat})
	if err != nil {
		return nil, err
	}
	codec, err := cookie.NewCodec(&cookie.Config{Engine: engine})
	if err != nil {
		return nil, err
	}
	sessions, err := session.NewOrchestrator(&session.Config{
		Engine:     engine,
		Codec:      codec,
		Repository: repo,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		catalog:  cat,
		engine:   engine,
		sessions: sessions,
		out:      out,
	}, nil
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			slog.Warn("Failed to close store", "error", err)
		}
	}
}

// open loads the configured session, reporting a discarded cookie
func (a *app) open(ctx context.Context) (tracker.State, error) {
	out, err := a.sessions.Open(ctx, &session.OpenInput{SessionID: a.cfg.Session})
	if err != nil {
		return tracker.State{}, err
	}
	if out.Discarded {
		a.printf("Stored roster could not be read and was discarded.\n")
	}
	return out.State, nil
}

// withApp wires the tracker, opens the session and runs fn against it
func withApp(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		setupLogging(cfg)

		repo, closeRepo, err := newRepository(cfg)
		if err != nil {
			return err
		}
		a, err := newApp(cfg, repo, cmd.OutOrStdout())
		if err != nil {
			if closeRepo != nil {
				_ = closeRepo()
			}
			return err
		}
		if closeRepo != nil {
			a.closers = append(a.closers, closeRepo)
		}
		defer a.close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if _, err := a.open(ctx); err != nil {
			return err
		}
		return fn(ctx, a, args)
	}
}
