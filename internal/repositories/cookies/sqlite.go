package cookies

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	// registers the "sqlite" driver
	_ "modernc.org/sqlite"

	"github.com/KirkDiggler/initiative-tracker/internal/errors"
	"github.com/KirkDiggler/initiative-tracker/internal/pkg/clock"
)

type sqliteRepository struct {
	db    *sql.DB
	clock clock.Clock
	ttl   time.Duration
}

// SQLiteConfig contains configuration for the SQLite cookie repository
type SQLiteConfig struct {
	// Path of the database file, or ":memory:"
	Path  string
	Clock clock.Clock
	// TTL defaults to DefaultTTL
	TTL time.Duration
}

// Validate validates the SQLiteConfig
func (cfg *SQLiteConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("path", cfg.Path, vb)
	if cfg.TTL < 0 {
		vb.Field("ttl", "cannot be negative")
	}
	return vb.Build()
}

// SQLiteRepository is a Repository that owns a database handle
type SQLiteRepository interface {
	Repository
	Close() error
}

// NewSQLite opens (creating when needed) a SQLite-backed cookie repository.
// Expired rows are ignored on read and pruned on save.
func NewSQLite(cfg *SQLiteConfig) (SQLiteRepository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to create database directory")
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to open database")
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to initialise database")
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}

	return &sqliteRepository{db: db, clock: c, ttl: ttl}, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS cookies (
			session_id TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *sqliteRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.SessionID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}

	var (
		value     string
		expiresAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM cookies WHERE session_id = ? AND expires_at > ?`,
		input.SessionID, r.clock.Now().UnixNano(),
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFoundf("no cookie stored for session %s", input.SessionID)
	}
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to read cookie")
	}

	return &GetOutput{Value: value, ExpiresAt: time.Unix(0, expiresAt)}, nil
}

func (r *sqliteRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if input.SessionID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}

	now := r.clock.Now()
	expiresAt := now.Add(r.ttl)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM cookies WHERE expires_at <= ?`, now.UnixNano(),
	); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to prune expired cookies")
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO cookies (session_id, value, updated_at, expires_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at,
			expires_at = excluded.expires_at`,
		input.SessionID, input.Value, now.UnixNano(), expiresAt.UnixNano(),
	); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to save cookie")
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to commit cookie")
	}

	slog.Debug("Saved cookie",
		"session_id", input.SessionID,
		"cookie_bytes", len(input.Value),
		"store", "sqlite")

	return &SaveOutput{ExpiresAt: expiresAt}, nil
}

func (r *sqliteRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.SessionID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM cookies WHERE session_id = ?`, input.SessionID,
	); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to delete cookie")
	}
	return &DeleteOutput{}, nil
}

func (r *sqliteRepository) Close() error {
	return r.db.Close()
}
