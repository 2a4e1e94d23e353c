// Package sqlite persists a normalized collection into a SQLite database
// backed by the modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	// Register modernc SQLite driver with database/sql.
	_ "modernc.org/sqlite"

	"aarcnorm/internal/logger"
)

// ErrMissingPath is returned when Config.Path is empty.
var ErrMissingPath = errors.New("sqlite: database path is required")

// Store wraps the database handle.
type Store struct {
	db  *sql.DB
	cfg Config
	log *logger.Logger
}

// buildDSN returns the modernc DSN with foreign keys and busy timeout pragmas.
func buildDSN(cfg Config) string {
	pragmas := []string{
		"_pragma=foreign_keys(ON)",
		fmt.Sprintf("_pragma=busy_timeout(%d)", cfg.busyTimeout().Milliseconds()),
	}

	if cfg.inMemory() {
		return "file::memory:?" + strings.Join(pragmas, "&")
	}

	pragmas = append(pragmas, "_pragma=journal_mode(WAL)")

	return "file:" + cfg.Path + "?" + strings.Join(pragmas, "&")
}

// Open connects to the database described by cfg and checks that foreign
// keys are enforced. Parent directories of a file database are created.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (*Store, error) {
	if cfg.Path == "" {
		return nil, ErrMissingPath
	}

	if log == nil {
		log = logger.Discard()
	}

	if !cfg.inMemory() {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create database folder: %w", err)
		}
	}

	db, err := sql.Open("sqlite", buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}

	// Each in-memory connection is a separate database.
	if cfg.inMemory() {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping database: %w", err)
	}

	var fk int
	if err := db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: read foreign_keys pragma: %w", err)
	}

	if fk != 1 {
		_ = db.Close()
		return nil, errors.New("sqlite: foreign keys are not enforced")
	}

	return &Store{db: db, cfg: cfg, log: log.With("component", "sqlite", "path", cfg.Path)}, nil
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close releases the database handle.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("sqlite: close database: %w", err)
	}

	return nil
}

// Path returns the configured database location.
func (s *Store) Path() string {
	return s.cfg.Path
}
