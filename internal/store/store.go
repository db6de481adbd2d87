// Package store persists a todo.txt list in SQLite, one row per task line.
// Lines keep their identity across edits, so a half-typed id prefix is enough
// to address a task from the command line.
package store

import (
	"database/sql"
	"embed"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var schemaFS embed.FS

// Store is a handle on one todo.txt database. Open it once and share it;
// the pool underneath is a single connection.
type Store struct {
	db *sql.DB
}

// Open creates the database file if needed, applies pending schema
// migrations and returns a ready store.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serializes writers; a second connection would only turn
	// lock waits into busy errors.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// dsn builds the connection string. WAL keeps readers unblocked during
// writes and the busy timeout absorbs the occasional straggler.
func dsn(path string) string {
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON", path)
}

func migrate(db *sql.DB) error {
	// goose logs to stderr by default, which tears up the TUI.
	goose.SetLogger(log.New(io.Discard, "", 0))
	goose.SetBaseFS(schemaFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.Up(db, "migrations")
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// transaction runs fn atomically, rolling back on error.
func (s *Store) transaction(fn func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
