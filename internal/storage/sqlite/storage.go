// Package sqlite implements the storage interface on an embedded SQLite
// database. Each registered game gets its own ledger table, provisioned at
// registration time, with the three per-game query plans (fetch-by-id,
// digest lookup, leaderboard ranking) prepared once and cached.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/replayhq/scoreserver/internal/storage"
)

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db *sql.DB

	// mu guards the statement cache. Game registration is serialized
	// behind the write lock, so concurrent registrations cannot leave
	// the cache inconsistent with the catalog.
	mu    sync.RWMutex
	stmts map[string]*gameStmts
}

// gameStmts holds the cached query plans for one game's ledger
type gameStmts struct {
	insert      *sql.Stmt
	fetchByID   *sql.Stmt
	byDigest    *sql.Stmt
	leaderboard *sql.Stmt
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// New opens (or creates) the database at path and loads the per-game
// statement cache from the games catalog. ":memory:" gives a throwaway
// in-memory database.
func New(path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// A single shared connection: prepared statements and the in-memory
	// database are bound to one connection, and SQLite serializes writes
	// anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA foreign_keys = ON`,
		`PRAGMA busy_timeout = 5000`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}

	s := &Storage{
		db:    db,
		stmts: make(map[string]*gameStmts),
	}

	if err := s.bootstrap(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the cached statements and the database handle
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.stmts {
		g.close()
	}
	s.stmts = make(map[string]*gameStmts)
	return s.db.Close()
}

// bootstrap creates the base schema on first run, then re-derives the
// statement cache by walking the games catalog.
func (s *Storage) bootstrap() error {
	var name string
	err := s.db.QueryRow(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'games'`,
	).Scan(&name)
	switch {
	case err == sql.ErrNoRows:
		if err := s.initSchema(); err != nil {
			return err
		}
	case err != nil:
		return fmt.Errorf("sqlite: checking schema: %w", err)
	}

	rows, err := s.db.Query(`SELECT name FROM games ORDER BY rowid`)
	if err != nil {
		return fmt.Errorf("sqlite: loading games catalog: %w", err)
	}
	defer rows.Close()

	var games []string
	for rows.Next() {
		var game string
		if err := rows.Scan(&game); err != nil {
			return fmt.Errorf("sqlite: scanning games catalog: %w", err)
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: reading games catalog: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, game := range games {
		if err := s.prepareGameLocked(game); err != nil {
			return err
		}
	}
	return nil
}

// initSchema provisions the users table and the games catalog.
// Runs exactly once, on first start against an empty database.
func (s *Storage) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE users (
			uid           INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT NOT NULL,
			nickname      TEXT NOT NULL,
			email         TEXT NOT NULL,
			password_hash TEXT NOT NULL DEFAULT '',
			status        TEXT NOT NULL,
			created_at    DATETIME NOT NULL,
			updated_at    DATETIME NOT NULL
		);
		CREATE UNIQUE INDEX idx_users_username ON users(username);
		CREATE UNIQUE INDEX idx_users_nickname ON users(nickname);
		CREATE UNIQUE INDEX idx_users_email ON users(lower(email));

		CREATE TABLE games (
			name         TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			created_at   DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("sqlite: creating base schema: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure on
// the given column or index name
func isUniqueViolation(err error, name string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, name)
}
