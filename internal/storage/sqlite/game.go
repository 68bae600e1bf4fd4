package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/replayhq/scoreserver/internal/model"
)

// ledgerTable returns the ledger table name for a game. The game name has
// already passed the strict identifier check before it gets here; this is
// the only place a name is ever interpolated into SQL.
func ledgerTable(game string) string {
	return "game_" + game
}

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	if !model.ValidGameName(game.Name) {
		return model.ErrInvalidGameName
	}

	// Registration is serialized: catalog insert, ledger provisioning and
	// statement preparation happen under one write lock so readers never
	// observe a game without its query plans.
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO games (name, display_name, created_at) VALUES (?, ?, ?)`,
		game.Name, game.DisplayName, game.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "games.name") {
			return model.ErrGameExists
		}
		return fmt.Errorf("sqlite: inserting game %q: %w", game.Name, err)
	}

	table := ledgerTable(game.Name)
	_, err = s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			uid         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_uid    INTEGER NOT NULL REFERENCES users(uid),
			replay_json TEXT NOT NULL,
			digest      TEXT NOT NULL UNIQUE,
			created_at  DATETIME NOT NULL
		)`, table))
	if err != nil {
		return fmt.Errorf("sqlite: provisioning ledger for %q: %w", game.Name, err)
	}

	return s.prepareGameLocked(game.Name)
}

func (s *Storage) GetGame(ctx context.Context, name string) (*model.Game, error) {
	var game model.Game
	err := s.db.QueryRowContext(ctx,
		`SELECT name, display_name, created_at FROM games WHERE name = ?`, name,
	).Scan(&game.Name, &game.DisplayName, &game.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrGameNotFound
		}
		return nil, fmt.Errorf("sqlite: getting game %q: %w", name, err)
	}
	return &game, nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, display_name, created_at FROM games ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing games: %w", err)
	}
	defer rows.Close()

	var games []*model.Game
	for rows.Next() {
		var game model.Game
		if err := rows.Scan(&game.Name, &game.DisplayName, &game.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning game: %w", err)
		}
		games = append(games, &game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: listing games: %w", err)
	}
	return games, nil
}

// prepareGameLocked builds and caches the query plans for one game's
// ledger. Must be called with the write lock held.
func (s *Storage) prepareGameLocked(game string) error {
	table := ledgerTable(game)

	insert, err := s.db.Prepare(fmt.Sprintf(
		`INSERT INTO %s (user_uid, replay_json, digest, created_at) VALUES (?, ?, ?, ?)`, table))
	if err != nil {
		return fmt.Errorf("sqlite: preparing insert for %q: %w", game, err)
	}
	fetchByID, err := s.db.Prepare(fmt.Sprintf(
		`SELECT uid, user_uid, replay_json, digest, created_at FROM %s WHERE uid = ?`, table))
	if err != nil {
		insert.Close()
		return fmt.Errorf("sqlite: preparing fetch for %q: %w", game, err)
	}
	byDigest, err := s.db.Prepare(fmt.Sprintf(
		`SELECT uid, user_uid, replay_json, digest, created_at FROM %s WHERE digest = ?`, table))
	if err != nil {
		insert.Close()
		fetchByID.Close()
		return fmt.Errorf("sqlite: preparing digest lookup for %q: %w", game, err)
	}
	leaderboard, err := s.db.Prepare(fmt.Sprintf(
		`SELECT uid, user_uid, replay_json, digest, created_at FROM %s
		 WHERE json_extract(replay_json, '$.info.level_id') = ?
		 ORDER BY json_extract(replay_json, '$.info.time') ASC, uid ASC
		 LIMIT ?`, table))
	if err != nil {
		insert.Close()
		fetchByID.Close()
		byDigest.Close()
		return fmt.Errorf("sqlite: preparing leaderboard for %q: %w", game, err)
	}

	s.stmts[game] = &gameStmts{
		insert:      insert,
		fetchByID:   fetchByID,
		byDigest:    byDigest,
		leaderboard: leaderboard,
	}
	return nil
}

// gameStmtsFor returns the cached query plans for a game, or
// model.ErrGameNotFound when the game is not registered
func (s *Storage) gameStmtsFor(game string) (*gameStmts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.stmts[game]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return g, nil
}

func (g *gameStmts) close() {
	g.insert.Close()
	g.fetchByID.Close()
	g.byDigest.Close()
	g.leaderboard.Close()
}
