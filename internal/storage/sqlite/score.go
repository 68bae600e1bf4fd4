package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/replayhq/scoreserver/internal/model"
)

func (s *Storage) InsertScore(ctx context.Context, game string, score *model.Score) error {
	g, err := s.gameStmtsFor(game)
	if err != nil {
		return err
	}

	res, err := g.insert.ExecContext(ctx,
		int64(score.OwnerID),
		string(score.Payload),
		score.Digest,
		score.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "digest") {
			return model.ErrDuplicateReplay
		}
		return fmt.Errorf("sqlite: inserting score into %q: %w", game, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new score id: %w", err)
	}
	score.ID = model.ReplayID(id)
	return nil
}

func (s *Storage) GetScore(ctx context.Context, game string, id model.ReplayID) (*model.Score, error) {
	g, err := s.gameStmtsFor(game)
	if err != nil {
		return nil, err
	}
	return scanScore(g.fetchByID.QueryRowContext(ctx, int64(id)))
}

func (s *Storage) GetScoreByDigest(ctx context.Context, game string, digest string) (*model.Score, error) {
	g, err := s.gameStmtsFor(game)
	if err != nil {
		return nil, err
	}
	return scanScore(g.byDigest.QueryRowContext(ctx, digest))
}

func (s *Storage) TopScores(ctx context.Context, game string, levelID int64, limit int) ([]*model.Score, error) {
	g, err := s.gameStmtsFor(game)
	if err != nil {
		return nil, err
	}

	rows, err := g.leaderboard.QueryContext(ctx, levelID, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying leaderboard for %q: %w", game, err)
	}
	defer rows.Close()

	var scores []*model.Score
	for rows.Next() {
		var score model.Score
		var payload string
		err := rows.Scan(&score.ID, &score.OwnerID, &payload, &score.Digest, &score.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning leaderboard row: %w", err)
		}
		score.Payload = []byte(payload)
		scores = append(scores, &score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: reading leaderboard for %q: %w", game, err)
	}
	return scores, nil
}

func scanScore(row *sql.Row) (*model.Score, error) {
	var score model.Score
	var payload string
	err := row.Scan(&score.ID, &score.OwnerID, &payload, &score.Digest, &score.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrReplayNotFound
		}
		return nil, fmt.Errorf("sqlite: scanning score: %w", err)
	}
	score.Payload = []byte(payload)
	return &score, nil
}
