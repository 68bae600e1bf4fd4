package leaderboard

import (
	"context"

	"github.com/replayhq/scoreserver/internal/model"
	"github.com/replayhq/scoreserver/internal/storage"
)

// DefaultLimit is how many entries a leaderboard returns
const DefaultLimit = 50

// Entry is one ranked row of a leaderboard. Payload is the canonical
// replay document of the ranked record.
type Entry struct {
	Rank    int
	ScoreID model.ReplayID
	OwnerID model.UserID
	LevelID int64
	Score   float64
	Time    float64
	Payload []byte
}

// Service produces per-level rankings from recorded scores
type Service struct {
	storage storage.Storage
	limit   int
}

// New creates a new leaderboard Service
func New(storage storage.Storage) *Service {
	return &Service{
		storage: storage,
		limit:   DefaultLimit,
	}
}

// Fetch returns the top entries for a level, fastest completion
// first. Equal times rank in submission order.
func (s *Service) Fetch(ctx context.Context, game string, levelID int64) ([]Entry, error) {
	scores, err := s.storage.TopScores(ctx, game, levelID, s.limit)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(scores))
	for i, score := range scores {
		info, err := score.Info()
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			Rank:    i + 1,
			ScoreID: score.ID,
			OwnerID: score.OwnerID,
			LevelID: info.LevelID,
			Score:   info.Score,
			Time:    info.Time,
			Payload: score.Payload,
		})
	}
	return entries, nil
}
