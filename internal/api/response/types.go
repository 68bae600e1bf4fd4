package response

import (
	"encoding/json"
	"time"

	"github.com/replayhq/scoreserver/internal/model"
	"github.com/replayhq/scoreserver/internal/services/account"
	"github.com/replayhq/scoreserver/internal/services/leaderboard"
	"github.com/replayhq/scoreserver/internal/services/score"
)

// Account represents a user account in API responses. The password
// hash never leaves the server.
type Account struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Nickname  string    `json:"nickname"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccountFromModel converts a model.User to a response Account
func AccountFromModel(u *model.User) Account {
	return Account{
		ID:        int64(u.ID),
		Username:  u.Username,
		Nickname:  u.Nickname,
		Email:     u.Email,
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Login is the response for a successful authentication
type Login struct {
	UserID   int64  `json:"uid"`
	Nickname string `json:"nickname"`
	Upgraded bool   `json:"upgraded,omitempty"`
}

// LoginFromResult converts an account.AuthResult
func LoginFromResult(r *account.AuthResult) Login {
	return Login{
		UserID:   int64(r.UserID),
		Nickname: r.Nickname,
		Upgraded: r.Upgraded,
	}
}

// Game represents a catalog entry
type Game struct {
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// GameFromModel converts a model.Game
func GameFromModel(g *model.Game) Game {
	return Game{
		Name:        g.Name,
		DisplayName: g.DisplayName,
		CreatedAt:   g.CreatedAt,
	}
}

// GameList wraps the catalog listing
type GameList struct {
	Games []Game `json:"games"`
}

// GameListFromModels converts a slice of model.Game
func GameListFromModels(games []*model.Game) GameList {
	out := GameList{Games: make([]Game, 0, len(games))}
	for _, g := range games {
		out.Games = append(out.Games, GameFromModel(g))
	}
	return out
}

// Score represents a recorded score
type Score struct {
	ID        int64           `json:"id"`
	OwnerID   int64           `json:"uid"`
	Digest    string          `json:"digest"`
	Replay    json.RawMessage `json:"replay"`
	CreatedAt time.Time       `json:"created_at"`
}

// ScoreFromModel converts a model.Score
func ScoreFromModel(s *model.Score) Score {
	return Score{
		ID:        int64(s.ID),
		OwnerID:   int64(s.OwnerID),
		Digest:    s.Digest,
		Replay:    json.RawMessage(s.Payload),
		CreatedAt: s.CreatedAt,
	}
}

// SubmitScore is the response for a score submission
type SubmitScore struct {
	ID        int64  `json:"id"`
	Digest    string `json:"digest"`
	Duplicate bool   `json:"duplicate"`
}

// SubmitScoreFromResult converts a score.SubmitResult
func SubmitScoreFromResult(r *score.SubmitResult) SubmitScore {
	return SubmitScore{
		ID:        int64(r.Score.ID),
		Digest:    r.Score.Digest,
		Duplicate: r.Duplicate,
	}
}

// LeaderboardEntry is one ranked row
type LeaderboardEntry struct {
	Rank    int             `json:"rank"`
	ScoreID int64           `json:"score_id"`
	OwnerID int64           `json:"uid"`
	Score   float64         `json:"score"`
	Time    float64         `json:"time"`
	Replay  json.RawMessage `json:"replay"`
}

// Leaderboard is the response for a leaderboard query
type Leaderboard struct {
	Game    string             `json:"game"`
	LevelID int64              `json:"level_id"`
	Entries []LeaderboardEntry `json:"entries"`
}

// LeaderboardFromEntries converts ranked leaderboard entries
func LeaderboardFromEntries(game string, levelID int64, entries []leaderboard.Entry) Leaderboard {
	out := Leaderboard{
		Game:    game,
		LevelID: levelID,
		Entries: make([]LeaderboardEntry, 0, len(entries)),
	}
	for _, e := range entries {
		out.Entries = append(out.Entries, LeaderboardEntry{
			Rank:    e.Rank,
			ScoreID: int64(e.ScoreID),
			OwnerID: int64(e.OwnerID),
			Score:   e.Score,
			Time:    e.Time,
			Replay:  json.RawMessage(e.Payload),
		})
	}
	return out
}
