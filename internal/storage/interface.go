package storage

import (
	"context"

	"github.com/replayhq/scoreserver/internal/model"
)

// Storage defines the interface for data persistence.
//
// Uniqueness of usernames, nicknames, normalized emails, game names and
// replay digests is enforced by the backend itself, so concurrent writers
// cannot slip a duplicate past the application-level checks. Backends
// report violations with the corresponding model sentinel errors.
type Storage interface {
	// User operations
	//
	// CreateUser assigns the new user's ID. GetUserByEmail matches
	// case-insensitively. UpdateUser replaces the mutable fields (email,
	// credential, status) of an existing user.
	CreateUser(ctx context.Context, user *model.User) error
	UpdateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByNickname(ctx context.Context, nickname string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// Game catalog operations
	//
	// CreateGame provisions the game's score ledger and appends the game
	// to the catalog. A name collision yields model.ErrGameExists.
	CreateGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, name string) (*model.Game, error)
	ListGames(ctx context.Context) ([]*model.Game, error)

	// Score ledger operations
	//
	// InsertScore assigns the next sequential ID within the game's ledger;
	// a digest collision yields model.ErrDuplicateReplay. TopScores returns
	// up to limit records for the level, ordered by ascending info.time
	// with ties broken by insertion order.
	InsertScore(ctx context.Context, game string, score *model.Score) error
	GetScore(ctx context.Context, game string, id model.ReplayID) (*model.Score, error)
	GetScoreByDigest(ctx context.Context, game string, digest string) (*model.Score, error)
	TopScores(ctx context.Context, game string, levelID int64, limit int) ([]*model.Score, error)
}
