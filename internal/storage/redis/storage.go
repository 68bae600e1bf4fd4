package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/replayhq/scoreserver/internal/model"
	"github.com/replayhq/scoreserver/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Uniqueness (usernames, nicknames, emails, game names, replay digests)
// is enforced with SETNX index keys, and per-level leaderboards are kept
// as sorted sets scored by elapsed time.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{client: client, cfg: cfg}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{client: client, cfg: cfg}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	id, err := s.client.Incr(ctx, userSeqKey()).Result()
	if err != nil {
		return err
	}
	user.ID = model.UserID(id)

	// Claim the three uniqueness indexes one by one, rolling back the
	// claims already made if a later one is taken.
	claims := []struct {
		key     string
		conflict error
	}{
		{usernameIndexKey(user.Username), model.ErrUsernameTaken},
		{nicknameIndexKey(user.Nickname), model.ErrNicknameTaken},
		{emailIndexKey(user.Email), model.ErrEmailTaken},
	}
	var claimed []string
	for _, claim := range claims {
		ok, err := s.client.SetNX(ctx, claim.key, id, 0).Result()
		if err != nil {
			s.releaseClaims(ctx, claimed)
			return err
		}
		if !ok {
			s.releaseClaims(ctx, claimed)
			return claim.conflict
		}
		claimed = append(claimed, claim.key)
	}

	data, err := json.Marshal(user)
	if err != nil {
		s.releaseClaims(ctx, claimed)
		return err
	}
	return s.client.Set(ctx, userKey(user.ID), data, 0).Err()
}

// releaseClaims rolls back uniqueness index keys claimed by a failed create
func (s *Storage) releaseClaims(ctx context.Context, claimed []string) {
	if len(claimed) > 0 {
		s.client.Del(ctx, claimed...)
	}
}

func (s *Storage) UpdateUser(ctx context.Context, user *model.User) error {
	existing, err := s.getUser(ctx, userKey(user.ID))
	if err != nil {
		return err
	}

	oldEmailKey := emailIndexKey(existing.Email)
	newEmailKey := emailIndexKey(user.Email)
	if newEmailKey != oldEmailKey {
		ok, err := s.client.SetNX(ctx, newEmailKey, int64(user.ID), 0).Result()
		if err != nil {
			return err
		}
		if !ok {
			return model.ErrEmailTaken
		}
		s.client.Del(ctx, oldEmailKey)
	}

	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, userKey(user.ID), data, 0).Err()
}

func (s *Storage) GetUserByID(ctx context.Context, id model.UserID) (*model.User, error) {
	return s.getUser(ctx, userKey(id))
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.getUserByIndex(ctx, usernameIndexKey(username))
}

func (s *Storage) GetUserByNickname(ctx context.Context, nickname string) (*model.User, error) {
	return s.getUserByIndex(ctx, nicknameIndexKey(nickname))
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUserByIndex(ctx, emailIndexKey(email))
}

func (s *Storage) getUserByIndex(ctx context.Context, indexKey string) (*model.User, error) {
	id, err := s.client.Get(ctx, indexKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return s.getUser(ctx, userKey(model.UserID(id)))
}

func (s *Storage) getUser(ctx context.Context, key string) (*model.User, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Game catalog operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	ok, err := s.client.SetNX(ctx, gameKey(game.Name), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrGameExists
	}
	return s.client.RPush(ctx, catalogKey(), game.Name).Err()
}

func (s *Storage) GetGame(ctx context.Context, name string) (*model.Game, error) {
	data, err := s.client.Get(ctx, gameKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}
	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	names, err := s.client.LRange(ctx, catalogKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	games := make([]*model.Game, 0, len(names))
	for _, name := range names {
		game, err := s.GetGame(ctx, name)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	return games, nil
}

// Score ledger operations

func (s *Storage) InsertScore(ctx context.Context, game string, score *model.Score) error {
	exists, err := s.client.Exists(ctx, gameKey(game)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return model.ErrGameNotFound
	}

	info, err := score.Info()
	if err != nil {
		return err
	}

	id, err := s.client.Incr(ctx, scoreSeqKey(game)).Result()
	if err != nil {
		return err
	}

	ok, err := s.client.SetNX(ctx, digestIndexKey(game, score.Digest), id, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrDuplicateReplay
	}
	score.ID = model.ReplayID(id)

	data, err := json.Marshal(score)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, scoreKey(game, score.ID), data, 0)
	pipe.ZAdd(ctx, leaderboardKey(game, info.LevelID), redis.Z{
		Score:  info.Time,
		Member: leaderboardMember(score.ID),
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetScore(ctx context.Context, game string, id model.ReplayID) (*model.Score, error) {
	data, err := s.client.Get(ctx, scoreKey(game, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, s.missingScoreErr(ctx, game)
		}
		return nil, err
	}
	var score model.Score
	if err := json.Unmarshal(data, &score); err != nil {
		return nil, err
	}
	return &score, nil
}

func (s *Storage) GetScoreByDigest(ctx context.Context, game string, digest string) (*model.Score, error) {
	id, err := s.client.Get(ctx, digestIndexKey(game, digest)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, s.missingScoreErr(ctx, game)
		}
		return nil, err
	}
	return s.GetScore(ctx, game, model.ReplayID(id))
}

func (s *Storage) TopScores(ctx context.Context, game string, levelID int64, limit int) ([]*model.Score, error) {
	exists, err := s.client.Exists(ctx, gameKey(game)).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, model.ErrGameNotFound
	}

	// Members are fixed-width ids, so equal times rank by insertion order
	members, err := s.client.ZRange(ctx, leaderboardKey(game, levelID), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}

	scores := make([]*model.Score, 0, len(members))
	for _, member := range members {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			return nil, err
		}
		score, err := s.GetScore(ctx, game, model.ReplayID(id))
		if err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}
	return scores, nil
}

// missingScoreErr distinguishes an unregistered game from a missing record
func (s *Storage) missingScoreErr(ctx context.Context, game string) error {
	exists, err := s.client.Exists(ctx, gameKey(game)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return model.ErrGameNotFound
	}
	return model.ErrReplayNotFound
}
