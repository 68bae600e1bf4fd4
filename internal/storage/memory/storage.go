package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/replayhq/scoreserver/internal/model"
	"github.com/replayhq/scoreserver/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users         map[model.UserID]*model.User
	usernameIndex map[string]model.UserID
	nicknameIndex map[string]model.UserID
	emailIndex    map[string]model.UserID // keyed by lowercased email

	games   map[string]*model.Game
	catalog []string // game names in registration order

	ledgers map[string]*ledger

	nextUserID model.UserID
}

// ledger holds the score records for one game
type ledger struct {
	scores   []*model.Score // insertion order
	byID     map[model.ReplayID]*model.Score
	byDigest map[string]*model.Score
	nextID   model.ReplayID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:         make(map[model.UserID]*model.User),
		usernameIndex: make(map[string]model.UserID),
		nicknameIndex: make(map[string]model.UserID),
		emailIndex:    make(map[string]model.UserID),
		games:         make(map[string]*model.Game),
		ledgers:       make(map[string]*ledger),
		nextUserID:    1,
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usernameIndex[user.Username]; taken {
		return model.ErrUsernameTaken
	}
	if _, taken := s.nicknameIndex[user.Nickname]; taken {
		return model.ErrNicknameTaken
	}
	emailKey := strings.ToLower(user.Email)
	if _, taken := s.emailIndex[emailKey]; taken {
		return model.ErrEmailTaken
	}

	user.ID = s.nextUserID
	s.nextUserID++

	stored := *user
	s.users[stored.ID] = &stored
	s.usernameIndex[stored.Username] = stored.ID
	s.nicknameIndex[stored.Nickname] = stored.ID
	s.emailIndex[emailKey] = stored.ID
	return nil
}

func (s *Storage) UpdateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return model.ErrUserNotFound
	}

	oldEmailKey := strings.ToLower(existing.Email)
	newEmailKey := strings.ToLower(user.Email)
	if newEmailKey != oldEmailKey {
		if owner, taken := s.emailIndex[newEmailKey]; taken && owner != user.ID {
			return model.ErrEmailTaken
		}
		delete(s.emailIndex, oldEmailKey)
		s.emailIndex[newEmailKey] = user.ID
	}

	stored := *user
	s.users[stored.ID] = &stored
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userByIndex(s.usernameIndex, username)
}

func (s *Storage) GetUserByNickname(ctx context.Context, nickname string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userByIndex(s.nicknameIndex, nickname)
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userByIndex(s.emailIndex, strings.ToLower(email))
}

// userByIndex must be called with the lock held
func (s *Storage) userByIndex(index map[string]model.UserID, key string) (*model.User, error) {
	id, ok := index[key]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

// Game catalog operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[game.Name]; exists {
		return model.ErrGameExists
	}

	stored := *game
	s.games[stored.Name] = &stored
	s.catalog = append(s.catalog, stored.Name)
	s.ledgers[stored.Name] = &ledger{
		byID:     make(map[model.ReplayID]*model.Score),
		byDigest: make(map[string]*model.Score),
		nextID:   1,
	}
	return nil
}

func (s *Storage) GetGame(ctx context.Context, name string) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[name]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	copied := *game
	return &copied, nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	games := make([]*model.Game, 0, len(s.catalog))
	for _, name := range s.catalog {
		copied := *s.games[name]
		games = append(games, &copied)
	}
	return games, nil
}

// Score ledger operations

func (s *Storage) InsertScore(ctx context.Context, game string, score *model.Score) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.ledgers[game]
	if !ok {
		return model.ErrGameNotFound
	}
	if _, dup := l.byDigest[score.Digest]; dup {
		return model.ErrDuplicateReplay
	}

	score.ID = l.nextID
	l.nextID++

	stored := *score
	l.scores = append(l.scores, &stored)
	l.byID[stored.ID] = &stored
	l.byDigest[stored.Digest] = &stored
	return nil
}

func (s *Storage) GetScore(ctx context.Context, game string, id model.ReplayID) (*model.Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.ledgers[game]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	score, ok := l.byID[id]
	if !ok {
		return nil, model.ErrReplayNotFound
	}
	copied := *score
	return &copied, nil
}

func (s *Storage) GetScoreByDigest(ctx context.Context, game string, digest string) (*model.Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.ledgers[game]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	score, ok := l.byDigest[digest]
	if !ok {
		return nil, model.ErrReplayNotFound
	}
	copied := *score
	return &copied, nil
}

func (s *Storage) TopScores(ctx context.Context, game string, levelID int64, limit int) ([]*model.Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.ledgers[game]
	if !ok {
		return nil, model.ErrGameNotFound
	}

	type ranked struct {
		score *model.Score
		time  float64
	}

	var matches []ranked
	for _, score := range l.scores {
		info, err := score.Info()
		if err != nil {
			// Records are validated before insertion, but a ledger is
			// never allowed to break a leaderboard read.
			continue
		}
		if info.LevelID != levelID {
			continue
		}
		copied := *score
		matches = append(matches, ranked{score: &copied, time: info.Time})
	}

	// Stable sort keeps insertion order for equal times
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].time < matches[j].time
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	result := make([]*model.Score, len(matches))
	for i, m := range matches {
		result[i] = m.score
	}
	return result, nil
}
