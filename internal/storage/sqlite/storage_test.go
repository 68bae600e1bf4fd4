package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/replayhq/scoreserver/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	store, err := New(":memory:")
	s.Require().NoError(err)
	s.storage = store
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

func (s *StorageSuite) newUser(username string) *model.User {
	now := time.Now().UTC()
	return &model.User{
		Username:  username,
		Nickname:  "nick-" + username,
		Email:     username + "@example.com",
		Status:    model.StatusUnverified,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newScore(t require.TestingT, owner model.UserID, levelID int64, elapsed float64) *model.Score {
	raw := fmt.Sprintf(
		`{"player":{"uid":%d,"nickname":"a"},"info":{"level_id":%d,"score":10,"time":%g},"replay":[]}`,
		owner, levelID, elapsed,
	)
	payload, err := model.ParseReplay([]byte(raw))
	require.NoError(t, err)
	canonical, digest, err := model.CanonicalReplay(payload)
	require.NoError(t, err)
	return &model.Score{
		OwnerID:   owner,
		Payload:   canonical,
		Digest:    digest,
		CreatedAt: time.Now().UTC(),
	}
}

// User tests

func (s *StorageSuite) TestCreateUserAssignsID() {
	alice := s.newUser("alice")
	s.Require().NoError(s.storage.CreateUser(s.ctx, alice))
	s.Equal(model.UserID(1), alice.ID)

	bob := s.newUser("bob")
	s.Require().NoError(s.storage.CreateUser(s.ctx, bob))
	s.Equal(model.UserID(2), bob.ID)
}

func (s *StorageSuite) TestUniqueIndexesBackstopDuplicates() {
	s.Require().NoError(s.storage.CreateUser(s.ctx, s.newUser("alice")))

	byUsername := s.newUser("alice")
	byUsername.Nickname = "other"
	byUsername.Email = "other@example.com"
	s.ErrorIs(s.storage.CreateUser(s.ctx, byUsername), model.ErrUsernameTaken)

	byNickname := s.newUser("bob")
	byNickname.Nickname = "nick-alice"
	s.ErrorIs(s.storage.CreateUser(s.ctx, byNickname), model.ErrNicknameTaken)

	byEmail := s.newUser("carol")
	byEmail.Email = "ALICE@EXAMPLE.COM"
	s.ErrorIs(s.storage.CreateUser(s.ctx, byEmail), model.ErrEmailTaken)
}

func (s *StorageSuite) TestGetUserLookups() {
	alice := s.newUser("alice")
	s.Require().NoError(s.storage.CreateUser(s.ctx, alice))

	byID, err := s.storage.GetUserByID(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal("alice", byID.Username)
	s.Equal(model.StatusUnverified, byID.Status)

	byNickname, err := s.storage.GetUserByNickname(s.ctx, "nick-alice")
	s.Require().NoError(err)
	s.Equal(alice.ID, byNickname.ID)

	byEmail, err := s.storage.GetUserByEmail(s.ctx, "ALICE@example.COM")
	s.Require().NoError(err)
	s.Equal(alice.ID, byEmail.ID)

	_, err = s.storage.GetUserByUsername(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestUpdateUser() {
	alice := s.newUser("alice")
	s.Require().NoError(s.storage.CreateUser(s.ctx, alice))

	alice.Email = "new@example.com"
	alice.Status = model.StatusBanned
	alice.PasswordHash = "some-hash"
	s.Require().NoError(s.storage.UpdateUser(s.ctx, alice))

	updated, err := s.storage.GetUserByID(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal("new@example.com", updated.Email)
	s.Equal(model.StatusBanned, updated.Status)
	s.Equal("some-hash", updated.PasswordHash)
}

func (s *StorageSuite) TestUpdateUserUnknownID() {
	ghost := s.newUser("ghost")
	ghost.ID = 99
	s.ErrorIs(s.storage.UpdateUser(s.ctx, ghost), model.ErrUserNotFound)
}

func (s *StorageSuite) TestUpdateUserRejectsTakenEmail() {
	alice := s.newUser("alice")
	bob := s.newUser("bob")
	s.Require().NoError(s.storage.CreateUser(s.ctx, alice))
	s.Require().NoError(s.storage.CreateUser(s.ctx, bob))

	bob.Email = "Alice@Example.com"
	s.ErrorIs(s.storage.UpdateUser(s.ctx, bob), model.ErrEmailTaken)
}

// Game tests

func (s *StorageSuite) TestCreateGameProvisionsLedger() {
	game := &model.Game{Name: "platformer", DisplayName: "Platformer", CreatedAt: time.Now().UTC()}
	s.Require().NoError(s.storage.CreateGame(s.ctx, game))

	got, err := s.storage.GetGame(s.ctx, "platformer")
	s.Require().NoError(err)
	s.Equal("Platformer", got.DisplayName)

	// The ledger accepts writes immediately after registration
	s.Require().NoError(s.storage.CreateUser(s.ctx, s.newUser("alice")))
	s.NoError(s.storage.InsertScore(s.ctx, "platformer", newScore(s.T(), 1, 3, 500)))
}

func (s *StorageSuite) TestCreateGameRejectsDuplicate() {
	game := &model.Game{Name: "platformer", CreatedAt: time.Now().UTC()}
	s.Require().NoError(s.storage.CreateGame(s.ctx, game))
	s.ErrorIs(s.storage.CreateGame(s.ctx, game), model.ErrGameExists)
}

func (s *StorageSuite) TestCreateGameRejectsUnsafeName() {
	for _, name := range []string{"", "drop;table", "UPPER", "has space", "dash-ed"} {
		err := s.storage.CreateGame(s.ctx, &model.Game{Name: name, CreatedAt: time.Now().UTC()})
		s.ErrorIs(err, model.ErrInvalidGameName, "name %q", name)
	}
}

// Score tests

func (s *StorageSuite) registerPlatformer() {
	s.Require().NoError(s.storage.CreateUser(s.ctx, s.newUser("alice")))
	s.Require().NoError(s.storage.CreateGame(s.ctx,
		&model.Game{Name: "platformer", DisplayName: "Platformer", CreatedAt: time.Now().UTC()}))
}

func (s *StorageSuite) TestInsertScoreAssignsSequentialIDs() {
	s.registerPlatformer()

	first := newScore(s.T(), 1, 3, 500)
	second := newScore(s.T(), 1, 3, 400)
	s.Require().NoError(s.storage.InsertScore(s.ctx, "platformer", first))
	s.Require().NoError(s.storage.InsertScore(s.ctx, "platformer", second))

	s.Equal(model.ReplayID(1), first.ID)
	s.Equal(model.ReplayID(2), second.ID)
}

func (s *StorageSuite) TestInsertScoreRejectsDuplicateDigest() {
	s.registerPlatformer()

	s.Require().NoError(s.storage.InsertScore(s.ctx, "platformer", newScore(s.T(), 1, 3, 500)))
	s.ErrorIs(s.storage.InsertScore(s.ctx, "platformer", newScore(s.T(), 1, 3, 500)),
		model.ErrDuplicateReplay)
}

func (s *StorageSuite) TestScoreOperationsOnUnknownGame() {
	s.ErrorIs(s.storage.InsertScore(s.ctx, "nope", newScore(s.T(), 1, 3, 500)), model.ErrGameNotFound)

	_, err := s.storage.GetScore(s.ctx, "nope", 1)
	s.ErrorIs(err, model.ErrGameNotFound)

	_, err = s.storage.TopScores(s.ctx, "nope", 3, 50)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestGetScoreRoundTrip() {
	s.registerPlatformer()
	score := newScore(s.T(), 1, 3, 500)
	s.Require().NoError(s.storage.InsertScore(s.ctx, "platformer", score))

	got, err := s.storage.GetScore(s.ctx, "platformer", score.ID)
	s.Require().NoError(err)
	s.Equal(score.Digest, got.Digest)
	s.JSONEq(string(score.Payload), string(got.Payload))

	_, err = s.storage.GetScore(s.ctx, "platformer", 42)
	s.ErrorIs(err, model.ErrReplayNotFound)
}

func (s *StorageSuite) TestTopScoresOrdering() {
	s.registerPlatformer()
	s.Require().NoError(s.storage.InsertScore(s.ctx, "platformer", newScore(s.T(), 1, 3, 500)))
	s.Require().NoError(s.storage.InsertScore(s.ctx, "platformer", newScore(s.T(), 1, 3, 400)))
	s.Require().NoError(s.storage.InsertScore(s.ctx, "platformer", newScore(s.T(), 1, 5, 100)))

	top, err := s.storage.TopScores(s.ctx, "platformer", 3, 50)
	s.Require().NoError(err)
	s.Require().Len(top, 2)
	s.Equal(model.ReplayID(2), top[0].ID)
	s.Equal(model.ReplayID(1), top[1].ID)
}

func (s *StorageSuite) TestTopScoresTieBreaksByID() {
	s.registerPlatformer()
	s.Require().NoError(s.storage.CreateUser(s.ctx, s.newUser("bob")))
	// Same level and time, different players: distinct digests, equal rank keys
	s.Require().NoError(s.storage.InsertScore(s.ctx, "platformer", newScore(s.T(), 1, 3, 500)))
	s.Require().NoError(s.storage.InsertScore(s.ctx, "platformer", newScore(s.T(), 2, 3, 500)))

	top, err := s.storage.TopScores(s.ctx, "platformer", 3, 50)
	s.Require().NoError(err)
	s.Require().Len(top, 2)
	s.Equal(model.ReplayID(1), top[0].ID)
	s.Equal(model.ReplayID(2), top[1].ID)
}

func (s *StorageSuite) TestTopScoresRespectsLimit() {
	s.registerPlatformer()
	for i := 0; i < 5; i++ {
		s.Require().NoError(s.storage.InsertScore(s.ctx, "platformer", newScore(s.T(), 1, 3, float64(100+i))))
	}

	top, err := s.storage.TopScores(s.ctx, "platformer", 3, 3)
	s.Require().NoError(err)
	s.Len(top, 3)
}

// Bootstrap tests

func TestBootstrapRebuildsStatementCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.db")
	ctx := context.Background()

	store, err := New(path)
	require.NoError(t, err)

	now := time.Now().UTC()
	user := &model.User{
		Username: "alice", Nickname: "Alice", Email: "alice@example.com",
		Status: model.StatusActive, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, store.CreateUser(ctx, user))
	require.NoError(t, store.CreateGame(ctx,
		&model.Game{Name: "platformer", DisplayName: "Platformer", CreatedAt: now}))
	score := newScore(t, user.ID, 3, 500)
	require.NoError(t, store.InsertScore(ctx, "platformer", score))
	require.NoError(t, store.Close())

	// Reopen: the statement cache is re-derived from the games catalog
	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetScore(ctx, "platformer", score.ID)
	require.NoError(t, err)
	require.Equal(t, score.Digest, got.Digest)

	// Dedup survives the restart
	require.ErrorIs(t,
		reopened.InsertScore(ctx, "platformer", newScore(t, user.ID, 3, 500)),
		model.ErrDuplicateReplay)
}
