package factory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/replayhq/scoreserver/internal/model"
	"github.com/replayhq/scoreserver/internal/services/account"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) registerUser(username string) model.UserID {
	user, err := s.app.AccountService.Register(s.ctx, account.RegisterRequest{
		Username: username,
		Nickname: "nick-" + username,
		Email:    username + "@example.com",
		Password: "hunter2",
	})
	s.Require().NoError(err)
	return user.ID
}

func (s *IntegrationSuite) replay(uid model.UserID, levelID int64, elapsed float64) []byte {
	return []byte(fmt.Sprintf(
		`{"player":{"uid":%d,"nickname":"p"},"info":{"level_id":%d,"score":1200,"time":%g},"replay":[[0,"right"],[35,"jump"]]}`,
		uid, levelID, elapsed,
	))
}

// Test: a full submission flow from registration to leaderboard
func (s *IntegrationSuite) TestCompleteScoreFlow() {
	// Step 1: Register two players
	alice := s.registerUser("alice")
	bob := s.registerUser("bob")

	// Step 2: Both log in
	login, err := s.app.AccountService.Authenticate(s.ctx, "alice", "hunter2")
	s.Require().NoError(err)
	s.Equal(alice, login.UserID)

	// Step 3: Register the game
	_, err = s.app.GameService.Register(s.ctx, "platformer", "Platformer")
	s.Require().NoError(err)

	// Step 4: Alice submits a run for level 3
	first, err := s.app.ScoreService.Submit(s.ctx, "platformer", alice, s.replay(alice, 3, 512.5))
	s.Require().NoError(err)
	s.False(first.Duplicate)
	s.Equal(model.ReplayID(1), first.Score.ID)

	// Step 5: The client retries the same submission
	retry, err := s.app.ScoreService.Submit(s.ctx, "platformer", alice, s.replay(alice, 3, 512.5))
	s.Require().NoError(err)
	s.True(retry.Duplicate)
	s.Equal(first.Score.ID, retry.Score.ID)

	// Step 6: Bob posts a faster run
	faster, err := s.app.ScoreService.Submit(s.ctx, "platformer", bob, s.replay(bob, 3, 400))
	s.Require().NoError(err)
	s.False(faster.Duplicate)
	s.Equal(model.ReplayID(2), faster.Score.ID)

	// Step 7: The level 3 leaderboard ranks Bob first
	entries, err := s.app.LeaderboardService.Fetch(s.ctx, "platformer", 3)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(faster.Score.ID, entries[0].ScoreID)
	s.Equal(bob, entries[0].OwnerID)
	s.Equal(first.Score.ID, entries[1].ScoreID)
}

func (s *IntegrationSuite) TestUnknownStorageTypeRejected() {
	_, err := New(Config{StorageType: "postgres"})
	s.Error(err)
}

func (s *IntegrationSuite) TestMemoryAppCloses() {
	app, err := New(Config{})
	s.Require().NoError(err)
	s.NoError(app.Close())
}
