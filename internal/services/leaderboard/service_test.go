package leaderboard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/replayhq/scoreserver/internal/dependencies/mocks"
	"github.com/replayhq/scoreserver/internal/model"
	scoresvc "github.com/replayhq/scoreserver/internal/services/score"
	"github.com/replayhq/scoreserver/internal/storage/memory"
	"github.com/replayhq/scoreserver/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	scores  *scoresvc.Service
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	clock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.scores = scoresvc.New(s.storage, clock, testutil.NopLogger())
	s.service = New(s.storage)
	s.ctx = context.Background()

	for _, username := range []string{"alice", "bob"} {
		s.Require().NoError(s.storage.CreateUser(s.ctx, &model.User{
			Username: username,
			Nickname: username,
			Email:    username + "@example.com",
			Status:   model.StatusActive,
		}))
	}
	s.Require().NoError(s.storage.CreateGame(s.ctx,
		&model.Game{Name: "platformer", DisplayName: "Platformer"}))
}

func (s *ServiceSuite) submit(uid, levelID int64, elapsed float64) model.ReplayID {
	raw := fmt.Sprintf(
		`{"player":{"uid":%d,"nickname":"p"},"info":{"level_id":%d,"score":100,"time":%g},"replay":[[%g,"x"]]}`,
		uid, levelID, elapsed, elapsed,
	)
	result, err := s.scores.Submit(s.ctx, "platformer", model.UserID(uid), []byte(raw))
	s.Require().NoError(err)
	return result.Score.ID
}

func (s *ServiceSuite) TestFetchRanksByTime() {
	slow := s.submit(1, 3, 512.5)
	fast := s.submit(2, 3, 400)
	s.submit(1, 5, 100)

	entries, err := s.service.Fetch(s.ctx, "platformer", 3)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)

	s.Equal(1, entries[0].Rank)
	s.Equal(fast, entries[0].ScoreID)
	s.Equal(model.UserID(2), entries[0].OwnerID)
	s.Equal(400.0, entries[0].Time)
	s.JSONEq(
		`{"player":{"uid":2,"nickname":"p"},"info":{"level_id":3,"score":100,"time":400},"replay":[[400,"x"]]}`,
		string(entries[0].Payload))

	s.Equal(2, entries[1].Rank)
	s.Equal(slow, entries[1].ScoreID)
	s.Equal(512.5, entries[1].Time)
}

func (s *ServiceSuite) TestFetchTieBreaksBySubmissionOrder() {
	first := s.submit(1, 3, 500)
	second := s.submit(2, 3, 500)

	entries, err := s.service.Fetch(s.ctx, "platformer", 3)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(first, entries[0].ScoreID)
	s.Equal(second, entries[1].ScoreID)
}

func (s *ServiceSuite) TestFetchEmptyLevel() {
	entries, err := s.service.Fetch(s.ctx, "platformer", 9)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *ServiceSuite) TestFetchUnknownGame() {
	_, err := s.service.Fetch(s.ctx, "nope", 3)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ServiceSuite) TestFetchCapsAtLimit() {
	for i := 0; i < DefaultLimit+5; i++ {
		// Vary the elapsed time so every run is a distinct replay
		s.submit(1, 3, float64(1000+i))
	}

	entries, err := s.service.Fetch(s.ctx, "platformer", 3)
	s.Require().NoError(err)
	s.Len(entries, DefaultLimit)
}
