package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/replayhq/scoreserver/internal/dependencies/mocks"
	"github.com/replayhq/scoreserver/internal/model"
	"github.com/replayhq/scoreserver/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	clock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, clock)
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestRegisterSucceeds() {
	game, err := s.service.Register(s.ctx, "platformer", "Platformer")
	s.Require().NoError(err)
	s.Equal("platformer", game.Name)
	s.Equal("Platformer", game.DisplayName)
	s.False(game.CreatedAt.IsZero())
}

func (s *ServiceSuite) TestRegisterDefaultsDisplayName() {
	game, err := s.service.Register(s.ctx, "platformer", "")
	s.Require().NoError(err)
	s.Equal("platformer", game.DisplayName)
}

func (s *ServiceSuite) TestRegisterRejectsUnsafeNames() {
	for _, name := range []string{
		"",
		"Platformer",
		"has space",
		"dash-ed",
		"drop;table",
		"games\"x",
	} {
		_, err := s.service.Register(s.ctx, name, "")
		s.ErrorIs(err, model.ErrInvalidGameName, name)
	}
}

func (s *ServiceSuite) TestRegisterDuplicate() {
	_, err := s.service.Register(s.ctx, "platformer", "")
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, "platformer", "Again")
	s.ErrorIs(err, model.ErrGameExists)
}

func (s *ServiceSuite) TestGetAndList() {
	_, err := s.service.Register(s.ctx, "zelda_like", "Zelda-like")
	s.Require().NoError(err)
	_, err = s.service.Register(s.ctx, "platformer", "Platformer")
	s.Require().NoError(err)

	game, err := s.service.Get(s.ctx, "platformer")
	s.Require().NoError(err)
	s.Equal("Platformer", game.DisplayName)

	_, err = s.service.Get(s.ctx, "nope")
	s.ErrorIs(err, model.ErrGameNotFound)

	games, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(games, 2)
	s.Equal("zelda_like", games[0].Name)
	s.Equal("platformer", games[1].Name)
}
