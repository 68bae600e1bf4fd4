package game

import (
	"context"
	"fmt"

	"github.com/replayhq/scoreserver/internal/dependencies/clock"
	"github.com/replayhq/scoreserver/internal/model"
	"github.com/replayhq/scoreserver/internal/storage"
)

// Service manages the catalog of registered games
type Service struct {
	storage storage.Storage
	clock   clock.Clock
}

// New creates a new game Service
func New(storage storage.Storage, clock clock.Clock) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
	}
}

// Register adds a game to the catalog and provisions its score ledger.
// Names are restricted to lowercase letters, digits and underscores
// because they become part of storage identifiers.
func (s *Service) Register(ctx context.Context, name, displayName string) (*model.Game, error) {
	if !model.ValidGameName(name) {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidGameName, name)
	}
	if displayName == "" {
		displayName = name
	}

	game := &model.Game{
		Name:        name,
		DisplayName: displayName,
		CreatedAt:   s.clock.Now().UTC(),
	}
	if err := s.storage.CreateGame(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// Get fetches a game by name
func (s *Service) Get(ctx context.Context, name string) (*model.Game, error) {
	return s.storage.GetGame(ctx, name)
}

// List returns all registered games in registration order
func (s *Service) List(ctx context.Context) ([]*model.Game, error) {
	return s.storage.ListGames(ctx)
}
