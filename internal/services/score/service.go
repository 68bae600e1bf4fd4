package score

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/replayhq/scoreserver/internal/dependencies/clock"
	"github.com/replayhq/scoreserver/internal/model"
	"github.com/replayhq/scoreserver/internal/storage"
)

// Service validates and records score submissions
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new score Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// SubmitResult reports the outcome of a submission. Duplicate is set
// when an identical replay was already on record, in which case Score
// is the existing record.
type SubmitResult struct {
	Score     *model.Score
	Duplicate bool
}

// Submit validates a raw replay document and records it against the
// named game on behalf of owner. The payload's player block is
// validated structurally but does not determine ownership. Submitting
// a byte-for-byte or key-order-permuted copy of an existing replay
// returns the original record instead of a new one.
func (s *Service) Submit(ctx context.Context, game string, owner model.UserID, raw []byte) (*SubmitResult, error) {
	payload, err := model.ParseReplay(raw)
	if err != nil {
		return nil, err
	}
	if err := model.ValidateReplay(payload); err != nil {
		return nil, err
	}

	if _, err := s.storage.GetUserByID(ctx, owner); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: uid %d", model.ErrInvalidOwner, owner)
		}
		return nil, err
	}

	if _, err := s.storage.GetGame(ctx, game); err != nil {
		return nil, err
	}

	canonical, digest, err := model.CanonicalReplay(payload)
	if err != nil {
		return nil, err
	}

	existing, err := s.storage.GetScoreByDigest(ctx, game, digest)
	if err == nil {
		return &SubmitResult{Score: existing, Duplicate: true}, nil
	}
	if !errors.Is(err, model.ErrReplayNotFound) {
		return nil, err
	}

	record := &model.Score{
		OwnerID:   owner,
		Payload:   canonical,
		Digest:    digest,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.storage.InsertScore(ctx, game, record); err != nil {
		// A concurrent submission of the same replay can win the
		// insert; surface its record as the duplicate
		if errors.Is(err, model.ErrDuplicateReplay) {
			existing, lookupErr := s.storage.GetScoreByDigest(ctx, game, digest)
			if lookupErr != nil {
				return nil, err
			}
			return &SubmitResult{Score: existing, Duplicate: true}, nil
		}
		return nil, err
	}

	s.logger.Info("score recorded",
		slog.String("game", game),
		slog.Int64("id", int64(record.ID)),
		slog.Int64("uid", int64(record.OwnerID)))
	return &SubmitResult{Score: record}, nil
}

// Fetch retrieves a recorded score by id
func (s *Service) Fetch(ctx context.Context, game string, id model.ReplayID) (*model.Score, error) {
	return s.storage.GetScore(ctx, game, id)
}
