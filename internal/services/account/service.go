package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/replayhq/scoreserver/internal/dependencies/clock"
	"github.com/replayhq/scoreserver/internal/model"
	"github.com/replayhq/scoreserver/internal/services/password"
	"github.com/replayhq/scoreserver/internal/storage"
)

// Service manages user accounts and credentials
type Service struct {
	storage storage.Storage
	hasher  *password.Hasher
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new account Service
func New(storage storage.Storage, hasher *password.Hasher, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		hasher:  hasher,
		clock:   clock,
		logger:  logger,
	}
}

// RegisterRequest carries the fields for a new account. Password may
// be empty, in which case the account cannot log in until one is set.
type RegisterRequest struct {
	Username string
	Nickname string
	Email    string
	Password string
}

// Register creates a new account in the unverified state
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	for _, field := range []struct {
		name, value string
	}{
		{"username", req.Username},
		{"nickname", req.Nickname},
		{"email", req.Email},
	} {
		if strings.TrimSpace(field.value) == "" {
			return nil, fmt.Errorf("%w: %s", model.ErrFieldRequired, field.name)
		}
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	hash := ""
	if req.Password != "" {
		hash, err = s.hasher.Hash(ctx, req.Password)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
	}

	now := s.clock.Now().UTC()
	user := &model.User{
		Username:     req.Username,
		Nickname:     req.Nickname,
		Email:        email,
		PasswordHash: hash,
		Status:       model.StatusUnverified,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("account registered",
		slog.Int64("uid", int64(user.ID)),
		slog.String("username", user.Username))
	return user, nil
}

// ModifyRequest carries optional account changes. Nil fields are left
// untouched.
type ModifyRequest struct {
	Email    *string
	Password *string
	Status   *model.UserStatus
}

// Modify applies the requested changes to an existing account
func (s *Service) Modify(ctx context.Context, id model.UserID, req ModifyRequest) (*model.User, error) {
	if req.Email == nil && req.Password == nil && req.Status == nil {
		return nil, model.ErrNoChanges
	}

	user, err := s.storage.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email, err := normalizeEmail(*req.Email)
		if err != nil {
			return nil, err
		}
		user.Email = email
	}

	if req.Password != nil {
		hash, err := s.hasher.Hash(ctx, *req.Password)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		user.PasswordHash = hash
	}

	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, fmt.Errorf("%w: %s", model.ErrInvalidStatus, *req.Status)
		}
		user.Status = *req.Status
	}

	user.UpdatedAt = s.clock.Now().UTC()
	if err := s.storage.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// AuthResult reports a successful login. Upgraded is set when the
// stored hash was re-derived with current cost parameters.
type AuthResult struct {
	UserID   model.UserID
	Nickname string
	Upgraded bool
}

// Authenticate verifies a username/password pair. Unknown usernames
// and wrong passwords both map to ErrInvalidCredentials so callers
// cannot probe which accounts exist.
func (s *Service) Authenticate(ctx context.Context, username, pass string) (*AuthResult, error) {
	user, err := s.storage.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.CanAuthenticate() {
		return nil, model.ErrAccountInactive
	}

	if !user.HasPassword() {
		return nil, model.ErrNoPassword
	}

	if err := s.hasher.Verify(ctx, user.PasswordHash, pass); err != nil {
		if errors.Is(err, password.ErrMismatch) || errors.Is(err, password.ErrMalformedHash) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	result := &AuthResult{
		UserID:   user.ID,
		Nickname: user.Nickname,
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		if err := s.rehash(ctx, user, pass); err == nil {
			result.Upgraded = true
			s.logger.Info("credential upgraded", slog.Int64("uid", int64(user.ID)))
		} else {
			// The old hash already verified, so a failed upgrade
			// does not fail the login
			s.logger.Warn("credential upgrade failed",
				slog.Int64("uid", int64(user.ID)),
				slog.String("error", err.Error()))
		}
	}

	return result, nil
}

// rehash re-derives the stored hash with current parameters
func (s *Service) rehash(ctx context.Context, user *model.User, pass string) error {
	hash, err := s.hasher.Hash(ctx, pass)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.UpdatedAt = s.clock.Now().UTC()
	return s.storage.UpdateUser(ctx, user)
}

// Get fetches an account by id
func (s *Service) Get(ctx context.Context, id model.UserID) (*model.User, error) {
	return s.storage.GetUserByID(ctx, id)
}

// GetByUsername fetches an account by username
func (s *Service) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.storage.GetUserByUsername(ctx, username)
}

// GetByNickname fetches an account by nickname
func (s *Service) GetByNickname(ctx context.Context, nickname string) (*model.User, error) {
	return s.storage.GetUserByNickname(ctx, nickname)
}

// GetByEmail fetches an account by email, matching case-insensitively
func (s *Service) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.storage.GetUserByEmail(ctx, email)
}

// normalizeEmail validates the address and lowercases its domain
func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil || addr.Name != "" {
		return "", fmt.Errorf("%w: %s", model.ErrInvalidEmail, raw)
	}
	at := strings.LastIndex(addr.Address, "@")
	if at < 0 {
		return "", fmt.Errorf("%w: %s", model.ErrInvalidEmail, raw)
	}
	return addr.Address[:at] + "@" + strings.ToLower(addr.Address[at+1:]), nil
}
