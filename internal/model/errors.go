package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
	ErrNicknameTaken = errors.New("nickname already exists")
	ErrEmailTaken    = errors.New("email already exists")
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrInvalidStatus = errors.New("invalid user status")
	ErrFieldRequired = errors.New("required field is empty")
	ErrNoChanges     = errors.New("no changes requested")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNoPassword         = errors.New("no password set for this account")
	ErrAccountInactive    = errors.New("account is not active")

	// Game errors
	ErrGameNotFound    = errors.New("game not found")
	ErrGameExists      = errors.New("game already exists")
	ErrInvalidGameName = errors.New("invalid game name")

	// Replay errors
	ErrReplayNotFound    = errors.New("replay not found")
	ErrDuplicateReplay   = errors.New("replay already submitted")
	ErrInvalidReplay     = errors.New("invalid replay structure")
	ErrUnsupportedFormat = errors.New("replay must be valid JSON")
	ErrInvalidOwner      = errors.New("invalid owner uid")
)
