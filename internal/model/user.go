package model

import "time"

// UserID uniquely identifies a user across the system
type UserID int64

// UserStatus is the coarse account state flag
type UserStatus string

// Valid user statuses
const (
	StatusActive     UserStatus = "active"
	StatusUnverified UserStatus = "unverified"
	StatusBanned     UserStatus = "banned"
	StatusDisabled   UserStatus = "disabled"
)

// Valid reports whether s is one of the known statuses
func (s UserStatus) Valid() bool {
	switch s {
	case StatusActive, StatusUnverified, StatusBanned, StatusDisabled:
		return true
	}
	return false
}

// User represents a registered account.
// Username, Nickname and Email are each globally unique; Email is stored
// in normalized form and compared case-insensitively.
type User struct {
	ID           UserID
	Username     string
	Nickname     string
	Email        string
	PasswordHash string // encoded argon2id credential; empty means no password set
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword reports whether the account has a credential set
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// CanAuthenticate reports whether the account's status permits login.
// Unverified accounts may log in; banned and disabled accounts may not.
func (u *User) CanAuthenticate() bool {
	return u.Status != StatusBanned && u.Status != StatusDisabled
}
