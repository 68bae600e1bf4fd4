package model

import (
	"regexp"
	"time"
)

// Game names become part of storage object names, so they are restricted
// to a strict identifier character set.
var gameNamePattern = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)

// Game represents one entry in the games catalog.
// The name is immutable once registered and maps 1:1 to a score ledger.
type Game struct {
	Name        string
	DisplayName string
	CreatedAt   time.Time
}

// ValidGameName reports whether name is safe to use as a ledger identifier
func ValidGameName(name string) bool {
	return gameNamePattern.MatchString(name)
}
