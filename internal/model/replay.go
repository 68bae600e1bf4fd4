package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// ReplayID identifies a score record within one game's ledger.
// IDs are sequential per game, starting at 1.
type ReplayID int64

// Score is one accepted replay submission in a game's ledger.
// Records are immutable once inserted.
type Score struct {
	ID        ReplayID
	OwnerID   UserID
	Payload   []byte // canonical JSON form of the replay payload
	Digest    string // hex SHA-256 of Payload, used for content-addressed dedup
	CreatedAt time.Time
}

// ReplayInfo holds the ranking fields extracted from a payload's info block
type ReplayInfo struct {
	LevelID int64
	Score   float64
	Time    float64
}

// Info extracts the ranking fields from the stored payload
func (s *Score) Info() (ReplayInfo, error) {
	payload, err := ParseReplay(s.Payload)
	if err != nil {
		return ReplayInfo{}, err
	}
	return ReplayInfoOf(payload)
}

// ParseReplay decodes raw bytes into a replay payload.
// Returns ErrUnsupportedFormat if the bytes are not valid JSON or the
// top level is not an object.
func ParseReplay(raw []byte) (map[string]any, error) {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, ErrUnsupportedFormat
	}
	if payload == nil {
		return nil, ErrUnsupportedFormat
	}
	return payload, nil
}

// ValidateReplay checks the structural shape of a replay payload:
// a player block with uid and nickname, an info block with level_id,
// score and time, and a replay action list. The contents of the action
// list are opaque to this layer.
func ValidateReplay(payload map[string]any) error {
	player, err := blockOf(payload, "player")
	if err != nil {
		return err
	}
	uid, ok := player["uid"].(float64)
	if !ok {
		return fmt.Errorf("%w: player.uid must be a number", ErrInvalidReplay)
	}
	if uid != math.Trunc(uid) {
		return fmt.Errorf("%w: player.uid must be an integer", ErrInvalidReplay)
	}
	if _, ok := player["nickname"].(string); !ok {
		return fmt.Errorf("%w: player.nickname must be a string", ErrInvalidReplay)
	}

	info, err := blockOf(payload, "info")
	if err != nil {
		return err
	}
	for _, key := range []string{"level_id", "score", "time"} {
		if _, ok := info[key].(float64); !ok {
			return fmt.Errorf("%w: info.%s must be a number", ErrInvalidReplay, key)
		}
	}

	actions, ok := payload["replay"]
	if !ok {
		return fmt.Errorf("%w: missing replay list", ErrInvalidReplay)
	}
	if _, ok := actions.([]any); !ok {
		return fmt.Errorf("%w: replay must be a list", ErrInvalidReplay)
	}

	return nil
}

// CanonicalReplay serializes a payload into its canonical form (object keys
// sorted, minimal whitespace) and returns the bytes alongside their hex
// SHA-256 digest. Two payloads with the same content always canonicalize
// to the same bytes, so the digest serves as a content address.
func CanonicalReplay(payload map[string]any) ([]byte, string, error) {
	// encoding/json sorts map keys, which gives a stable ordering at
	// every nesting level.
	canonical, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("canonicalizing replay: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return canonical, hex.EncodeToString(sum[:]), nil
}

// ReplayInfoOf extracts the ranking fields from a validated payload
func ReplayInfoOf(payload map[string]any) (ReplayInfo, error) {
	info, err := blockOf(payload, "info")
	if err != nil {
		return ReplayInfo{}, err
	}
	levelID, ok := info["level_id"].(float64)
	if !ok {
		return ReplayInfo{}, fmt.Errorf("%w: info.level_id must be a number", ErrInvalidReplay)
	}
	score, ok := info["score"].(float64)
	if !ok {
		return ReplayInfo{}, fmt.Errorf("%w: info.score must be a number", ErrInvalidReplay)
	}
	elapsed, ok := info["time"].(float64)
	if !ok {
		return ReplayInfo{}, fmt.Errorf("%w: info.time must be a number", ErrInvalidReplay)
	}
	return ReplayInfo{
		LevelID: int64(levelID),
		Score:   score,
		Time:    elapsed,
	}, nil
}

func blockOf(payload map[string]any, name string) (map[string]any, error) {
	value, ok := payload[name]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s block", ErrInvalidReplay, name)
	}
	block, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be an object", ErrInvalidReplay, name)
	}
	return block, nil
}
