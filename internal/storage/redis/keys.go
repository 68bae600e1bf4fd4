package redis

import (
	"fmt"
	"strings"

	"github.com/replayhq/scoreserver/internal/model"
)

// Key prefix for all score-server data
const keyPrefix = "scoresrv"

// Key generation functions for each entity type

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%d", keyPrefix, id)
}

// userSeqKey returns the Redis key for the user id sequence
func userSeqKey() string {
	return fmt.Sprintf("%s:seq:user", keyPrefix)
}

// usernameIndexKey returns the Redis key for the username -> uid index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// nicknameIndexKey returns the Redis key for the nickname -> uid index
func nicknameIndexKey(nickname string) string {
	return fmt.Sprintf("%s:idx:nickname:%s", keyPrefix, nickname)
}

// emailIndexKey returns the Redis key for the email -> uid index.
// Emails are compared case-insensitively, so the key is lowercased.
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, strings.ToLower(email))
}

// gameKey returns the Redis key for a catalog entry
func gameKey(name string) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, name)
}

// catalogKey returns the Redis key for the LIST of game names in
// registration order
func catalogKey() string {
	return fmt.Sprintf("%s:games", keyPrefix)
}

// scoreKey returns the Redis key for a score record in a game's ledger
func scoreKey(game string, id model.ReplayID) string {
	return fmt.Sprintf("%s:replay:%s:%d", keyPrefix, game, id)
}

// scoreSeqKey returns the Redis key for a game's score id sequence
func scoreSeqKey(game string) string {
	return fmt.Sprintf("%s:seq:replay:%s", keyPrefix, game)
}

// digestIndexKey returns the Redis key for the digest -> score id index
func digestIndexKey(game, digest string) string {
	return fmt.Sprintf("%s:idx:digest:%s:%s", keyPrefix, game, digest)
}

// leaderboardKey returns the Redis key for the sorted set ranking one
// level of one game by elapsed time
func leaderboardKey(game string, levelID int64) string {
	return fmt.Sprintf("%s:lb:%s:%d", keyPrefix, game, levelID)
}

// leaderboardMember renders a score id as a fixed-width sorted-set member,
// so that ties on the score (elapsed time) fall back to insertion order
// rather than to lexicographic ordering of variable-width numbers
func leaderboardMember(id model.ReplayID) string {
	return fmt.Sprintf("%020d", id)
}
