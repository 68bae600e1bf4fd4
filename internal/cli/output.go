package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Account:
		o.printAccount(v)
	case LoginResult:
		o.printLoginResult(v)
	case Game:
		o.printGame(v)
	case GameList:
		o.printGameList(v)
	case SubmitResult:
		o.printSubmitResult(v)
	case Score:
		o.printScore(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Account response type (matches API)
type Account struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Nickname  string    `json:"nickname"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginResult response type
type LoginResult struct {
	UserID   int64  `json:"uid"`
	Nickname string `json:"nickname"`
	Upgraded bool   `json:"upgraded"`
}

// Game response type
type Game struct {
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// GameList response type
type GameList struct {
	Games []Game `json:"games"`
}

// SubmitResult response type
type SubmitResult struct {
	ID        int64  `json:"id"`
	Digest    string `json:"digest"`
	Duplicate bool   `json:"duplicate"`
}

// Score response type
type Score struct {
	ID        int64           `json:"id"`
	OwnerID   int64           `json:"uid"`
	Digest    string          `json:"digest"`
	Replay    json.RawMessage `json:"replay"`
	CreatedAt time.Time       `json:"created_at"`
}

// LeaderboardEntry response type
type LeaderboardEntry struct {
	Rank    int             `json:"rank"`
	ScoreID int64           `json:"score_id"`
	OwnerID int64           `json:"uid"`
	Score   float64         `json:"score"`
	Time    float64         `json:"time"`
	Replay  json.RawMessage `json:"replay"`
}

// Leaderboard response type
type Leaderboard struct {
	Game    string             `json:"game"`
	LevelID int64              `json:"level_id"`
	Entries []LeaderboardEntry `json:"entries"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printAccount(a Account) {
	fmt.Printf("Account #%d\n", a.ID)
	fmt.Printf("  Username: %s\n", a.Username)
	fmt.Printf("  Nickname: %s\n", a.Nickname)
	fmt.Printf("  Email:    %s\n", a.Email)
	fmt.Printf("  Status:   %s\n", a.Status)
	fmt.Printf("  Created:  %s\n", a.CreatedAt.Format(time.RFC3339))
}

func (o *Output) printLoginResult(r LoginResult) {
	fmt.Printf("Logged in as %s (uid %d)\n", r.Nickname, r.UserID)
	if r.Upgraded {
		fmt.Println("Credential upgraded to current parameters")
	}
}

func (o *Output) printGame(g Game) {
	fmt.Printf("Game %s (%s)\n", g.Name, g.DisplayName)
}

func (o *Output) printGameList(l GameList) {
	if len(l.Games) == 0 {
		fmt.Println("No games registered")
		return
	}
	for _, g := range l.Games {
		fmt.Printf("%-20s %s\n", g.Name, g.DisplayName)
	}
}

func (o *Output) printSubmitResult(r SubmitResult) {
	if r.Duplicate {
		fmt.Printf("Already recorded as score #%d\n", r.ID)
	} else {
		fmt.Printf("Recorded score #%d\n", r.ID)
	}
	fmt.Printf("  Digest: %s\n", r.Digest)
}

func (o *Output) printScore(s Score) {
	fmt.Printf("Score #%d\n", s.ID)
	fmt.Printf("  Owner:   %d\n", s.OwnerID)
	fmt.Printf("  Digest:  %s\n", s.Digest)
	fmt.Printf("  Created: %s\n", s.CreatedAt.Format(time.RFC3339))
}

func (o *Output) printLeaderboard(l Leaderboard) {
	fmt.Printf("Leaderboard for %s, level %d\n", l.Game, l.LevelID)
	if len(l.Entries) == 0 {
		fmt.Println("  (no entries)")
		return
	}
	fmt.Printf("  %4s  %8s  %10s  %10s\n", "rank", "uid", "score", "time")
	for _, e := range l.Entries {
		fmt.Printf("  %4d  %8d  %10.1f  %10.3f\n", e.Rank, e.OwnerID, e.Score, e.Time)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Server status: %s\n", h.Status)
}
