package e2e_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replayhq/scoreserver/internal/api"
	"github.com/replayhq/scoreserver/internal/factory"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "scorectl-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/scorectl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithStdin(stdin string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Stdin = strings.NewReader(stdin)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	app, err := factory.New(factory.Config{Logger: logger})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:             logger,
		AccountService:     app.AccountService,
		GameService:        app.GameService,
		ScoreService:       app.ScoreService,
		LeaderboardService: app.LeaderboardService,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr: serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type accountResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Status   string `json:"status"`
}

type loginResponse struct {
	UserID   int64  `json:"uid"`
	Nickname string `json:"nickname"`
}

type submitResponse struct {
	ID        int64  `json:"id"`
	Digest    string `json:"digest"`
	Duplicate bool   `json:"duplicate"`
}

type leaderboardResponse struct {
	Game    string `json:"game"`
	LevelID int64  `json:"level_id"`
	Entries []struct {
		Rank    int     `json:"rank"`
		ScoreID int64   `json:"score_id"`
		OwnerID int64   `json:"uid"`
		Time    float64 `json:"time"`
	} `json:"entries"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func replayDoc(uid int64, levelID int64, elapsed float64) string {
	return fmt.Sprintf(
		`{"player":{"uid":%d,"nickname":"p"},"info":{"level_id":%d,"score":1200,"time":%g},"replay":[[0,"right"],[35,"jump"]]}`,
		uid, levelID, elapsed,
	)
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_AccountCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Register
	output, err := cli.run("account", "register",
		"--user", "alice", "--nick", "Alice",
		"--email", "alice@example.com", "--pass", "hunter2")
	require.NoError(t, err, "output: %s", output)

	var acct accountResponse
	require.NoError(t, json.Unmarshal([]byte(output), &acct))
	assert.Equal(t, "alice", acct.Username)
	assert.Equal(t, "unverified", acct.Status)

	// Login
	output, err = cli.run("account", "login", "--user", "alice", "--pass", "hunter2")
	require.NoError(t, err, "output: %s", output)

	var login loginResponse
	require.NoError(t, json.Unmarshal([]byte(output), &login))
	assert.Equal(t, acct.ID, login.UserID)
	assert.Equal(t, "Alice", login.Nickname)

	// Get
	output, err = cli.run("account", "get", fmt.Sprintf("%d", acct.ID))
	require.NoError(t, err, "output: %s", output)

	var fetched accountResponse
	require.NoError(t, json.Unmarshal([]byte(output), &fetched))
	assert.Equal(t, acct.Username, fetched.Username)

	// Bad login fails with a non-zero exit
	output, err = cli.run("account", "login", "--user", "alice", "--pass", "wrong")
	assert.Error(t, err)
	assert.Contains(t, output, "INVALID_CREDENTIALS")
}

func TestCLI_ScoreFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Register a player and a game
	output, err := cli.run("account", "register",
		"--user", "alice", "--nick", "Alice",
		"--email", "alice@example.com", "--pass", "hunter2")
	require.NoError(t, err, "output: %s", output)

	var acct accountResponse
	require.NoError(t, json.Unmarshal([]byte(output), &acct))

	output, err = cli.run("game", "register", "platformer", "--display-name", "Platformer")
	require.NoError(t, err, "output: %s", output)

	// Submit a replay via stdin
	output, err = cli.runWithStdin(replayDoc(acct.ID, 3, 512.5), "score", "submit", "platformer", "--uid", fmt.Sprint(acct.ID))
	require.NoError(t, err, "output: %s", output)

	var first submitResponse
	require.NoError(t, json.Unmarshal([]byte(output), &first))
	assert.False(t, first.Duplicate)

	// Resubmitting the identical replay reports the duplicate
	output, err = cli.runWithStdin(replayDoc(acct.ID, 3, 512.5), "score", "submit", "platformer", "--uid", fmt.Sprint(acct.ID))
	require.NoError(t, err, "output: %s", output)

	var retry submitResponse
	require.NoError(t, json.Unmarshal([]byte(output), &retry))
	assert.True(t, retry.Duplicate)
	assert.Equal(t, first.ID, retry.ID)

	// A faster run ranks first on the leaderboard
	output, err = cli.runWithStdin(replayDoc(acct.ID, 3, 400), "score", "submit", "platformer", "--uid", fmt.Sprint(acct.ID))
	require.NoError(t, err, "output: %s", output)

	var faster submitResponse
	require.NoError(t, json.Unmarshal([]byte(output), &faster))

	output, err = cli.run("leaderboard", "platformer", "--level", "3")
	require.NoError(t, err, "output: %s", output)

	var board leaderboardResponse
	require.NoError(t, json.Unmarshal([]byte(output), &board))
	require.Len(t, board.Entries, 2)
	assert.Equal(t, faster.ID, board.Entries[0].ScoreID)
	assert.Equal(t, 400.0, board.Entries[0].Time)

	// Fetch the recorded score
	output, err = cli.run("score", "get", "platformer", fmt.Sprintf("%d", first.ID))
	require.NoError(t, err, "output: %s", output)
	assert.Contains(t, output, first.Digest)
}
