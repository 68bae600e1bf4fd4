package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/replayhq/scoreserver/internal/api/response"
	"github.com/replayhq/scoreserver/internal/model"
	"github.com/replayhq/scoreserver/internal/services/leaderboard"
	"github.com/replayhq/scoreserver/internal/services/score"
)

// maxReplayBytes caps how large a submitted replay document may be
const maxReplayBytes = 4 << 20

// ScoreHandler handles score submission and retrieval endpoints
type ScoreHandler struct {
	scores       *score.Service
	leaderboards *leaderboard.Service
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(scores *score.Service, leaderboards *leaderboard.Service) *ScoreHandler {
	return &ScoreHandler{
		scores:       scores,
		leaderboards: leaderboards,
	}
}

// Submit handles POST /api/v1/games/{game}/scores?uid=N. The body is
// the raw replay document; uid identifies the submitting account.
// Resubmitting an identical replay returns 200 with the existing
// record instead of creating a new one.
func (h *ScoreHandler) Submit(w http.ResponseWriter, r *http.Request) {
	game := mux.Vars(r)["game"]

	uid, err := strconv.ParseInt(r.URL.Query().Get("uid"), 10, 64)
	if err != nil || uid < 1 {
		WriteError(w, NewInvalidRequestError("uid query parameter is required"))
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxReplayBytes+1))
	if err != nil {
		WriteError(w, NewInvalidRequestError("unreadable request body"))
		return
	}
	if len(raw) > maxReplayBytes {
		WriteError(w, NewInvalidRequestError("replay document too large"))
		return
	}

	result, err := h.scores.Submit(r.Context(), game, model.UserID(uid), raw)
	if err != nil {
		WriteError(w, err)
		return
	}

	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	response.JSON(w, status, response.SubmitScoreFromResult(result))
}

// Get handles GET /api/v1/games/{game}/scores/{id}
func (h *ScoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	game := vars["game"]

	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil || id < 1 {
		WriteError(w, NewInvalidRequestError("invalid score id"))
		return
	}

	record, err := h.scores.Fetch(r.Context(), game, model.ReplayID(id))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ScoreFromModel(record))
}

// Leaderboard handles GET /api/v1/games/{game}/leaderboard?level=N
func (h *ScoreHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	game := mux.Vars(r)["game"]

	levelID, err := strconv.ParseInt(r.URL.Query().Get("level"), 10, 64)
	if err != nil {
		WriteError(w, NewInvalidRequestError("level query parameter is required"))
		return
	}

	entries, err := h.leaderboards.Fetch(r.Context(), game, levelID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromEntries(game, levelID, entries))
}
