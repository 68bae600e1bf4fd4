package handler

import (
	"encoding/json"
	"net/http"

	"github.com/replayhq/scoreserver/internal/api/request"
	"github.com/replayhq/scoreserver/internal/api/response"
	"github.com/replayhq/scoreserver/internal/services/game"
)

// GameHandler handles game catalog endpoints
type GameHandler struct {
	games *game.Service
}

// NewGameHandler creates a new game handler
func NewGameHandler(games *game.Service) *GameHandler {
	return &GameHandler{
		games: games,
	}
}

// Register handles POST /api/v1/games
func (h *GameHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Name == "" {
		WriteError(w, NewInvalidRequestError("name is required"))
		return
	}

	registered, err := h.games.Register(r.Context(), req.Name, req.DisplayName)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.GameFromModel(registered))
}

// List handles GET /api/v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.games.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameListFromModels(games))
}
