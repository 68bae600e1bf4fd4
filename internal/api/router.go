package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/replayhq/scoreserver/internal/api/handler"
	apimiddleware "github.com/replayhq/scoreserver/internal/api/middleware"
	"github.com/replayhq/scoreserver/internal/middleware"
	"github.com/replayhq/scoreserver/internal/services/account"
	"github.com/replayhq/scoreserver/internal/services/game"
	"github.com/replayhq/scoreserver/internal/services/leaderboard"
	"github.com/replayhq/scoreserver/internal/services/score"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger             *slog.Logger
	AccountService     *account.Service
	GameService        *game.Service
	ScoreService       *score.Service
	LeaderboardService *leaderboard.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	accountHandler := handler.NewAccountHandler(cfg.AccountService)
	gameHandler := handler.NewGameHandler(cfg.GameService)
	scoreHandler := handler.NewScoreHandler(cfg.ScoreService, cfg.LeaderboardService)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(apimiddleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Account routes
	api.HandleFunc("/accounts", accountHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/accounts/login", accountHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/accounts/{id}", accountHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{id}", accountHandler.Modify).Methods(http.MethodPatch)

	// Game catalog routes
	api.HandleFunc("/games", gameHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/games", gameHandler.List).Methods(http.MethodGet)

	// Score routes
	api.HandleFunc("/games/{game}/scores", scoreHandler.Submit).Methods(http.MethodPost)
	api.HandleFunc("/games/{game}/scores/{id}", scoreHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/games/{game}/leaderboard", scoreHandler.Leaderboard).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
