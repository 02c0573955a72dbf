package testserver

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"ironroute-backend/internal/logger"
	"ironroute-backend/internal/model"
	"ironroute-backend/internal/repository"
)

// gameHandler serves the game-fixture routes an integration test uses
// to seed and inspect a game's state.
type gameHandler struct {
	*baseHandler
	games repository.GameRepository
}

func newGameHandler(games repository.GameRepository) *gameHandler {
	return &gameHandler{baseHandler: newBaseHandler(), games: games}
}

type createGameRequest struct {
	ID        string `json:"id"`
	SeatCount int    `json:"seatCount"`
}

// CreateGame handles POST /api/v1/games.
func (h *gameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	log := logger.Get()
	ctx := r.Context()

	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	game := model.Game{ID: req.ID, Status: model.GameStatusActive, SeatCount: req.SeatCount}
	if err := h.games.Create(ctx, game); err != nil {
		log.Error("failed to create game", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "failed to create game")
		return
	}

	h.writeJSON(w, http.StatusCreated, game)
}

// GetGame handles GET /api/v1/games/{gameId}.
func (h *gameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	gameID := mux.Vars(r)["gameId"]

	game, err := h.games.Get(ctx, gameID)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "game not found")
		return
	}
	h.writeJSON(w, http.StatusOK, game)
}
