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

// playerHandler serves the player-fixture routes an integration test
// uses to seed and inspect seats.
type playerHandler struct {
	*baseHandler
	players repository.PlayerRepository
}

func newPlayerHandler(players repository.PlayerRepository) *playerHandler {
	return &playerHandler{baseHandler: newBaseHandler(), players: players}
}

type addPlayerRequest struct {
	ID               string           `json:"id"`
	IsBot            bool             `json:"isBot"`
	BotConfig        *model.BotConfig `json:"botConfig,omitempty"`
	CreatedAtUnixSec int64            `json:"createdAtUnixSec"`
}

// AddPlayer handles POST /api/v1/games/{gameId}/players.
func (h *playerHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	log := logger.Get()
	ctx := r.Context()
	gameID := mux.Vars(r)["gameId"]

	var req addPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	player := model.Player{
		ID:               req.ID,
		GameID:           gameID,
		IsBot:            req.IsBot,
		BotConfig:        req.BotConfig,
		IsOnline:         !req.IsBot,
		CreatedAtUnixSec: req.CreatedAtUnixSec,
	}
	if err := h.players.AddPlayer(ctx, player); err != nil {
		log.Error("failed to add player", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "failed to add player")
		return
	}

	h.writeJSON(w, http.StatusCreated, player)
}

// GetPlayer handles GET /api/v1/games/{gameId}/players/{playerId}.
func (h *playerHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)

	player, err := h.players.GetPlayer(ctx, vars["gameId"], vars["playerId"])
	if err != nil {
		h.writeError(w, http.StatusNotFound, "player not found")
		return
	}
	h.writeJSON(w, http.StatusOK, player)
}
