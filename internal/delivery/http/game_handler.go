package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ironroute-backend/internal/logger"
	"ironroute-backend/internal/repository"
)

// SchedulerStatusProvider is the subset of internal/scheduler.Scheduler
// this handler depends on, kept narrow so the http package never
// imports scheduler's full dependency graph for a read-only status
// check.
type SchedulerStatusProvider interface {
	IsPending(gameID string) bool
	IsQueued(gameID string) bool
}

// GameHandler serves read-only game and player status.
type GameHandler struct {
	games     repository.GameRepository
	players   repository.PlayerRepository
	scheduler SchedulerStatusProvider
}

// NewGameHandler builds a GameHandler.
func NewGameHandler(games repository.GameRepository, players repository.PlayerRepository, scheduler SchedulerStatusProvider) *GameHandler {
	return &GameHandler{games: games, players: players, scheduler: scheduler}
}

// GetGame handles GET /api/v1/games/:gameId.
func (h *GameHandler) GetGame(c *gin.Context) {
	gameID := c.Param("gameId")

	game, err := h.games.Get(c.Request.Context(), gameID)
	if err != nil {
		logger.Get().Warn("game not found", zap.String("game_id", gameID), zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"message": "game not found"})
		return
	}
	c.JSON(http.StatusOK, game)
}

// ListPlayers handles GET /api/v1/games/:gameId/players.
func (h *GameHandler) ListPlayers(c *gin.Context) {
	gameID := c.Param("gameId")

	players, err := h.players.ListPlayers(c.Request.Context(), gameID)
	if err != nil {
		logger.Get().Error("failed to list players", zap.String("game_id", gameID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list players"})
		return
	}
	c.JSON(http.StatusOK, players)
}

// SchedulerStatus handles GET /api/v1/games/:gameId/scheduler, reporting
// whether a bot turn is currently pending or queued behind a human
// reconnect (spec.md §4.8). This state lives only in the server
// process's scheduler; cmd/botctl does not report it.
func (h *GameHandler) SchedulerStatus(c *gin.Context) {
	gameID := c.Param("gameId")
	c.JSON(http.StatusOK, gin.H{
		"gameId":  gameID,
		"pending": h.scheduler.IsPending(gameID),
		"queued":  h.scheduler.IsQueued(gameID),
	})
}
