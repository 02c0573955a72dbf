package http

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ironroute-backend/internal/audit"
	"ironroute-backend/internal/logger"
	"ironroute-backend/internal/repository"
)

// AuditHandler serves the StrategyAudit trail written by
// internal/audit.Sink, letting an operator see what a bot planned and
// why a plan was truncated (spec.md §7).
type AuditHandler struct {
	audits repository.AuditRepository
}

// NewAuditHandler builds an AuditHandler.
func NewAuditHandler(audits repository.AuditRepository) *AuditHandler {
	return &AuditHandler{audits: audits}
}

// ListForGame handles GET /api/v1/games/:gameId/audits.
func (h *AuditHandler) ListForGame(c *gin.Context) {
	gameID := c.Param("gameId")

	records, err := h.audits.ListForGame(c.Request.Context(), gameID)
	if err != nil {
		logger.Get().Error("failed to list audits", zap.String("game_id", gameID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list audits"})
		return
	}
	c.JSON(http.StatusOK, decodeRecords(records))
}

// Latest handles GET /api/v1/games/:gameId/players/:playerId/audits/latest.
func (h *AuditHandler) Latest(c *gin.Context) {
	gameID := c.Param("gameId")
	playerID := c.Param("playerId")

	record, ok := h.audits.Latest(c.Request.Context(), gameID, playerID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "no audit recorded for this player"})
		return
	}
	c.JSON(http.StatusOK, decodeRecord(*record))
}

func decodeRecords(records []repository.AuditRecord) []gin.H {
	out := make([]gin.H, len(records))
	for i, r := range records {
		out[i] = decodeRecord(r)
	}
	return out
}

func decodeRecord(record repository.AuditRecord) gin.H {
	var strategy audit.StrategyAudit
	if err := json.Unmarshal(record.Audit, &strategy); err != nil {
		logger.Get().Warn("failed to decode audit record", zap.Error(err))
		return gin.H{"gameId": record.GameID, "playerId": record.PlayerID, "turnNumber": record.TurnNumber}
	}
	return gin.H{
		"gameId":     record.GameID,
		"playerId":   record.PlayerID,
		"turnNumber": record.TurnNumber,
		"createdAt":  record.CreatedAt,
		"audit":      strategy,
	}
}
