// Package http is the admin/read HTTP surface named in SPEC_FULL.md §2:
// game status, audit query, health, and prometheus metrics. Grounded on
// the teacher's cmd/server/main.go gin wiring (gin.Default(), a
// /api/v1 route group, a dedicated health endpoint), generalized from
// Terraforming Mars game/corporation routes to IronRoute game/audit
// routes, and on internal/middleware for request logging and recovery.
package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	ironroutemiddleware "ironroute-backend/internal/middleware"
)

// NewRouter builds the gin engine serving the admin/read API.
func NewRouter(gameHandler *GameHandler, auditHandler *AuditHandler) *gin.Engine {
	r := gin.New()
	r.Use(ironroutemiddleware.RequestID())
	r.Use(ironroutemiddleware.ZapLogger())
	r.Use(ironroutemiddleware.ZapRecovery())

	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"http://localhost:3000"}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "ironroute-backend"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		api.GET("/games/:gameId", gameHandler.GetGame)
		api.GET("/games/:gameId/players", gameHandler.ListPlayers)
		api.GET("/games/:gameId/scheduler", gameHandler.SchedulerStatus)

		api.GET("/games/:gameId/audits", auditHandler.ListForGame)
		api.GET("/games/:gameId/players/:playerId/audits/latest", auditHandler.Latest)
	}

	return r
}
