package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ironroutehttp "ironroute-backend/internal/delivery/http"
	"ironroute-backend/internal/events"
	"ironroute-backend/internal/model"
	"ironroute-backend/internal/repository"
)

type fakeScheduler struct {
	pending bool
	queued  bool
}

func (f fakeScheduler) IsPending(string) bool { return f.pending }
func (f fakeScheduler) IsQueued(string) bool  { return f.queued }

func TestGameHandler_GetGame_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	bus := events.NewInMemoryBus(1, 8)
	defer bus.Close()

	games := repository.NewInMemoryGameRepository(bus)
	players := repository.NewInMemoryPlayerRepository(bus)
	audits := repository.NewInMemoryAuditRepository()

	gh := ironroutehttp.NewGameHandler(games, players, fakeScheduler{})
	ah := ironroutehttp.NewAuditHandler(audits)
	router := ironroutehttp.NewRouter(gh, ah)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/games/missing", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
}

func TestGameHandler_SchedulerStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	bus := events.NewInMemoryBus(1, 8)
	defer bus.Close()

	games := repository.NewInMemoryGameRepository(bus)
	players := repository.NewInMemoryPlayerRepository(bus)
	audits := repository.NewInMemoryAuditRepository()
	require.NoError(t, games.Create(context.Background(), model.Game{ID: "g1", SeatCount: 2}))

	gh := ironroutehttp.NewGameHandler(games, players, fakeScheduler{pending: true})
	ah := ironroutehttp.NewAuditHandler(audits)
	router := ironroutehttp.NewRouter(gh, ah)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/games/g1/scheduler", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["pending"])
}

func TestAuditHandler_LatestNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	bus := events.NewInMemoryBus(1, 8)
	defer bus.Close()

	games := repository.NewInMemoryGameRepository(bus)
	players := repository.NewInMemoryPlayerRepository(bus)
	audits := repository.NewInMemoryAuditRepository()

	gh := ironroutehttp.NewGameHandler(games, players, fakeScheduler{})
	ah := ironroutehttp.NewAuditHandler(audits)
	router := ironroutehttp.NewRouter(gh, ah)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/games/g1/players/p1/audits/latest", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	bus := events.NewInMemoryBus(1, 8)
	defer bus.Close()

	games := repository.NewInMemoryGameRepository(bus)
	players := repository.NewInMemoryPlayerRepository(bus)
	audits := repository.NewInMemoryAuditRepository()

	gh := ironroutehttp.NewGameHandler(games, players, fakeScheduler{})
	ah := ironroutehttp.NewAuditHandler(audits)
	router := ironroutehttp.NewRouter(gh, ah)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
}
