package testserver

import (
	"net/http/httptest"
	"sync"

	"go.uber.org/zap"

	"ironroute-backend/internal/events"
	"ironroute-backend/internal/logger"
	"ironroute-backend/internal/repository"
)

// TestServer is an httptest-backed harness exposing the mux fixture
// router over a real listener, for integration tests that need to
// drive the game/player repositories through HTTP rather than calling
// them directly. Grounded on the teacher's
// test/integration/test_server.go Start/Stop lifecycle, simplified from
// a manual *http.Server + health-poll loop to httptest.Server, which
// already guarantees the listener is ready before Start returns.
type TestServer struct {
	mu      sync.Mutex
	server  *httptest.Server
	started bool
	logger  *zap.Logger

	Bus     events.Bus
	Games   repository.GameRepository
	Players repository.PlayerRepository
}

// NewTestServer builds a TestServer wired to fresh in-memory
// repositories and event bus. The server is not listening until Start
// is called.
func NewTestServer() *TestServer {
	bus := events.NewInMemoryBus(2, 64)
	games := repository.NewInMemoryGameRepository(bus)
	players := repository.NewInMemoryPlayerRepository(bus)

	return &TestServer{
		logger:  logger.Get(),
		Bus:     bus,
		Games:   games,
		Players: players,
	}
}

// Start brings the listener up. Safe to call once; a second call is a
// no-op.
func (ts *TestServer) Start() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.started {
		return
	}
	ts.server = httptest.NewServer(newRouter(ts.Games, ts.Players))
	ts.started = true
}

// URL returns the base URL of the running server. Panics if Start has
// not been called.
func (ts *TestServer) URL() string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.server.URL
}

// Stop tears down the listener and closes the event bus.
func (ts *TestServer) Stop() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if !ts.started {
		return
	}
	ts.server.Close()
	if err := ts.Bus.Close(); err != nil {
		ts.logger.Warn("event bus close returned an error", zap.Error(err))
	}
	ts.started = false
}
