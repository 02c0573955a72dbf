// Package testserver is a mux-routed harness used only by integration
// tests: a small net/http server backed by in-memory repositories, no
// planner/scheduler pipeline attached. Grounded on the teacher's
// test/integration/test_server.go and its mux-based
// internal/delivery/http/router.go, trimmed to the routes an
// integration test needs to seed and inspect game state.
package testserver

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"ironroute-backend/internal/logger"
)

// errorPayload is the JSON body written on handler failure.
type errorPayload struct {
	Message string `json:"message"`
}

// baseHandler provides the JSON response helpers shared by every
// testserver handler.
type baseHandler struct {
	logger *zap.Logger
}

func newBaseHandler() *baseHandler {
	return &baseHandler{logger: logger.Get()}
}

func (h *baseHandler) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode json response", zap.Error(err))
	}
}

func (h *baseHandler) writeError(w http.ResponseWriter, statusCode int, message string) {
	h.writeJSON(w, statusCode, errorPayload{Message: message})
}
