package websocket

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"ironroute-backend/internal/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development - should be restricted in production
		return true
	},
}

// Handler upgrades incoming HTTP requests to WebSocket connections
// bound to a game and registers them with a Hub.
type Handler struct {
	hub    *Hub
	logger *zap.Logger
}

// NewHandler creates a new WebSocket handler.
func NewHandler(hub *Hub) *Handler {
	return &Handler{
		hub:    hub,
		logger: logger.Get(),
	}
}

// ServeWS handles WebSocket requests from clients. gameId and userId
// query parameters bind the connection to the game it should receive
// broadcasts for (spec.md §6).
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("gameId")
	userID := r.URL.Query().Get("userId")
	if gameID == "" || userID == "" {
		http.Error(w, "gameId and userId query parameters are required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection to WebSocket", zap.Error(err))
		return
	}

	connectionID := uuid.New().String()

	h.logger.Info("New WebSocket connection established",
		zap.String("connection_id", connectionID),
		zap.String("game_id", gameID),
		zap.String("user_id", userID),
		zap.String("remote_addr", r.RemoteAddr))

	connection := NewConnection(connectionID, gameID, userID, conn, h.hub)

	h.hub.Register <- connection

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))

	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	go connection.WritePump(ctx)
	go connection.ReadPump(ctx)

	go h.pingLoop(ctx, connection)
}

// pingLoop sends periodic ping messages to keep the connection alive
func (h *Handler) pingLoop(ctx context.Context, connection *Connection) {
	ticker := time.NewTicker(54 * time.Second) // Ping every 54 seconds
	defer ticker.Stop()
	
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			connection.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := connection.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.logger.Error("Failed to send ping message",
					zap.Error(err),
					zap.String("connection_id", connection.ID))
				return
			}
		}
	}
}