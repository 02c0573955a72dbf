package websocket

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"ironroute-backend/internal/events"
	"ironroute-backend/internal/logger"
)

// Hub maintains active WebSocket connections grouped by game and fans
// out the downstream events named in spec.md §6 (state:patch,
// track:updated, ai:thinking, ai:turn-complete) to every connection
// subscribed to the event's game. Grounded on the teacher's
// internal/delivery/websocket/hub.go connection bookkeeping, adapted
// from per-action broadcast to bus-driven fan-out.
type Hub struct {
	connections     map[*Connection]bool
	gameConnections map[string]map[*Connection]bool

	Register   chan *Connection
	Unregister chan *Connection
	Reconnect  chan InboundMessage

	bus events.Bus

	mu     sync.RWMutex
	logger *zap.Logger
}

// NewHub creates a Hub and subscribes it to bus's downstream events
// immediately; Run handles connection registration afterwards.
func NewHub(bus events.Bus) *Hub {
	h := &Hub{
		connections:     make(map[*Connection]bool),
		gameConnections: make(map[string]map[*Connection]bool),
		Register:        make(chan *Connection),
		Unregister:      make(chan *Connection),
		Reconnect:       make(chan InboundMessage, 16),
		bus:             bus,
		logger:          logger.Get(),
	}

	bus.Subscribe(events.TypeStatePatch, h.onStatePatch)
	bus.Subscribe(events.TypeTrackUpdated, h.onTrackUpdated)
	bus.Subscribe(events.TypeAiThinking, h.onAiThinking)
	bus.Subscribe(events.TypeAiTurnComplete, h.onAiTurnComplete)
	return h
}

// Run owns connection registration/unregistration and reconnect
// republication until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("starting websocket hub")

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("websocket hub stopping due to context cancellation")
			h.closeAllConnections()
			return

		case connection := <-h.Register:
			h.registerConnection(connection)

		case connection := <-h.Unregister:
			h.unregisterConnection(connection)

		case msg := <-h.Reconnect:
			h.handleReconnect(ctx, msg.GameID, msg.UserID)
		}
	}
}

func (h *Hub) registerConnection(connection *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[connection] = true
	if h.gameConnections[connection.GameID] == nil {
		h.gameConnections[connection.GameID] = make(map[*Connection]bool)
	}
	h.gameConnections[connection.GameID][connection] = true

	h.logger.Info("connection registered",
		zap.String("connection_id", connection.ID),
		zap.String("game_id", connection.GameID))
}

func (h *Hub) unregisterConnection(connection *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.connections[connection]; !ok {
		return
	}
	delete(h.connections, connection)
	close(connection.Send)

	if gameConns, exists := h.gameConnections[connection.GameID]; exists {
		delete(gameConns, connection)
		if len(gameConns) == 0 {
			delete(h.gameConnections, connection.GameID)
		}
	}

	h.logger.Info("connection unregistered",
		zap.String("connection_id", connection.ID),
		zap.String("game_id", connection.GameID))
}

// handleReconnect republishes player:reconnect onto the bus so the
// scheduler can replay any queued bot turn (spec.md §4.8
// onHumanReconnect).
func (h *Hub) handleReconnect(ctx context.Context, gameID, userID string) {
	if gameID == "" || userID == "" {
		return
	}
	if err := h.bus.Publish(ctx, events.NewPlayerReconnectEvent(gameID, userID)); err != nil {
		h.logger.Error("failed to republish player:reconnect", zap.Error(err))
	}
}

func (h *Hub) onStatePatch(ctx context.Context, event events.Event) error {
	payload, ok := event.GetPayload().(events.StatePatchPayload)
	if !ok {
		return nil
	}
	h.broadcastToGame(payload.GameID, OutboundMessage{Type: events.TypeStatePatch, GameID: payload.GameID, Payload: payload})
	return nil
}

func (h *Hub) onTrackUpdated(ctx context.Context, event events.Event) error {
	payload, ok := event.GetPayload().(events.TrackUpdatedPayload)
	if !ok {
		return nil
	}
	h.broadcastToGame(payload.GameID, OutboundMessage{Type: events.TypeTrackUpdated, GameID: payload.GameID, Payload: payload})
	return nil
}

func (h *Hub) onAiThinking(ctx context.Context, event events.Event) error {
	payload, ok := event.GetPayload().(events.AiThinkingPayload)
	if !ok {
		return nil
	}
	h.broadcastToGame(payload.GameID, OutboundMessage{Type: events.TypeAiThinking, GameID: payload.GameID, Payload: payload})
	return nil
}

func (h *Hub) onAiTurnComplete(ctx context.Context, event events.Event) error {
	payload, ok := event.GetPayload().(events.AiTurnCompletePayload)
	if !ok {
		return nil
	}
	h.broadcastToGame(payload.GameID, OutboundMessage{Type: events.TypeAiTurnComplete, GameID: payload.GameID, Payload: payload})
	return nil
}

// broadcastToGame sends message to every connection registered under
// gameID.
func (h *Hub) broadcastToGame(gameID string, message OutboundMessage) {
	h.mu.RLock()
	gameConns := h.gameConnections[gameID]
	conns := make([]*Connection, 0, len(gameConns))
	for c := range gameConns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, connection := range conns {
		connection.SendMessage(message)
	}

	h.logger.Debug("message broadcast to game",
		zap.String("game_id", gameID),
		zap.String("message_type", message.Type),
		zap.Int("connection_count", len(conns)))
}

func (h *Hub) closeAllConnections() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for connection := range h.connections {
		close(connection.Send)
		connection.Conn.Close()
	}

	h.logger.Info("all connections closed")
}
