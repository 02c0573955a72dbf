package websocket

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"ironroute-backend/internal/logger"
)

// OutboundMessage is the envelope written to a client: one of the
// downstream events named in spec.md §6 (ai:thinking, ai:turn-complete,
// state:patch, track:updated).
type OutboundMessage struct {
	Type    string      `json:"type"`
	GameID  string      `json:"gameId"`
	Payload interface{} `json:"payload"`
}

// InboundMessage is the envelope a client sends upstream. The only
// message type this transport ingests is player:reconnect (spec.md §6);
// turn:change originates server-side and never arrives over a socket.
type InboundMessage struct {
	Type   string `json:"type"`
	GameID string `json:"gameId"`
	UserID string `json:"userId"`
}

// Connection represents one client socket, subscribed to a single
// game's broadcasts.
type Connection struct {
	ID     string
	GameID string
	UserID string
	Conn   *websocket.Conn
	Send   chan OutboundMessage
	Hub    *Hub
	mu     sync.RWMutex
	logger *zap.Logger
}

// NewConnection creates a new WebSocket connection bound to gameID.
func NewConnection(id, gameID, userID string, conn *websocket.Conn, hub *Hub) *Connection {
	return &Connection{
		ID:     id,
		GameID: gameID,
		UserID: userID,
		Conn:   conn,
		Send:   make(chan OutboundMessage, 64),
		Hub:    hub,
		logger: logger.Get(),
	}
}

// ReadPump reads inbound messages until the socket closes or ctx ends,
// handing player:reconnect messages to the hub for republication onto
// the event bus.
func (c *Connection) ReadPump(ctx context.Context) {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("connection read pump stopping due to context cancellation", zap.String("connection_id", c.ID))
			return
		default:
			var msg InboundMessage
			if err := c.Conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					c.logger.Error("websocket read error", zap.Error(err), zap.String("connection_id", c.ID))
				} else {
					c.logger.Info("websocket connection closed", zap.String("connection_id", c.ID))
				}
				return
			}

			c.logger.Debug("received websocket message",
				zap.String("connection_id", c.ID),
				zap.String("message_type", msg.Type))

			if msg.Type == "player:reconnect" {
				select {
				case c.Hub.Reconnect <- msg:
				default:
					c.logger.Warn("hub reconnect channel is full", zap.String("connection_id", c.ID))
				}
			}
		}
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Connection) WritePump(ctx context.Context) {
	defer c.Conn.Close()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("connection write pump stopping due to context cancellation", zap.String("connection_id", c.ID))
			return
		case message, ok := <-c.Send:
			if !ok {
				c.logger.Info("send channel closed", zap.String("connection_id", c.ID))
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			c.logger.Debug("sending websocket message",
				zap.String("connection_id", c.ID),
				zap.String("message_type", message.Type))

			if err := c.Conn.WriteJSON(message); err != nil {
				c.logger.Error("websocket write error", zap.Error(err), zap.String("connection_id", c.ID))
				return
			}
		}
	}
}

// SendMessage queues message for delivery to this connection, closing
// the connection's send channel if the client isn't draining fast
// enough rather than blocking the broadcaster.
func (c *Connection) SendMessage(message OutboundMessage) {
	select {
	case c.Send <- message:
	default:
		c.logger.Warn("connection send channel is full, closing connection", zap.String("connection_id", c.ID))
		close(c.Send)
	}
}
