package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ironroute-backend/internal/events"
)

func newTestConnection(id, gameID, userID string) *Connection {
	return &Connection{
		ID:     id,
		GameID: gameID,
		UserID: userID,
		Send:   make(chan OutboundMessage, 8),
	}
}

func TestHub_RegisterGroupsConnectionsByGame(t *testing.T) {
	bus := events.NewInMemoryBus(2, 16)
	defer bus.Close()
	h := NewHub(bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c1 := newTestConnection("c1", "g1", "u1")
	c2 := newTestConnection("c2", "g2", "u2")
	h.Register <- c1
	h.Register <- c2

	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return len(h.connections) == 2
	}, time.Second, time.Millisecond)

	h.mu.RLock()
	_, ok1 := h.gameConnections["g1"][c1]
	_, ok2 := h.gameConnections["g2"][c2]
	h.mu.RUnlock()
	assert.True(t, ok1)
	assert.True(t, ok2)
}

func TestHub_BroadcastsAiTurnCompleteOnlyToItsGame(t *testing.T) {
	bus := events.NewInMemoryBus(2, 16)
	defer bus.Close()
	h := NewHub(bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c1 := newTestConnection("c1", "g1", "u1")
	c2 := newTestConnection("c2", "g2", "u2")
	h.Register <- c1
	h.Register <- c2

	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return len(h.connections) == 2
	}, time.Second, time.Millisecond)

	require.NoError(t, bus.Publish(ctx, events.NewAiTurnCompleteEvent("g1", "bot1", "passed", "opportunist", nil)))

	require.Eventually(t, func() bool { return len(c1.Send) == 1 }, time.Second, time.Millisecond)
	assert.Empty(t, c2.Send)

	msg := <-c1.Send
	assert.Equal(t, events.TypeAiTurnComplete, msg.Type)
	assert.Equal(t, "g1", msg.GameID)
}

func TestHub_ReconnectRepublishesPlayerReconnect(t *testing.T) {
	bus := events.NewInMemoryBus(2, 16)
	defer bus.Close()
	h := NewHub(bus)

	received := make(chan events.PlayerReconnectPayload, 1)
	bus.Subscribe(events.TypePlayerReconnect, func(ctx context.Context, e events.Event) error {
		payload := e.GetPayload().(events.PlayerReconnectPayload)
		received <- payload
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	h.Reconnect <- InboundMessage{Type: "player:reconnect", GameID: "g1", UserID: "u1"}

	select {
	case payload := <-received:
		assert.Equal(t, "g1", payload.GameID)
		assert.Equal(t, "u1", payload.UserID)
	case <-time.After(time.Second):
		t.Fatal("player:reconnect was never republished")
	}
}

func TestHub_UnregisterRemovesFromGameIndex(t *testing.T) {
	bus := events.NewInMemoryBus(2, 16)
	defer bus.Close()
	h := NewHub(bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c1 := newTestConnection("c1", "g1", "u1")
	h.Register <- c1
	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return len(h.connections) == 1
	}, time.Second, time.Millisecond)

	h.Unregister <- c1
	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		_, ok := h.gameConnections["g1"]
		return !ok
	}, time.Second, time.Millisecond)
}
