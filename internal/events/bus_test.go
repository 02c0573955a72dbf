package events_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ironroute-backend/internal/events"
)

func TestInMemoryBus_PublishDeliversToSubscriber(t *testing.T) {
	bus := events.NewInMemoryBus(2, 10)
	defer bus.Close()

	var mu sync.Mutex
	var received events.Event
	done := make(chan struct{})

	bus.Subscribe(events.TypeTurnChange, func(ctx context.Context, e events.Event) error {
		mu.Lock()
		received = e
		mu.Unlock()
		close(done)
		return nil
	})

	evt := events.NewTurnChangeEvent("game-1", 0, "player-1")
	require.NoError(t, bus.Publish(context.Background(), evt))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener was never invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, received)
	assert.Equal(t, events.TypeTurnChange, received.GetType())
	assert.Equal(t, "game-1", received.GetGameID())
}

func TestInMemoryBus_NoSubscribersIsNotAnError(t *testing.T) {
	bus := events.NewInMemoryBus(1, 10)
	defer bus.Close()

	err := bus.Publish(context.Background(), events.NewAiThinkingEvent("g", "p"))
	assert.NoError(t, err)
}

func TestInMemoryBus_PublishAfterCloseErrors(t *testing.T) {
	bus := events.NewInMemoryBus(1, 10)
	require.NoError(t, bus.Close())

	err := bus.Publish(context.Background(), events.NewAiThinkingEvent("g", "p"))
	assert.ErrorIs(t, err, events.ErrEventBusClosed)
}
