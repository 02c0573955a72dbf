package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ironroute-backend/internal/events"
	"ironroute-backend/internal/model"
	"ironroute-backend/internal/repository"
)

func TestGameRepository_AdvanceSeatPublishesTurnChange(t *testing.T) {
	bus := events.NewInMemoryBus(1, 10)
	defer bus.Close()

	received := make(chan events.Event, 1)
	bus.Subscribe(events.TypeTurnChange, func(ctx context.Context, e events.Event) error {
		received <- e
		return nil
	})

	repo := repository.NewInMemoryGameRepository(bus)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, model.Game{ID: "g1", Status: model.GameStatusActive, SeatCount: 2}))
	require.NoError(t, repo.AdvanceSeat(ctx, "g1", 1))

	g, err := repo.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, g.CurrentSeatIndex)

	select {
	case e := <-received:
		assert.Equal(t, "g1", e.GetGameID())
	default:
		t.Fatal("expected a turn:change event to be published")
	}
}

func TestGameRepository_AdvanceSeatOutOfRange(t *testing.T) {
	repo := repository.NewInMemoryGameRepository(nil)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, model.Game{ID: "g1", SeatCount: 2}))
	assert.Error(t, repo.AdvanceSeat(ctx, "g1", 5))
}

func TestPlayerRepository_SeatOrderIsCreatedAtAsc(t *testing.T) {
	repo := repository.NewInMemoryPlayerRepository(nil)
	ctx := context.Background()
	require.NoError(t, repo.AddPlayer(ctx, model.Player{ID: "p2", GameID: "g1", CreatedAtUnixSec: 200}))
	require.NoError(t, repo.AddPlayer(ctx, model.Player{ID: "p1", GameID: "g1", CreatedAtUnixSec: 100}))

	order, err := repo.SeatOrder(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, order)
}

func TestTrackRepository_AppendIsCumulative(t *testing.T) {
	repo := repository.NewInMemoryTrackRepository(nil)
	ctx := context.Background()

	seg := model.TrackSegment{GameID: "g1", PlayerID: "p1", A: model.Coord{Row: 1, Col: 1}, B: model.Coord{Row: 1, Col: 2}, Cost: 3}
	require.NoError(t, repo.AppendSegments(ctx, "g1", "p1", []model.TrackSegment{seg}, 3))
	require.NoError(t, repo.AppendSegments(ctx, "g1", "p1", []model.TrackSegment{seg}, 2))

	state, err := repo.Get(ctx, "g1", "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, state.TotalCost)
	assert.Equal(t, 5, state.TurnBuildCost)
	assert.Len(t, state.Segments, 2)

	require.NoError(t, repo.ResetTurnBuildCost(ctx, "g1", "p1"))
	state, err = repo.Get(ctx, "g1", "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, state.TurnBuildCost)
	assert.Equal(t, 5, state.TotalCost)
}

func TestLoadRepository_ConservationOfTokens(t *testing.T) {
	repo := repository.NewInMemoryLoadRepository(map[string][]model.LoadState{
		"g1": {{Type: model.LoadCoal, Total: 10, Available: 10}},
	})
	ctx := context.Background()

	require.NoError(t, repo.Take(ctx, "g1", model.LoadCoal))
	states, err := repo.GetAll(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 9, states[model.LoadCoal].Available)

	require.Error(t, repo.Take(ctx, "g1", model.LoadWheat), "unknown load type must fail, not silently succeed")
}

func TestDemandDeckRepository_DrawAndDiscard(t *testing.T) {
	repo := repository.NewInMemoryDemandDeckRepository(map[string][]model.DemandCard{
		"g1": {{ID: 1}, {ID: 2}},
	})

	card, ok := repo.Draw("g1")
	require.True(t, ok)
	assert.Equal(t, 1, card.ID)
	assert.Equal(t, 1, repo.Remaining("g1"))

	repo.Discard("g1", card)
	assert.Equal(t, 2, repo.Remaining("g1"))
}
