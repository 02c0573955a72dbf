package feasibility_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ironroute-backend/internal/feasibility"
	"ironroute-backend/internal/model"
	"ironroute-backend/internal/repository"
	"ironroute-backend/internal/snapshot"
	"ironroute-backend/internal/topology"
)

func buildSnapshot(t *testing.T, mutate func(*model.Player)) *snapshot.WorldSnapshot {
	t.Helper()
	ctx := context.Background()

	points := []model.Point{
		{Coord: model.Coord{Row: 0, Col: 0}, Terrain: model.TerrainClear, Name: "CityA"},
		{Coord: model.Coord{Row: 0, Col: 1}, Terrain: model.TerrainMediumCity, Name: "CityB"},
	}
	topo := topology.New(points, nil)

	games := repository.NewInMemoryGameRepository(nil)
	players := repository.NewInMemoryPlayerRepository(nil)
	tracks := repository.NewInMemoryTrackRepository(nil)
	loads := repository.NewInMemoryLoadRepository(map[string][]model.LoadState{
		"g1": {{Type: model.LoadCoal, Total: 10, Available: 10, ProducingCities: []string{"CityA"}}},
	})

	require.NoError(t, games.Create(ctx, model.Game{ID: "g1", Status: model.GameStatusActive, SeatCount: 1}))

	p := model.Player{
		ID:        "bot1",
		GameID:    "g1",
		Money:     50,
		TrainType: model.TrainFreight,
		Train: model.TrainState{
			Position:     &model.Coord{Row: 0, Col: 0},
			CarriedLoads: []model.LoadType{model.LoadCoal},
		},
		Hand: []model.DemandCard{{ID: 42, Demands: [3]model.Demand{
			{DestinationCity: "CityB", LoadType: model.LoadCoal, Payment: 15},
		}}},
	}
	if mutate != nil {
		mutate(&p)
	}
	require.NoError(t, players.AddPlayer(ctx, p))
	require.NoError(t, tracks.AppendSegments(ctx, "g1", "bot1", []model.TrackSegment{
		{GameID: "g1", PlayerID: "bot1", A: model.Coord{Row: 0, Col: 0}, B: model.Coord{Row: 0, Col: 1}, Cost: 3},
	}, 3))

	asm := snapshot.NewAssembler(topo, games, players, tracks, loads)
	snap, err := asm.Capture(ctx, "g1", "bot1")
	require.NoError(t, err)
	return snap
}

func TestValidateDelivery_Succeeds(t *testing.T) {
	snap := buildSnapshot(t, nil)
	svc := feasibility.NewService()
	result := svc.ValidateDelivery(snap, 42, 0)
	assert.True(t, result.Feasible)
}

func TestValidateDelivery_FailsWhenLoadNotCarried(t *testing.T) {
	snap := buildSnapshot(t, func(p *model.Player) { p.Train.CarriedLoads = nil })
	svc := feasibility.NewService()
	result := svc.ValidateDelivery(snap, 42, 0)
	assert.False(t, result.Feasible)
	assert.Equal(t, "required load not carried", result.Reason)
}

func TestValidateDelivery_FailsOnUnknownCard(t *testing.T) {
	snap := buildSnapshot(t, nil)
	svc := feasibility.NewService()
	result := svc.ValidateDelivery(snap, 999, 0)
	assert.False(t, result.Feasible)
}

func TestValidateDelivery_FailsWhenDestinationNotConnected(t *testing.T) {
	snap := buildSnapshot(t, func(p *model.Player) {
		p.Hand[0].Demands[0].DestinationCity = "Nowhere"
	})
	svc := feasibility.NewService()
	result := svc.ValidateDelivery(snap, 42, 0)
	assert.False(t, result.Feasible)
	assert.Equal(t, "destination city not a node in the bot's track graph", result.Reason)
}

func TestValidatePickup_Succeeds(t *testing.T) {
	snap := buildSnapshot(t, func(p *model.Player) { p.Train.CarriedLoads = nil })
	svc := feasibility.NewService()
	result := svc.ValidatePickup(snap, model.LoadCoal, "CityA")
	assert.True(t, result.Feasible)
}

func TestValidatePickup_FailsAtCapacity(t *testing.T) {
	snap := buildSnapshot(t, func(p *model.Player) {
		p.Train.CarriedLoads = []model.LoadType{model.LoadCoal, model.LoadWheat}
	})
	svc := feasibility.NewService()
	result := svc.ValidatePickup(snap, model.LoadWine, "CityA")
	assert.False(t, result.Feasible)
	assert.Equal(t, "carried loads at capacity", result.Reason)
}

func TestValidateBuild_FailsOverBudget(t *testing.T) {
	snap := buildSnapshot(t, nil)
	svc := feasibility.NewService()
	segs := []model.TrackSegment{{Cost: 18}}
	result := svc.ValidateBuild(snap, segs)
	assert.False(t, result.Feasible)
	assert.Equal(t, "exceeds per-turn build budget", result.Reason)
}

func TestValidateBuild_FailsOnEmptyList(t *testing.T) {
	snap := buildSnapshot(t, nil)
	svc := feasibility.NewService()
	result := svc.ValidateBuild(snap, nil)
	assert.False(t, result.Feasible)
}

func TestValidateUpgrade_FailsWhenBuiltThisTurn(t *testing.T) {
	snap := buildSnapshot(t, nil)
	svc := feasibility.NewService()
	result := svc.ValidateUpgrade(snap, model.TrainFastFreight)
	assert.False(t, result.Feasible)
	assert.Equal(t, "cannot upgrade after building track this turn", result.Reason)
}

func TestValidateUpgrade_FailsOnNoEdge(t *testing.T) {
	snap := buildSnapshot(t, func(p *model.Player) { p.TrainType = model.TrainSuperfreight })
	svc := feasibility.NewService()
	result := svc.ValidateUpgrade(snap, model.TrainFreight)
	assert.False(t, result.Feasible)
	assert.Equal(t, "no upgrade edge to target", result.Reason)
}
