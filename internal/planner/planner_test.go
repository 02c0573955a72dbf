package planner_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ironroute-backend/internal/feasibility"
	"ironroute-backend/internal/model"
	"ironroute-backend/internal/pathfinder"
	"ironroute-backend/internal/planner"
	"ironroute-backend/internal/repository"
	"ironroute-backend/internal/snapshot"
	"ironroute-backend/internal/topology"
)

func buildDeliveryFixture(t *testing.T) (*topology.Topology, *snapshot.WorldSnapshot) {
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
	require.NoError(t, players.AddPlayer(ctx, model.Player{
		ID:        "bot1",
		GameID:    "g1",
		Money:     50,
		TrainType: model.TrainFreight,
		Train: model.TrainState{
			Position:          &model.Coord{Row: 0, Col: 0},
			RemainingMovement: 9,
			CarriedLoads:      []model.LoadType{model.LoadCoal},
		},
		Hand: []model.DemandCard{{ID: 42, Demands: [3]model.Demand{
			{DestinationCity: "CityB", LoadType: model.LoadCoal, Payment: 15},
		}}},
	}))
	require.NoError(t, tracks.AppendSegments(ctx, "g1", "bot1", []model.TrackSegment{
		{GameID: "g1", PlayerID: "bot1", A: model.Coord{Row: 0, Col: 0}, B: model.Coord{Row: 0, Col: 1}, Cost: 3},
	}, 3))

	asm := snapshot.NewAssembler(topo, games, players, tracks, loads)
	snap, err := asm.Capture(ctx, "g1", "bot1")
	require.NoError(t, err)
	return topo, snap
}

func newHardPlanner(topo *topology.Topology) *planner.Planner {
	pf := pathfinder.New(topo)
	fs := feasibility.NewService()
	return planner.New(topo, pf, fs, rand.New(rand.NewSource(1)))
}

func TestPlan_SelectsDeliveryWhenFeasible(t *testing.T) {
	topo, snap := buildDeliveryFixture(t)

	p := newHardPlanner(topo)
	plan := p.Plan(snap, model.BotConfig{Skill: model.SkillHard, Archetype: model.ArchetypeFreightOptimizer})

	require.NotEmpty(t, plan.Actions)
	assert.Equal(t, planner.OptionDeliver, plan.Actions[0].Kind)
	assert.Equal(t, 42, plan.Actions[0].CardID)

	require.NotEmpty(t, plan.FeasibleOptions, "the full scored candidate list must survive onto the plan for the audit trail")
	assert.Equal(t, planner.OptionDeliver, plan.FeasibleOptions[0].Kind)
	assert.Greater(t, plan.FeasibleOptions[0].Score, 0.0)
}

func TestPlan_PassesWhenNothingFeasible(t *testing.T) {
	points := []model.Point{
		{Coord: model.Coord{Row: 0, Col: 0}, Terrain: model.TerrainClear, Name: "Solo"},
	}
	topo := topology.New(points, nil)

	ctx := context.Background()
	games := repository.NewInMemoryGameRepository(nil)
	players := repository.NewInMemoryPlayerRepository(nil)
	tracks := repository.NewInMemoryTrackRepository(nil)
	loads := repository.NewInMemoryLoadRepository(nil)

	require.NoError(t, games.Create(ctx, model.Game{ID: "g1", Status: model.GameStatusActive, SeatCount: 1}))
	require.NoError(t, players.AddPlayer(ctx, model.Player{
		ID: "bot1", GameID: "g1", Money: 0, TrainType: model.TrainFreight,
		Train: model.TrainState{RemainingMovement: 9},
	}))
	asm := snapshot.NewAssembler(topo, games, players, tracks, loads)
	snap, err := asm.Capture(ctx, "g1", "bot1")
	require.NoError(t, err)

	p := newHardPlanner(topo)
	plan := p.Plan(snap, model.BotConfig{Skill: model.SkillHard, Archetype: model.ArchetypeOpportunist})

	require.Len(t, plan.Actions, 1)
	assert.Equal(t, planner.OptionPass, plan.Actions[0].Kind)
}

func TestHardSkillHasZeroNoise(t *testing.T) {
	topo, snap := buildDeliveryFixture(t)
	p := newHardPlanner(topo)

	for i := 0; i < 20; i++ {
		plan := p.Plan(snap, model.BotConfig{Skill: model.SkillHard, Archetype: model.ArchetypeFreightOptimizer})
		require.NotEmpty(t, plan.Actions)
		assert.Equal(t, planner.OptionDeliver, plan.Actions[0].Kind, "hard skill must always pick the top-scored option")
	}
}
