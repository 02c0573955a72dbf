package executor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ironroute-backend/internal/executor"
	"ironroute-backend/internal/model"
	"ironroute-backend/internal/planner"
	"ironroute-backend/internal/repository"
	"ironroute-backend/internal/snapshot"
	"ironroute-backend/internal/topology"
	"ironroute-backend/internal/transaction"
)

func buildFixture(t *testing.T) (*executor.Executor, repository.PlayerRepository, repository.TrackRepository, *snapshot.WorldSnapshot) {
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
	demand := repository.NewInMemoryDemandDeckRepository(map[string][]model.DemandCard{
		"g1": {{ID: 100, Demands: [3]model.Demand{{DestinationCity: "CityC", LoadType: model.LoadCoal, Payment: 7}}}},
	})

	require.NoError(t, games.Create(ctx, model.Game{ID: "g1", Status: model.GameStatusActive, SeatCount: 1}))
	require.NoError(t, players.AddPlayer(ctx, model.Player{
		ID:        "bot1",
		GameID:    "g1",
		Money:     50,
		Debt:      3,
		TrainType: model.TrainFreight,
		Train: model.TrainState{
			Position:          &model.Coord{Row: 0, Col: 0},
			RemainingMovement: 9,
			CarriedLoads:      []model.LoadType{model.LoadCoal},
		},
		Hand: []model.DemandCard{
			{ID: 42, Demands: [3]model.Demand{{DestinationCity: "CityB", LoadType: model.LoadCoal, Payment: 15}}},
		},
	}))
	require.NoError(t, tracks.AppendSegments(ctx, "g1", "bot1", []model.TrackSegment{
		{GameID: "g1", PlayerID: "bot1", A: model.Coord{Row: 0, Col: 0}, B: model.Coord{Row: 0, Col: 1}, Cost: 3},
	}, 3))

	asm := snapshot.NewAssembler(topo, games, players, tracks, loads)
	snap, err := asm.Capture(ctx, "g1", "bot1")
	require.NoError(t, err)

	txMgr := transaction.NewManager(games, players, tracks, loads, demand)
	return executor.New(txMgr), players, tracks, snap
}

func TestRun_DeliverLoadAppliesMercyRuleAndDrawsCard(t *testing.T) {
	exec, players, _, snap := buildFixture(t)
	ctx := context.Background()

	plan := &planner.TurnPlan{Actions: []planner.Option{
		{
			Kind:         planner.OptionDeliver,
			CardID:       42,
			DemandIndex:  0,
			LoadType:     model.LoadCoal,
			DeliveryPath: []model.Coord{{Row: 0, Col: 0}, {Row: 0, Col: 1}},
		},
	}}

	result := exec.Run(ctx, "g1", "bot1", snap, plan)
	require.True(t, result.Success)
	assert.Equal(t, 1, result.ActionsExecuted)

	player, err := players.GetPlayer(ctx, "g1", "bot1")
	require.NoError(t, err)
	assert.Equal(t, 62, player.Money) // 50 + (15 payment - 3 debt)
	assert.Equal(t, 0, player.Debt)
	assert.Empty(t, player.Train.CarriedLoads)
	require.Len(t, player.Hand, 1)
	assert.Equal(t, 100, player.Hand[0].ID)
	assert.Equal(t, model.Coord{Row: 0, Col: 1}, *player.Train.Position)
}

func TestRun_BuildTrackDeductsCostAndAppendsSegments(t *testing.T) {
	exec, players, tracks, snap := buildFixture(t)
	ctx := context.Background()

	newSegment := model.TrackSegment{GameID: "g1", PlayerID: "bot1", A: model.Coord{Row: 0, Col: 1}, B: model.Coord{Row: 1, Col: 1}, Cost: 4}
	plan := &planner.TurnPlan{Actions: []planner.Option{
		{Kind: planner.OptionBuildTowardMajorCity, Segments: []model.TrackSegment{newSegment}},
	}}

	result := exec.Run(ctx, "g1", "bot1", snap, plan)
	require.True(t, result.Success)

	player, err := players.GetPlayer(ctx, "g1", "bot1")
	require.NoError(t, err)
	assert.Equal(t, 46, player.Money) // 50 - 4

	state, err := tracks.Get(ctx, "g1", "bot1")
	require.NoError(t, err)
	assert.Len(t, state.Segments, 2)
}

func TestRun_StopsAtFirstFailureAndKeepsPriorActionsCommitted(t *testing.T) {
	exec, players, _, snap := buildFixture(t)
	ctx := context.Background()

	plan := &planner.TurnPlan{Actions: []planner.Option{
		{
			Kind:         planner.OptionDeliver,
			CardID:       42,
			DemandIndex:  0,
			LoadType:     model.LoadCoal,
			DeliveryPath: []model.Coord{{Row: 0, Col: 0}, {Row: 0, Col: 1}},
		},
		{Kind: planner.OptionUpgrade, UpgradeTarget: model.TrainType("NotARealTrain")},
	}}

	result := exec.Run(ctx, "g1", "bot1", snap, plan)
	require.False(t, result.Success)
	assert.Equal(t, 1, result.ActionsExecuted)
	assert.NotEmpty(t, result.Error)

	player, err := players.GetPlayer(ctx, "g1", "bot1")
	require.NoError(t, err)
	assert.Equal(t, 62, player.Money) // first delivery stays committed
}
