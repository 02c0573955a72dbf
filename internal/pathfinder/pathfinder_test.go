package pathfinder_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ironroute-backend/internal/model"
	"ironroute-backend/internal/pathfinder"
	"ironroute-backend/internal/repository"
	"ironroute-backend/internal/snapshot"
	"ironroute-backend/internal/topology"
)

// buildGridFixture lays out a 3x3 clear-terrain grid plus a two-node
// major city group ("Paris") at (0,0)-(0,1) to exercise the
// same-major-city-group exclusion rule.
func buildGridFixture(t *testing.T) *topology.Topology {
	t.Helper()
	var points []model.Point
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			terrain := model.TerrainClear
			if row == 0 && (col == 0 || col == 1) {
				terrain = model.TerrainMajorCity
			}
			points = append(points, model.Point{Coord: model.Coord{Row: row, Col: col}, Terrain: terrain, Name: "Paris"})
		}
	}
	groups := []model.MajorCityGroup{
		{Name: "Paris", CenterMilepost: model.Coord{Row: 0, Col: 0}, OutpostMileposts: []model.Coord{{Row: 0, Col: 1}}},
	}
	return topology.New(points, groups)
}

func emptySnapshot(t *testing.T, topo *topology.Topology, start model.Coord) *snapshot.WorldSnapshot {
	t.Helper()
	ctx := context.Background()

	games := repository.NewInMemoryGameRepository(nil)
	players := repository.NewInMemoryPlayerRepository(nil)
	tracks := repository.NewInMemoryTrackRepository(nil)
	loads := repository.NewInMemoryLoadRepository(nil)

	require.NoError(t, games.Create(ctx, model.Game{ID: "g1", Status: model.GameStatusActive, SeatCount: 1}))
	require.NoError(t, players.AddPlayer(ctx, model.Player{
		ID:        "bot1",
		GameID:    "g1",
		Money:     20,
		TrainType: model.TrainFreight,
		Train:     model.TrainState{Position: &start, RemainingMovement: 9},
	}))

	asm := snapshot.NewAssembler(topo, games, players, tracks, loads)
	snap, err := asm.Capture(ctx, "g1", "bot1")
	require.NoError(t, err)
	return snap
}

func TestBuildSearch_WithinBudgetFromVirtualStart(t *testing.T) {
	topo := buildGridFixture(t)
	start := model.Coord{Row: 0, Col: 0}
	snap := emptySnapshot(t, topo, start)

	pf := pathfinder.New(topo)
	segments, err := pf.BuildSearch(snap, &start, 20, 10)
	require.NoError(t, err)
	require.NotEmpty(t, segments)

	total := 0
	for _, seg := range segments {
		total += seg.Cost
		assert.Greater(t, seg.Cost, 0)
	}
	assert.LessOrEqual(t, total, 20)
}

func TestBuildSearch_NeverCrossesSameMajorCityGroup(t *testing.T) {
	topo := buildGridFixture(t)
	start := model.Coord{Row: 0, Col: 0}
	snap := emptySnapshot(t, topo, start)

	pf := pathfinder.New(topo)
	segments, err := pf.BuildSearch(snap, &start, 20, 10)
	require.NoError(t, err)

	for _, seg := range segments {
		assert.False(t, topo.SameMajorCityGroup(seg.A, seg.B), "no segment may have both endpoints in the Paris group")
	}
}

func TestMoveSearch_FindsShortestPathWithinRemainingMovement(t *testing.T) {
	topo := buildGridFixture(t)
	start := model.Coord{Row: 1, Col: 1}

	// give the bot an owned track connecting (1,1) to (1,2) to (0,2)
	ctx := context.Background()
	tracks := repository.NewInMemoryTrackRepository(nil)
	require.NoError(t, tracks.AppendSegments(ctx, "g1", "bot1", []model.TrackSegment{
		{GameID: "g1", PlayerID: "bot1", A: model.Coord{Row: 1, Col: 1}, B: model.Coord{Row: 1, Col: 2}, Cost: 1},
		{GameID: "g1", PlayerID: "bot1", A: model.Coord{Row: 1, Col: 2}, B: model.Coord{Row: 0, Col: 2}, Cost: 1},
	}, 2))

	games := repository.NewInMemoryGameRepository(nil)
	players := repository.NewInMemoryPlayerRepository(nil)
	loads := repository.NewInMemoryLoadRepository(nil)
	require.NoError(t, games.Create(ctx, model.Game{ID: "g1", Status: model.GameStatusActive, SeatCount: 1}))
	require.NoError(t, players.AddPlayer(ctx, model.Player{
		ID: "bot1", GameID: "g1", TrainType: model.TrainFreight,
		Train: model.TrainState{Position: &start, RemainingMovement: 9},
	}))
	asm := snapshot.NewAssembler(topo, games, players, tracks, loads)
	snap, err := asm.Capture(ctx, "g1", "bot1")
	require.NoError(t, err)

	pf := pathfinder.New(topo)
	path, ok := pf.MoveSearch(snap, model.Coord{Row: 0, Col: 2}, 9)
	require.True(t, ok)
	assert.Equal(t, []model.Coord{{Row: 1, Col: 1}, {Row: 1, Col: 2}, {Row: 0, Col: 2}}, path)
}

func TestMoveSearch_UnreachableTargetReturnsFalse(t *testing.T) {
	topo := buildGridFixture(t)
	start := model.Coord{Row: 2, Col: 2}
	snap := emptySnapshot(t, topo, start)

	pf := pathfinder.New(topo)
	_, ok := pf.MoveSearch(snap, model.Coord{Row: 0, Col: 2}, 9)
	assert.False(t, ok, "the bot owns no track, so no move path should exist")
}
