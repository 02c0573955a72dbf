package topology_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ironroute-backend/internal/model"
	"ironroute-backend/internal/topology"
)

func buildTestGrid() *topology.Topology {
	points := []model.Point{
		{Coord: model.Coord{Row: 5, Col: 4}, Terrain: model.TerrainMajorCity, Name: "TestCity"},
		{Coord: model.Coord{Row: 5, Col: 5}, Terrain: model.TerrainMajorCity, Name: "TestCity"},
		{Coord: model.Coord{Row: 4, Col: 4}, Terrain: model.TerrainClear},
		{Coord: model.Coord{Row: 6, Col: 4}, Terrain: model.TerrainWater},
	}
	groups := []model.MajorCityGroup{
		{Name: "TestCity", CenterMilepost: model.Coord{Row: 5, Col: 5}, OutpostMileposts: []model.Coord{{Row: 5, Col: 4}}},
	}
	return topology.New(points, groups)
}

func TestNeighbors_EvenRow(t *testing.T) {
	topo := buildTestGrid()
	neighbors := topo.Neighbors(model.Coord{Row: 4, Col: 4})
	// even row 4 offsets include (1,-1)=(5,3) absent, (1,0)=(5,4) present
	found := false
	for _, n := range neighbors {
		if n == (model.Coord{Row: 5, Col: 4}) {
			found = true
		}
	}
	assert.True(t, found)
}

func TestNeighbors_Symmetric(t *testing.T) {
	topo := buildTestGrid()
	a := model.Coord{Row: 5, Col: 4}
	b := model.Coord{Row: 5, Col: 5}
	// if a is a neighbor of b's row parity rules, b should be reachable from a too
	_, err := topo.MustNeighborCost(a, b)
	require.NoError(t, err)
	_, err = topo.MustNeighborCost(b, a)
	require.NoError(t, err)
}

func TestTerrainCost_WaterInfinite(t *testing.T) {
	_, finite := topology.TerrainCost(model.TerrainWater)
	assert.False(t, finite)

	cost, finite := topology.TerrainCost(model.TerrainMajorCity)
	assert.True(t, finite)
	assert.Equal(t, 5, cost)
}

func TestSameMajorCityGroup(t *testing.T) {
	topo := buildTestGrid()
	assert.True(t, topo.SameMajorCityGroup(model.Coord{Row: 5, Col: 4}, model.Coord{Row: 5, Col: 5}))
	assert.False(t, topo.SameMajorCityGroup(model.Coord{Row: 5, Col: 4}, model.Coord{Row: 4, Col: 4}))
}

func TestAllPoints(t *testing.T) {
	topo := buildTestGrid()
	points := topo.AllPoints()
	assert.Len(t, points, 4)
}

func TestMajorCityLookup(t *testing.T) {
	topo := buildTestGrid()
	name, ok := topo.MajorCityLookup(model.Coord{Row: 5, Col: 4})
	assert.True(t, ok)
	assert.Equal(t, "TestCity", name)

	_, ok = topo.MajorCityLookup(model.Coord{Row: 4, Col: 4})
	assert.False(t, ok)
}
