package config_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ironroute-backend/internal/config"
	domainerrors "ironroute-backend/internal/errors"
	"ironroute-backend/internal/model"
)

func writeTemp(t *testing.T, name string, content []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestLoadGridPoints(t *testing.T) {
	raw := `[
		{"Id":"1","GridX":5,"GridY":5,"Type":"MajorCity","Name":"TestCity"},
		{"Id":"2","GridX":4,"GridY":5,"Type":"MajorCity","Name":"TestCity"},
		{"Id":"3","GridX":4,"GridY":4,"Type":"Clear"}
	]`
	path := writeTemp(t, "gridPoints.json", []byte(raw))

	points, err := config.LoadGridPoints(path)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, model.Coord{Row: 5, Col: 5}, points[0].Coord)
	assert.Equal(t, model.TerrainMajorCity, points[0].Terrain)
}

func TestDeriveMajorCityGroups_CenterIsLowestCoord(t *testing.T) {
	points := []model.Point{
		{Coord: model.Coord{Row: 5, Col: 5}, Terrain: model.TerrainMajorCity, Name: "TestCity"},
		{Coord: model.Coord{Row: 5, Col: 4}, Terrain: model.TerrainMajorCity, Name: "TestCity"},
	}
	groups := config.DeriveMajorCityGroups(points)
	require.Len(t, groups, 1)
	assert.Equal(t, model.Coord{Row: 5, Col: 4}, groups[0].CenterMilepost)
	assert.Equal(t, []model.Coord{{Row: 5, Col: 5}}, groups[0].OutpostMileposts)
}

func TestLoadLoadCities(t *testing.T) {
	raw := `{"LoadConfiguration":[{"Coal":["Essen","Krakow"],"count":16}]}`
	path := writeTemp(t, "load_cities.json", []byte(raw))

	configs, err := config.LoadLoadCities(path)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, model.LoadType("Coal"), configs[0].Type)
	assert.Equal(t, 16, configs[0].Count)
	assert.ElementsMatch(t, []string{"Essen", "Krakow"}, configs[0].ProducingCities)
}

func TestLoadDemandDeck(t *testing.T) {
	card := map[string]interface{}{
		"id": 42,
		"demands": []map[string]interface{}{
			{"city": "B", "resource": "Coal", "payment": 15},
			{"city": "C", "resource": "Wheat", "payment": 10},
			{"city": "D", "resource": "Wine", "payment": 20},
		},
	}
	raw, err := json.Marshal([]interface{}{card})
	require.NoError(t, err)
	path := writeTemp(t, "demand_deck.json", raw)

	deck, err := config.LoadDemandDeck(path)
	require.NoError(t, err)
	require.Len(t, deck, 1)
	assert.Equal(t, 42, deck[0].ID)
	assert.Equal(t, model.LoadType("Coal"), deck[0].Demands[0].LoadType)
	assert.Equal(t, 15, deck[0].Demands[0].Payment)
}

func TestLoadGridPoints_MissingFileIsConfigurationError(t *testing.T) {
	_, err := config.LoadGridPoints(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	var cfgErr *domainerrors.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}
