package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	domainerrors "ironroute-backend/internal/errors"
	"ironroute-backend/internal/model"
)

// readFirst tries each candidate path in order and returns the first
// one that reads successfully, mirroring the teacher's
// CardRepositoryImpl.LoadCards path search so the same binary works
// whether it's run from the repo root, a package test directory, or an
// integration test's working directory.
func readFirst(primary string) ([]byte, string, error) {
	candidates := []string{
		primary,
		filepath.Join("..", primary),
		filepath.Join("..", "..", primary),
		filepath.Join("..", "..", "..", primary),
	}
	var lastErr error
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err == nil {
			return data, path, nil
		}
		lastErr = err
	}
	return nil, "", lastErr
}

// gridPointJSON mirrors the wire format named in spec.md §6:
// [{Id, GridX, GridY, Type, Name?, Ocean?}, ...].
type gridPointJSON struct {
	ID     string `json:"Id"`
	GridX  int    `json:"GridX"`
	GridY  int    `json:"GridY"`
	Type   string `json:"Type"`
	Name   string `json:"Name,omitempty"`
	Ocean  bool   `json:"Ocean,omitempty"`
}

// LoadGridPoints parses gridPoints.json into topology points. GridY maps
// to the offset-coordinate row, GridX to the column.
func LoadGridPoints(path string) ([]model.Point, error) {
	data, _, err := readFirst(path)
	if err != nil {
		return nil, &domainerrors.ConfigurationError{Source: path, Err: err}
	}

	var raw []gridPointJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &domainerrors.ConfigurationError{Source: path, Err: err}
	}

	points := make([]model.Point, 0, len(raw))
	for _, r := range raw {
		points = append(points, model.Point{
			Coord:   model.Coord{Row: r.GridY, Col: r.GridX},
			Terrain: model.Terrain(r.Type),
			Name:    r.Name,
			Ocean:   r.Ocean,
		})
	}
	return points, nil
}

// DeriveMajorCityGroups groups every MajorCity point by Name. The point
// with the smallest (Row, Col) within a group -- lowest row, then lowest
// column, compared as numbers -- becomes the center and the rest become
// outposts -- a deterministic
// rule since gridPoints.json does not distinguish center from outpost
// explicitly (an open question spec.md leaves to content authoring).
func DeriveMajorCityGroups(points []model.Point) []model.MajorCityGroup {
	byName := make(map[string][]model.Coord)
	for _, p := range points {
		if p.Terrain != model.TerrainMajorCity || p.Name == "" {
			continue
		}
		byName[p.Name] = append(byName[p.Name], p.Coord)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]model.MajorCityGroup, 0, len(names))
	for _, name := range names {
		coords := byName[name]
		sort.Slice(coords, func(i, j int) bool {
			if coords[i].Row != coords[j].Row {
				return coords[i].Row < coords[j].Row
			}
			return coords[i].Col < coords[j].Col
		})
		group := model.MajorCityGroup{Name: name, CenterMilepost: coords[0]}
		if len(coords) > 1 {
			group.OutpostMileposts = append(group.OutpostMileposts, coords[1:]...)
		}
		groups = append(groups, group)
	}
	return groups
}

// loadCitiesJSON mirrors spec.md §6:
// {LoadConfiguration:[{<LoadType>:[cities], count}, ...]}.
type loadCitiesJSON struct {
	LoadConfiguration []map[string]json.RawMessage `json:"LoadConfiguration"`
}

// LoadCityConfig is one parsed entry of load_cities.json: the load type,
// its producing cities and total token count.
type LoadCityConfig struct {
	Type            model.LoadType
	ProducingCities []string
	Count           int
}

// LoadLoadCities parses load_cities.json into one LoadCityConfig per
// load type entry.
func LoadLoadCities(path string) ([]LoadCityConfig, error) {
	data, _, err := readFirst(path)
	if err != nil {
		return nil, &domainerrors.ConfigurationError{Source: path, Err: err}
	}

	var raw loadCitiesJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &domainerrors.ConfigurationError{Source: path, Err: err}
	}

	var configs []LoadCityConfig
	for _, entry := range raw.LoadConfiguration {
		var count int
		if countRaw, ok := entry["count"]; ok {
			_ = json.Unmarshal(countRaw, &count)
		}
		for key, value := range entry {
			if key == "count" {
				continue
			}
			var cities []string
			if err := json.Unmarshal(value, &cities); err != nil {
				return nil, &domainerrors.ConfigurationError{Source: path, Err: fmt.Errorf("load type %s: %w", key, err)}
			}
			configs = append(configs, LoadCityConfig{
				Type:            model.LoadType(key),
				ProducingCities: cities,
				Count:           count,
			})
		}
	}
	return configs, nil
}

// demandCardJSON mirrors spec.md §6: {id, demands:[{city, resource,
// payment}x3]}.
type demandCardJSON struct {
	ID      int `json:"id"`
	Demands []struct {
		City     string `json:"city"`
		Resource string `json:"resource"`
		Payment  int    `json:"payment"`
	} `json:"demands"`
}

// LoadDemandDeck parses the demand deck JSON into DemandCard values.
func LoadDemandDeck(path string) ([]model.DemandCard, error) {
	data, _, err := readFirst(path)
	if err != nil {
		return nil, &domainerrors.ConfigurationError{Source: path, Err: err}
	}

	var raw []demandCardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &domainerrors.ConfigurationError{Source: path, Err: err}
	}

	cards := make([]model.DemandCard, 0, len(raw))
	for _, rc := range raw {
		if len(rc.Demands) != 3 {
			return nil, &domainerrors.ConfigurationError{
				Source: path,
				Err:    fmt.Errorf("demand card %d has %d demands, want 3", rc.ID, len(rc.Demands)),
			}
		}
		card := model.DemandCard{ID: rc.ID}
		for i, d := range rc.Demands {
			card.Demands[i] = model.Demand{
				DestinationCity: d.City,
				LoadType:        model.LoadType(d.Resource),
				Payment:         d.Payment,
			}
		}
		cards = append(cards, card)
	}
	return cards, nil
}
