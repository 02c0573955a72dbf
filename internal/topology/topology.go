// Package topology loads the immutable hex grid once at startup and
// answers neighbor, terrain-cost, major-city and pixel-coordinate
// queries for it (spec.md §4.1). Grounded on the teacher's
// internal/game/board package: a static value loaded once, queried by
// coordinate, never mutated after construction.
package topology

import (
	"fmt"

	"ironroute-backend/internal/model"
)

// terrainCosts is the normative table from spec.md §4.1/§6. Water has no
// finite cost -- callers must check Terrain == model.TerrainWater first.
var terrainCosts = map[model.Terrain]int{
	model.TerrainClear:      1,
	model.TerrainMountain:   2,
	model.TerrainAlpine:     5,
	model.TerrainSmallCity:  3,
	model.TerrainMediumCity: 3,
	model.TerrainMajorCity:  5,
}

// Topology is the deep-frozen, lock-free-after-construction hex grid.
type Topology struct {
	points      map[model.Coord]model.Point
	cityGroups  []model.MajorCityGroup
	cityByCoord map[model.Coord]string
	nodesByCity map[string][]model.Coord
}

// New builds a Topology from already-parsed points and major city
// groups. Loading/parsing the JSON lives in internal/config; this
// constructor only builds the query indexes, matching the instruction
// that a point's terrain never changes once loaded.
func New(points []model.Point, cityGroups []model.MajorCityGroup) *Topology {
	t := &Topology{
		points:      make(map[model.Coord]model.Point, len(points)),
		cityGroups:  append([]model.MajorCityGroup(nil), cityGroups...),
		cityByCoord: make(map[model.Coord]string),
		nodesByCity: make(map[string][]model.Coord),
	}
	for _, p := range points {
		t.points[p.Coord] = p
		if p.Name != "" {
			t.nodesByCity[p.Name] = append(t.nodesByCity[p.Name], p.Coord)
		}
	}
	for _, g := range cityGroups {
		for _, n := range g.Nodes() {
			t.cityByCoord[n] = g.Name
		}
	}
	return t
}

// CityNodes returns every milepost named city (small, medium or major),
// used to resolve a demand's destination city name to grid coordinates.
func (t *Topology) CityNodes(city string) []model.Coord {
	return append([]model.Coord(nil), t.nodesByCity[city]...)
}

// Point returns the point at c and whether it exists on the grid.
func (t *Topology) Point(c model.Coord) (model.Point, bool) {
	p, ok := t.points[c]
	return p, ok
}

// AllPoints returns every point on the grid, order unspecified. Used by
// the snapshot assembler to populate WorldSnapshot's full map points
// (spec.md §3).
func (t *Topology) AllPoints() []model.Point {
	out := make([]model.Point, 0, len(t.points))
	for _, p := range t.points {
		out = append(out, p)
	}
	return out
}

// evenRowOffsets and oddRowOffsets implement the offset-coordinate hex
// neighbor rule from spec.md §4.1. The relation is symmetric by
// construction: walking from a neighbor back with the matching parity's
// offsets always reaches the origin.
var evenRowOffsets = []model.Coord{
	{Row: -1, Col: -1}, {Row: -1, Col: 0},
	{Row: 0, Col: -1}, {Row: 0, Col: 1},
	{Row: 1, Col: -1}, {Row: 1, Col: 0},
}

var oddRowOffsets = []model.Coord{
	{Row: -1, Col: 0}, {Row: -1, Col: 1},
	{Row: 0, Col: -1}, {Row: 0, Col: 1},
	{Row: 1, Col: 0}, {Row: 1, Col: 1},
}

// Neighbors returns the up-to-six mileposts adjacent to c that actually
// exist on the grid.
func (t *Topology) Neighbors(c model.Coord) []model.Coord {
	offsets := evenRowOffsets
	if c.Row%2 != 0 {
		offsets = oddRowOffsets
	}
	out := make([]model.Coord, 0, 6)
	for _, off := range offsets {
		n := model.Coord{Row: c.Row + off.Row, Col: c.Col + off.Col}
		if _, ok := t.points[n]; ok {
			out = append(out, n)
		}
	}
	return out
}

// TerrainCost returns the traversal cost of terrain and whether it is
// finite (false for water, per spec.md §4.1).
func TerrainCost(terrain model.Terrain) (cost int, finite bool) {
	if terrain == model.TerrainWater {
		return 0, false
	}
	c, ok := terrainCosts[terrain]
	if !ok {
		return 0, false
	}
	return c, true
}

// MajorCityGroups returns every configured major city group.
func (t *Topology) MajorCityGroups() []model.MajorCityGroup {
	return append([]model.MajorCityGroup(nil), t.cityGroups...)
}

// MajorCityLookup returns the major city name containing c, if any.
func (t *Topology) MajorCityLookup(c model.Coord) (string, bool) {
	name, ok := t.cityByCoord[c]
	return name, ok
}

// SameMajorCityGroup reports whether a and b both belong to the same
// major city group (spec.md §3: a segment may not have both endpoints in
// the same major-city group).
func (t *Topology) SameMajorCityGroup(a, b model.Coord) bool {
	ga, oka := t.cityByCoord[a]
	gb, okb := t.cityByCoord[b]
	return oka && okb && ga == gb
}

// GridToPixel converts a grid coordinate to client-visible pixel
// coordinates using a flat-top hex layout. Only the client renders with
// this; the server exposes it so a debug view can reuse the same math.
func GridToPixel(c model.Coord) (x, y float64) {
	const hexWidth = 60.0
	const hexHeight = 52.0
	x = float64(c.Col) * hexWidth
	if c.Row%2 != 0 {
		x += hexWidth / 2
	}
	y = float64(c.Row) * (hexHeight * 0.75)
	return x, y
}

// MustNeighborCost is a convenience used by the pathfinder: the cost to
// step from 'from' onto 'to', or an error if 'to' is not adjacent to
// 'from' or not on the grid.
func (t *Topology) MustNeighborCost(from, to model.Coord) (int, error) {
	found := false
	for _, n := range t.Neighbors(from) {
		if n == to {
			found = true
			break
		}
	}
	if !found {
		return 0, fmt.Errorf("topology: %s is not adjacent to %s", to, from)
	}
	p, ok := t.points[to]
	if !ok {
		return 0, fmt.Errorf("topology: %s not on grid", to)
	}
	cost, finite := TerrainCost(p.Terrain)
	if !finite {
		return 0, fmt.Errorf("topology: %s is water, unreachable", to)
	}
	return cost, nil
}
