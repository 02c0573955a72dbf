package model

// TrackSegment is an undirected edge between two hex-adjacent mileposts,
// owned by a single player. Endpoint terrains are stored alongside the
// coordinates because build-cost and legality both depend on them.
type TrackSegment struct {
	GameID    string
	PlayerID  string
	A         Coord
	B         Coord
	TerrainA  Terrain
	TerrainB  Terrain
	Cost      int
}

// CanonicalKey returns an order-independent identity for the segment so
// "at most one copy per ordered endpoint pair" (spec.md §3) can be
// checked regardless of which endpoint was recorded first.
func (s TrackSegment) CanonicalKey() (Coord, Coord) {
	if s.A.Row < s.B.Row || (s.A.Row == s.B.Row && s.A.Col <= s.B.Col) {
		return s.A, s.B
	}
	return s.B, s.A
}

// HasEndpoint reports whether c is one of the segment's two endpoints.
func (s TrackSegment) HasEndpoint(c Coord) bool {
	return s.A == c || s.B == c
}

// Other returns the endpoint of s that is not c. Callers must only call
// this when HasEndpoint(c) is true.
func (s TrackSegment) Other(c Coord) Coord {
	if s.A == c {
		return s.B
	}
	return s.A
}

// PlayerTrackState is the set of segments one player owns in one game,
// plus the running cost totals spec.md §3/§4.3 enforce against.
type PlayerTrackState struct {
	GameID        string
	PlayerID      string
	Segments      []TrackSegment
	TotalCost     int
	TurnBuildCost int // reset to 0 at the start of each of this player's turns
}

// AdjacencyGraph builds the bot's owned-track graph: both directions of
// every segment are inserted, so BFS/Dijkstra over it can walk either way.
// Positions with no owned segment have no entry, matching spec.md §4.2 step 5.
func (p PlayerTrackState) AdjacencyGraph() map[Coord][]Coord {
	graph := make(map[Coord][]Coord)
	for _, seg := range p.Segments {
		graph[seg.A] = append(graph[seg.A], seg.B)
		graph[seg.B] = append(graph[seg.B], seg.A)
	}
	return graph
}

// MajorCityGroup is a named center milepost plus its outposts, all of
// which count as the same connection target (spec.md §3).
type MajorCityGroup struct {
	Name             string
	CenterMilepost   Coord
	OutpostMileposts []Coord
}

// Nodes returns every milepost belonging to the group.
func (g MajorCityGroup) Nodes() []Coord {
	nodes := make([]Coord, 0, 1+len(g.OutpostMileposts))
	nodes = append(nodes, g.CenterMilepost)
	nodes = append(nodes, g.OutpostMileposts...)
	return nodes
}

// Contains reports whether c is the center or an outpost of the group.
func (g MajorCityGroup) Contains(c Coord) bool {
	if g.CenterMilepost == c {
		return true
	}
	for _, o := range g.OutpostMileposts {
		if o == c {
			return true
		}
	}
	return false
}
