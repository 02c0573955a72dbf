// Package snapshot assembles and represents the frozen view of game
// state a bot plans against (spec.md §4.2). WorldSnapshot has no
// exported fields: every accessor returns a defensive copy, which is
// Go's idiom for "deep freeze" in place of a runtime frozen marker
// (spec.md §9, DESIGN NOTES) -- a caller can mutate what it gets back
// without ever touching the snapshot's own state.
package snapshot

import (
	"ironroute-backend/internal/model"
)

// WorldSnapshot is the immutable view captured for one planning cycle.
type WorldSnapshot struct {
	gameID               string
	botPlayerID          string
	phase                model.GameStatus
	money                int
	debt                 int
	position             *model.Coord
	trainType            model.TrainType
	remainingMovement    int
	carriedLoads         []model.LoadType
	hand                 []model.DemandCard
	ownSegments          []model.TrackSegment
	turnBuildCost        int
	allSegments          []model.TrackSegment
	loadAvailability     map[model.LoadType]int
	loadProducers        map[model.LoadType][]string
	droppedLoads         map[string][]model.LoadType
	majorCityGroups      []model.MajorCityGroup
	points               []model.Point
	ownGraph             map[model.Coord][]model.Coord
	connectedMajorCities map[string]bool
	connectedCities      map[string]bool
	fingerprint          string
}

func (s *WorldSnapshot) GameID() string            { return s.gameID }
func (s *WorldSnapshot) BotPlayerID() string        { return s.botPlayerID }
func (s *WorldSnapshot) Phase() model.GameStatus    { return s.phase }
func (s *WorldSnapshot) Money() int                 { return s.money }
func (s *WorldSnapshot) Debt() int                  { return s.debt }
func (s *WorldSnapshot) TrainType() model.TrainType { return s.trainType }
func (s *WorldSnapshot) RemainingMovement() int     { return s.remainingMovement }
func (s *WorldSnapshot) Fingerprint() string        { return s.fingerprint }

// Position returns a copy of the bot's current milepost, or nil if it
// has not been placed yet (spec.md §3).
func (s *WorldSnapshot) Position() *model.Coord {
	if s.position == nil {
		return nil
	}
	c := *s.position
	return &c
}

func (s *WorldSnapshot) CarriedLoads() []model.LoadType {
	return append([]model.LoadType(nil), s.carriedLoads...)
}

func (s *WorldSnapshot) Hand() []model.DemandCard {
	return append([]model.DemandCard(nil), s.hand...)
}

func (s *WorldSnapshot) OwnSegments() []model.TrackSegment {
	return append([]model.TrackSegment(nil), s.ownSegments...)
}

// TurnBuildCost is the bot's accumulated track spend so far this turn
// (spec.md §4.3/§6: the 20M per-turn build budget is checked against it).
func (s *WorldSnapshot) TurnBuildCost() int { return s.turnBuildCost }

func (s *WorldSnapshot) AllSegments() []model.TrackSegment {
	return append([]model.TrackSegment(nil), s.allSegments...)
}

// LoadAvailability returns a copy of the per-load-type available count,
// already decremented by every token currently on any train
// (spec.md §4.2 step 3).
func (s *WorldSnapshot) LoadAvailability() map[model.LoadType]int {
	out := make(map[model.LoadType]int, len(s.loadAvailability))
	for k, v := range s.loadAvailability {
		out[k] = v
	}
	return out
}

// DroppedAt returns a copy of the loads dropped at city.
func (s *WorldSnapshot) DroppedAt(city string) []model.LoadType {
	return append([]model.LoadType(nil), s.droppedLoads[city]...)
}

// Producers returns a copy of the cities that produce loadType.
func (s *WorldSnapshot) Producers(loadType model.LoadType) []string {
	return append([]string(nil), s.loadProducers[loadType]...)
}

// ProducesLoadAt reports whether city is a producing city for loadType.
func (s *WorldSnapshot) ProducesLoadAt(city string, loadType model.LoadType) bool {
	for _, c := range s.loadProducers[loadType] {
		if c == city {
			return true
		}
	}
	return false
}

// IsCityConnected reports whether any milepost named city is a node in
// the bot's track graph (any terrain tier, not just major cities).
func (s *WorldSnapshot) IsCityConnected(city string) bool {
	return s.connectedCities[city]
}

func (s *WorldSnapshot) MajorCityGroups() []model.MajorCityGroup {
	return append([]model.MajorCityGroup(nil), s.majorCityGroups...)
}

func (s *WorldSnapshot) Points() []model.Point {
	return append([]model.Point(nil), s.points...)
}

// OwnGraph returns a deep copy of the bot's owned-track adjacency graph.
func (s *WorldSnapshot) OwnGraph() map[model.Coord][]model.Coord {
	out := make(map[model.Coord][]model.Coord, len(s.ownGraph))
	for k, v := range s.ownGraph {
		out[k] = append([]model.Coord(nil), v...)
	}
	return out
}

// IsConnectedToMajorCity reports whether the bot's track graph touches
// the named major city's center or any outpost (spec.md §4.2 step 6).
func (s *WorldSnapshot) IsConnectedToMajorCity(name string) bool {
	return s.connectedMajorCities[name]
}

// ConnectedMajorCityCount returns how many distinct major city groups
// the bot is connected to (S6's countConnectedMajorCities). The
// planner's victory-progress dimension does not use it; that dimension
// scores cash only.
func (s *WorldSnapshot) ConnectedMajorCityCount() int {
	n := 0
	for _, connected := range s.connectedMajorCities {
		if connected {
			n++
		}
	}
	return n
}
