package snapshot

import "ironroute-backend/internal/model"

// Mutation describes the effect of one successfully re-validated plan
// action on a WorldSnapshot, used by PlanValidator to build a mentally
// advanced copy without ever touching store state (spec.md §4.6:
// "apply the delta of each successful option to a local copy").
type Mutation struct {
	MoneyDelta            int
	DebtDelta             int
	NewPosition           *model.Coord
	CarriedLoadsAdd       []model.LoadType
	CarriedLoadsRemove    []model.LoadType
	TurnBuildCostDelta    int
	NewSegments           []model.TrackSegment
	LoadAvailabilityDelta map[model.LoadType]int
	DiscardCardID         int
	DrawnCard             *model.DemandCard
	NewTrainType          *model.TrainType
}

// Advance returns a new WorldSnapshot with m applied, leaving s
// untouched. Connectivity to major city groups is recomputed from the
// extended graph; connectivity to other named cities is carried over
// unchanged, since the snapshot does not retain a full coordinate-to-name
// index -- an accepted approximation since the planner only ever builds
// toward major cities (see DESIGN.md).
func (s *WorldSnapshot) Advance(m Mutation) *WorldSnapshot {
	cp := &WorldSnapshot{
		gameID:      s.gameID,
		botPlayerID: s.botPlayerID,
		phase:       s.phase,
		money:       s.money + m.MoneyDelta,
		debt:        s.debt + m.DebtDelta,
		trainType:   s.trainType,
	}
	if m.NewTrainType != nil {
		cp.trainType = *m.NewTrainType
	}

	if m.NewPosition != nil {
		pos := *m.NewPosition
		cp.position = &pos
	} else if s.position != nil {
		pos := *s.position
		cp.position = &pos
	}

	cp.remainingMovement = s.remainingMovement

	carried := append([]model.LoadType(nil), s.carriedLoads...)
	for _, add := range m.CarriedLoadsAdd {
		carried = append(carried, add)
	}
	for _, remove := range m.CarriedLoadsRemove {
		carried = removeFirst(carried, remove)
	}
	cp.carriedLoads = carried

	hand := append([]model.DemandCard(nil), s.hand...)
	if m.DiscardCardID != 0 {
		hand = discardCard(hand, m.DiscardCardID)
	}
	if m.DrawnCard != nil {
		hand = append(hand, *m.DrawnCard)
	}
	cp.hand = hand

	cp.ownSegments = append(append([]model.TrackSegment(nil), s.ownSegments...), m.NewSegments...)
	cp.turnBuildCost = s.turnBuildCost + m.TurnBuildCostDelta
	cp.allSegments = append(append([]model.TrackSegment(nil), s.allSegments...), m.NewSegments...)

	cp.loadAvailability = make(map[model.LoadType]int, len(s.loadAvailability))
	for k, v := range s.loadAvailability {
		cp.loadAvailability[k] = v
	}
	for lt, delta := range m.LoadAvailabilityDelta {
		cp.loadAvailability[lt] += delta
		if cp.loadAvailability[lt] < 0 {
			cp.loadAvailability[lt] = 0
		}
	}

	cp.loadProducers = s.loadProducers
	cp.droppedLoads = s.droppedLoads
	cp.majorCityGroups = s.majorCityGroups
	cp.points = s.points

	graph := make(map[model.Coord][]model.Coord, len(s.ownGraph))
	for k, v := range s.ownGraph {
		graph[k] = append([]model.Coord(nil), v...)
	}
	for _, seg := range m.NewSegments {
		graph[seg.A] = append(graph[seg.A], seg.B)
		graph[seg.B] = append(graph[seg.B], seg.A)
	}
	cp.ownGraph = graph

	connectedMajor := make(map[string]bool, len(s.connectedMajorCities))
	for k, v := range s.connectedMajorCities {
		connectedMajor[k] = v
	}
	for _, group := range s.majorCityGroups {
		if connectedMajor[group.Name] {
			continue
		}
		for _, node := range group.Nodes() {
			if _, ok := graph[node]; ok {
				connectedMajor[group.Name] = true
				break
			}
		}
	}
	cp.connectedMajorCities = connectedMajor
	cp.connectedCities = s.connectedCities

	cp.fingerprint = fingerprint(cp)
	return cp
}

func removeFirst(loads []model.LoadType, target model.LoadType) []model.LoadType {
	for i, lt := range loads {
		if lt == target {
			return append(append([]model.LoadType(nil), loads[:i]...), loads[i+1:]...)
		}
	}
	return loads
}

func discardCard(hand []model.DemandCard, cardID int) []model.DemandCard {
	for i, c := range hand {
		if c.ID == cardID {
			return append(append([]model.DemandCard(nil), hand[:i]...), hand[i+1:]...)
		}
	}
	return hand
}
