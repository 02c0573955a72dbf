// Package feasibility holds the pure, side-effect-free validators the
// Planner and PlanValidator both call before any option is dispatched
// (spec.md §4.3). Grounded on the teacher's internal/action validation
// functions: a Service struct with one pure method per action kind,
// each returning a result value rather than raising.
package feasibility

import (
	"ironroute-backend/internal/model"
	"ironroute-backend/internal/snapshot"
)

// Result is the outcome of a single feasibility check.
type Result struct {
	Feasible bool
	Reason   string
}

func ok() Result { return Result{Feasible: true} }

func fail(reason string) Result { return Result{Feasible: false, Reason: reason} }

// Service groups the four validators. It holds no state: every method
// is a pure function of its arguments.
type Service struct{}

// NewService constructs a feasibility Service.
func NewService() *Service { return &Service{} }

// ValidateDelivery checks whether the bot can deliver demandIndex of
// cardID right now (spec.md §4.3).
func (s *Service) ValidateDelivery(snap *snapshot.WorldSnapshot, cardID, demandIndex int) Result {
	var card *model.DemandCard
	for _, c := range snap.Hand() {
		if c.ID == cardID {
			cp := c
			card = &cp
			break
		}
	}
	if card == nil {
		return fail("card not in hand")
	}
	if demandIndex < 0 || demandIndex >= len(card.Demands) {
		return fail("demand index out of range")
	}
	demand := card.Demands[demandIndex]

	if snap.Position() == nil {
		return fail("no current position")
	}

	carried := false
	for _, lt := range snap.CarriedLoads() {
		if lt == demand.LoadType {
			carried = true
			break
		}
	}
	if !carried {
		return fail("required load not carried")
	}

	if !snap.IsCityConnected(demand.DestinationCity) {
		return fail("destination city not a node in the bot's track graph")
	}
	return ok()
}

// ValidatePickup checks whether the bot can pick up loadType at city
// right now (spec.md §4.3).
func (s *Service) ValidatePickup(snap *snapshot.WorldSnapshot, loadType model.LoadType, city string) Result {
	if snap.Position() == nil {
		return fail("no current position")
	}
	if len(snap.CarriedLoads()) >= snap.TrainType().Capacity() {
		return fail("carried loads at capacity")
	}

	globallyAvailable := snap.LoadAvailability()[loadType] > 0 && snap.ProducesLoadAt(city, loadType)
	dropped := false
	for _, lt := range snap.DroppedAt(city) {
		if lt == loadType {
			dropped = true
			break
		}
	}
	if !globallyAvailable && !dropped {
		return fail("load not available at city")
	}

	if !snap.IsCityConnected(city) {
		return fail("city not reachable on the bot's track graph")
	}
	return ok()
}

// ValidateBuild checks whether segments can be appended to the bot's
// track this turn (spec.md §4.3, §6 per-turn build budget of 20M).
func (s *Service) ValidateBuild(snap *snapshot.WorldSnapshot, segments []model.TrackSegment) Result {
	if len(segments) == 0 {
		return fail("empty segment list")
	}
	cost := 0
	for _, seg := range segments {
		if seg.Cost <= 0 {
			return fail("non-positive segment cost")
		}
		cost += seg.Cost
	}
	if snap.TurnBuildCost()+cost > model.PerTurnBuildBudget {
		return fail("exceeds per-turn build budget")
	}
	if cost > snap.Money() {
		return fail("insufficient money")
	}
	return ok()
}

// ValidateUpgrade checks whether the bot can upgrade or crossgrade to
// target right now (spec.md §4.3).
func (s *Service) ValidateUpgrade(snap *snapshot.WorldSnapshot, target model.TrainType) Result {
	current := snap.TrainType()
	if current == target {
		return fail("already that train type")
	}
	kind, _, edgeExists := model.UpgradeEdge(current, target)
	if !edgeExists {
		return fail("no upgrade edge to target")
	}

	switch kind {
	case model.UpgradeKindUpgrade:
		if snap.Money() < model.UpgradeCost {
			return fail("insufficient money")
		}
		if snap.TurnBuildCost() > 0 {
			return fail("cannot upgrade after building track this turn")
		}
	case model.UpgradeKindCrossgrade:
		if snap.Money() < model.CrossgradeCost {
			return fail("insufficient money")
		}
		if snap.TurnBuildCost() > 15 {
			return fail("crossgrade forbidden above 15M track spend this turn")
		}
	}

	if target.Capacity() < len(snap.CarriedLoads()) {
		return fail("target capacity below current carried-load count")
	}
	return ok()
}
