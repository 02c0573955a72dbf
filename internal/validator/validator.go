// Package validator re-validates a planned sequence of actions against a
// mentally advanced snapshot before the Executor dispatches any of them
// (spec.md §4.6). A multi-action TurnPlan can go stale the instant its
// first action is simulated -- a delivery consumes the demand card a
// second option also referenced, a build spends the budget a later
// upgrade needed -- so every action after the first is re-checked
// against the projected post-action state, not the snapshot the Planner
// originally scored against. Grounded on the teacher's internal/action
// two-phase validate-then-apply pattern, generalized to a whole-plan walk.
package validator

import (
	"ironroute-backend/internal/feasibility"
	"ironroute-backend/internal/model"
	"ironroute-backend/internal/planner"
	"ironroute-backend/internal/snapshot"
)

// Rejection records why the plan was truncated after the given action
// index, for the audit trail (spec.md §4.6: "records the reason in the
// audit").
type Rejection struct {
	ActionIndex int
	Reason      string
}

// Validator replays a TurnPlan action by action.
type Validator struct {
	feasibility *feasibility.Service
}

// New constructs a Validator.
func New(fs *feasibility.Service) *Validator {
	return &Validator{feasibility: fs}
}

// Validate walks plan.Actions in order, re-checking feasibility of each
// against a snapshot advanced by every prior accepted action's delta.
// The first infeasible action truncates the plan there; if nothing
// survives, the returned plan is a single Pass (spec.md §4.6).
func (v *Validator) Validate(snap *snapshot.WorldSnapshot, plan *planner.TurnPlan) (*planner.TurnPlan, *Rejection) {
	current := snap
	var accepted []planner.Option

	for i, opt := range plan.Actions {
		result := v.checkFeasible(current, opt)
		if !result.Feasible {
			rejection := &Rejection{ActionIndex: i, Reason: result.Reason}
			if len(accepted) == 0 {
				accepted = []planner.Option{{Kind: planner.OptionPass, Feasible: true}}
			}
			return &planner.TurnPlan{Actions: accepted, FeasibleOptions: plan.FeasibleOptions, RejectedOptions: plan.RejectedOptions}, rejection
		}
		accepted = append(accepted, opt)
		current = advance(current, opt)
	}

	if len(accepted) == 0 {
		accepted = []planner.Option{{Kind: planner.OptionPass, Feasible: true}}
	}
	return &planner.TurnPlan{Actions: accepted, FeasibleOptions: plan.FeasibleOptions, RejectedOptions: plan.RejectedOptions}, nil
}

func (v *Validator) checkFeasible(snap *snapshot.WorldSnapshot, opt planner.Option) feasibility.Result {
	switch opt.Kind {
	case planner.OptionPass:
		return feasibility.Result{Feasible: true}
	case planner.OptionDeliver:
		return v.feasibility.ValidateDelivery(snap, opt.CardID, opt.DemandIndex)
	case planner.OptionPickupAndDeliver:
		return v.feasibility.ValidatePickup(snap, opt.LoadType, opt.PickupCity)
	case planner.OptionBuild, planner.OptionBuildTowardMajorCity:
		return v.feasibility.ValidateBuild(snap, opt.Segments)
	case planner.OptionUpgrade:
		return v.feasibility.ValidateUpgrade(snap, opt.UpgradeTarget)
	default:
		return feasibility.Result{Feasible: false, Reason: "unknown option kind"}
	}
}

// advance projects snap forward by opt's effect, mirroring what the
// Executor will actually do to store state (spec.md §4.7) closely enough
// for re-validation purposes.
func advance(snap *snapshot.WorldSnapshot, opt planner.Option) *snapshot.WorldSnapshot {
	switch opt.Kind {
	case planner.OptionDeliver:
		return applyDelivery(snap, opt)
	case planner.OptionPickupAndDeliver:
		return applyPickup(snap, opt)
	case planner.OptionBuild, planner.OptionBuildTowardMajorCity:
		return applyBuild(snap, opt)
	case planner.OptionUpgrade:
		return applyUpgrade(snap, opt)
	default:
		return snap
	}
}

func applyDelivery(snap *snapshot.WorldSnapshot, opt planner.Option) *snapshot.WorldSnapshot {
	payment := 0
	for _, card := range snap.Hand() {
		if card.ID == opt.CardID && opt.DemandIndex >= 0 && opt.DemandIndex < len(card.Demands) {
			payment = card.Demands[opt.DemandIndex].Payment
		}
	}
	newMoney, newDebt := model.ApplyMercyRule(snap.Money(), snap.Debt(), payment)

	var newPos *model.Coord
	if len(opt.DeliveryPath) > 0 {
		last := opt.DeliveryPath[len(opt.DeliveryPath)-1]
		newPos = &last
	}

	return snap.Advance(snapshot.Mutation{
		MoneyDelta:         newMoney - snap.Money(),
		DebtDelta:          newDebt - snap.Debt(),
		NewPosition:        newPos,
		CarriedLoadsRemove: []model.LoadType{opt.LoadType},
		DiscardCardID:      opt.CardID,
		DrawnCard:          &model.DemandCard{ID: -opt.CardID},
	})
}

func applyPickup(snap *snapshot.WorldSnapshot, opt planner.Option) *snapshot.WorldSnapshot {
	var newPos *model.Coord
	if len(opt.PickupPath) > 0 {
		last := opt.PickupPath[len(opt.PickupPath)-1]
		newPos = &last
	}
	return snap.Advance(snapshot.Mutation{
		NewPosition:           newPos,
		CarriedLoadsAdd:       []model.LoadType{opt.LoadType},
		LoadAvailabilityDelta: map[model.LoadType]int{opt.LoadType: -1},
	})
}

func applyBuild(snap *snapshot.WorldSnapshot, opt planner.Option) *snapshot.WorldSnapshot {
	cost := 0
	for _, seg := range opt.Segments {
		cost += seg.Cost
	}
	return snap.Advance(snapshot.Mutation{
		MoneyDelta:         -cost,
		TurnBuildCostDelta: cost,
		NewSegments:        opt.Segments,
	})
}

func applyUpgrade(snap *snapshot.WorldSnapshot, opt planner.Option) *snapshot.WorldSnapshot {
	kind, cost, _ := model.UpgradeEdge(snap.TrainType(), opt.UpgradeTarget)
	_ = kind
	target := opt.UpgradeTarget
	return snap.Advance(snapshot.Mutation{
		MoneyDelta:   -cost,
		NewTrainType: &target,
	})
}
