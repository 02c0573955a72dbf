// Package planner enumerates candidate turn options, scores them
// against a bot's skill/archetype configuration, applies behavioral
// noise, and assembles the resulting TurnPlan (spec.md §4.5). Grounded
// on the teacher's internal/game AI-adjacent scoring helpers
// (milestone/award value estimation), generalized into a full
// weighted-dimension scorer since the teacher never needed noise or
// multi-action plans.
package planner

import (
	"math/rand"

	"ironroute-backend/internal/feasibility"
	"ironroute-backend/internal/model"
	"ironroute-backend/internal/pathfinder"
	"ironroute-backend/internal/snapshot"
	"ironroute-backend/internal/topology"
)

// OptionKind tags the polymorphic action payload (spec.md §9 DESIGN
// NOTES: "FeasibleOption is a tagged variant").
type OptionKind string

const (
	OptionPass                 OptionKind = "pass"
	OptionDeliver              OptionKind = "deliver"
	OptionPickupAndDeliver     OptionKind = "pickup_and_deliver"
	OptionBuild                OptionKind = "build"
	OptionBuildTowardMajorCity OptionKind = "build_toward_major_city"
	OptionUpgrade              OptionKind = "upgrade"
)

// Option is one candidate action, feasibility-checked and scored.
type Option struct {
	Kind            OptionKind
	CardID          int
	DemandIndex     int
	LoadType        model.LoadType
	PickupCity      string
	PickupPath      []model.Coord
	DeliveryPath    []model.Coord
	Segments        []model.TrackSegment
	TargetCityGroup string
	UpgradeTarget   model.TrainType
	Score           float64
	Feasible        bool
	RejectReason    string
}

// TurnPlan is the ordered sequence of actions the Executor will run,
// plus the full scored/infeasible candidate lists considered to reach
// that selection (spec.md §3 StrategyAudit: feasibleOptions,
// rejectedOptions).
type TurnPlan struct {
	Actions         []Option
	FeasibleOptions []Option
	RejectedOptions []Option
}

// Planner ties the Pathfinder and FeasibilityService together with a
// seeded random source, per spec.md §9 ("inject a seeded RNG into the
// planner so tests of noise behavior are reproducible").
type Planner struct {
	topo        *topology.Topology
	pathfinder  *pathfinder.Pathfinder
	feasibility *feasibility.Service
	rng         *rand.Rand
}

// New constructs a Planner. rng should be seeded deterministically in
// tests and from a real entropy source in production.
func New(topo *topology.Topology, pf *pathfinder.Pathfinder, fs *feasibility.Service, rng *rand.Rand) *Planner {
	return &Planner{topo: topo, pathfinder: pf, feasibility: fs, rng: rng}
}

// Plan runs the full spec.md §4.5 pipeline: enumerate, filter, score,
// apply noise, select.
func (p *Planner) Plan(snap *snapshot.WorldSnapshot, config model.BotConfig) *TurnPlan {
	candidates := p.enumerate(snap)

	var feasible, rejected []Option
	for _, c := range candidates {
		result := p.checkFeasible(snap, c)
		c.Feasible = result.Feasible
		c.RejectReason = result.Reason
		if result.Feasible {
			feasible = append(feasible, c)
		} else {
			rejected = append(rejected, c)
		}
	}
	if len(feasible) == 0 {
		return &TurnPlan{Actions: []Option{{Kind: OptionPass, Feasible: true}}, RejectedOptions: rejected}
	}

	for i := range feasible {
		feasible[i].Score = p.score(snap, config, feasible[i])
	}
	sortByScoreDesc(feasible)

	profile := skillProfiles[config.Skill]
	selected := p.applyNoise(feasible, profile)

	plan := &TurnPlan{Actions: []Option{selected}, FeasibleOptions: feasible, RejectedOptions: rejected}
	if secondary, ok := p.secondaryAction(snap, feasible, selected); ok {
		plan.Actions = append(plan.Actions, secondary)
	}
	return plan
}

// enumerate builds every candidate named in spec.md §4.5 step 1,
// without regard to feasibility.
func (p *Planner) enumerate(snap *snapshot.WorldSnapshot) []Option {
	var out []Option

	for _, card := range snap.Hand() {
		for i, demand := range card.Demands {
			if hasCarried(snap, demand.LoadType) {
				movePath, _ := p.pathfinder.MoveSearch(snap, destinationCoord(p.topo, demand.DestinationCity), snap.RemainingMovement())
				out = append(out, Option{
					Kind:         OptionDeliver,
					CardID:       card.ID,
					DemandIndex:  i,
					LoadType:     demand.LoadType,
					DeliveryPath: movePath,
				})
				continue
			}
			pickupCity, pickupCoord, ok := nearestSource(p.topo, snap, demand.LoadType)
			if !ok {
				continue
			}
			pickupPath, _ := p.pathfinder.MoveSearch(snap, pickupCoord, snap.RemainingMovement())
			out = append(out, Option{
				Kind:        OptionPickupAndDeliver,
				CardID:      card.ID,
				DemandIndex: i,
				LoadType:    demand.LoadType,
				PickupCity:  pickupCity,
				PickupPath:  pickupPath,
			})
		}
	}

	budget := model.PerTurnBuildBudget - snap.TurnBuildCost()
	for _, group := range snap.MajorCityGroups() {
		if snap.IsConnectedToMajorCity(group.Name) {
			continue
		}
		var virtualStart *model.Coord
		if len(snap.OwnGraph()) == 0 {
			virtualStart = snap.Position()
		}
		segments, _ := p.pathfinder.BuildSearch(snap, virtualStart, budget, 20)
		if len(segments) == 0 {
			continue
		}
		out = append(out, Option{Kind: OptionBuildTowardMajorCity, TargetCityGroup: group.Name, Segments: segments})
	}

	current := snap.TrainType()
	for _, target := range []model.TrainType{model.TrainFreight, model.TrainFastFreight, model.TrainHeavy, model.TrainSuperfreight} {
		if target == current {
			continue
		}
		if _, _, ok := model.UpgradeEdge(current, target); ok {
			out = append(out, Option{Kind: OptionUpgrade, UpgradeTarget: target})
		}
	}

	out = append(out, Option{Kind: OptionPass})
	return out
}

func (p *Planner) checkFeasible(snap *snapshot.WorldSnapshot, opt Option) feasibility.Result {
	switch opt.Kind {
	case OptionPass:
		return feasibility.Result{Feasible: true}
	case OptionDeliver:
		return p.feasibility.ValidateDelivery(snap, opt.CardID, opt.DemandIndex)
	case OptionPickupAndDeliver:
		return p.feasibility.ValidatePickup(snap, opt.LoadType, opt.PickupCity)
	case OptionBuild, OptionBuildTowardMajorCity:
		return p.feasibility.ValidateBuild(snap, opt.Segments)
	case OptionUpgrade:
		return p.feasibility.ValidateUpgrade(snap, opt.UpgradeTarget)
	default:
		return feasibility.Result{Feasible: false, Reason: "unknown option kind"}
	}
}

func hasCarried(snap *snapshot.WorldSnapshot, loadType model.LoadType) bool {
	for _, lt := range snap.CarriedLoads() {
		if lt == loadType {
			return true
		}
	}
	return false
}

// destinationCoord resolves a city name to a grid coordinate for the
// move search; ambiguity (multiple mileposts sharing a name) is
// resolved by taking the first configured node, matching how
// IsCityConnected treats any matching node as equivalent.
func destinationCoord(topo *topology.Topology, city string) model.Coord {
	nodes := topo.CityNodes(city)
	if len(nodes) == 0 {
		return model.Coord{}
	}
	return nodes[0]
}

// nearestSource finds a city that currently has loadType available
// (either at a producing city with global stock, or in a dropped-load
// bucket) and resolves it to a coordinate.
func nearestSource(topo *topology.Topology, snap *snapshot.WorldSnapshot, loadType model.LoadType) (city string, coord model.Coord, ok bool) {
	if snap.LoadAvailability()[loadType] > 0 {
		for _, producer := range snap.Producers(loadType) {
			nodes := topo.CityNodes(producer)
			if len(nodes) > 0 {
				return producer, nodes[0], true
			}
		}
	}
	for _, group := range snap.MajorCityGroups() {
		for _, lt := range snap.DroppedAt(group.Name) {
			if lt == loadType {
				return group.Name, group.CenterMilepost, true
			}
		}
	}
	return "", model.Coord{}, false
}

func sortByScoreDesc(options []Option) {
	for i := 1; i < len(options); i++ {
		for j := i; j > 0 && options[j].Score > options[j-1].Score; j-- {
			options[j], options[j-1] = options[j-1], options[j]
		}
	}
}

// applyNoise implements spec.md §4.5 step 4: with randomChoiceProbability
// return a random feasible option; otherwise, with missedOptionProbability
// drop the top candidate and take the next.
func (p *Planner) applyNoise(ranked []Option, profile skillProfile) Option {
	if p.rng.Float64() < profile.randomChoiceProb {
		return ranked[p.rng.Intn(len(ranked))]
	}
	if p.rng.Float64() < profile.missedOptionProb && len(ranked) > 1 {
		return ranked[1]
	}
	return ranked[0]
}

// secondaryAction appends a second compatible action (spec.md §4.5 step
// 5) if the primary action leaves remaining movement and money and a
// different feasible option of a complementary kind exists.
func (p *Planner) secondaryAction(snap *snapshot.WorldSnapshot, ranked []Option, primary Option) (Option, bool) {
	if primary.Kind == OptionPass || primary.Kind == OptionUpgrade {
		return Option{}, false
	}
	if snap.RemainingMovement() <= 0 || snap.Money() <= 0 {
		return Option{}, false
	}
	for _, candidate := range ranked {
		if candidate.Kind == primary.Kind && candidate.CardID == primary.CardID {
			continue
		}
		if candidate.Kind == OptionBuild || candidate.Kind == OptionBuildTowardMajorCity {
			return candidate, true
		}
	}
	return Option{}, false
}
