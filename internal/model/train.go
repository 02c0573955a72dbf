package model

// TrainType is one of the four train classes a player can own. The
// numbers in parentheses in spec.md §3 are captured by Capacity/Speed
// below.
type TrainType string

const (
	TrainFreight     TrainType = "Freight"
	TrainFastFreight TrainType = "FastFreight"
	TrainHeavy       TrainType = "HeavyFreight"
	TrainSuperfreight TrainType = "Superfreight"
)

// Capacity returns the number of load tokens the train type can carry.
func (t TrainType) Capacity() int {
	switch t {
	case TrainHeavy, TrainSuperfreight:
		return 3
	default:
		return 2
	}
}

// Speed returns the mileposts-per-turn movement allowance.
func (t TrainType) Speed() int {
	switch t {
	case TrainFastFreight, TrainSuperfreight:
		return 12
	default:
		return 9
	}
}

// Valid reports whether t is one of the four known train types.
func (t TrainType) Valid() bool {
	switch t {
	case TrainFreight, TrainFastFreight, TrainHeavy, TrainSuperfreight:
		return true
	default:
		return false
	}
}

// UpgradeKind distinguishes a capacity/speed upgrade from a lateral
// crossgrade, since they carry different costs and eligibility rules
// (spec.md §4.3, §6).
type UpgradeKind string

const (
	UpgradeKindUpgrade   UpgradeKind = "upgrade"
	UpgradeKindCrossgrade UpgradeKind = "crossgrade"
)

const (
	UpgradeCost    = 20
	CrossgradeCost = 5
)

// upgradeEdge describes one edge of the train upgrade graph.
type upgradeEdge struct {
	To   TrainType
	Kind UpgradeKind
	Cost int
}

// upgradeGraph is the acyclic upgrade graph from spec.md §3: Freight can
// become FastFreight or HeavyFreight; FastFreight and HeavyFreight can
// reach Superfreight (upgrade) or cross to each other (crossgrade);
// Superfreight is terminal.
var upgradeGraph = map[TrainType][]upgradeEdge{
	TrainFreight: {
		{To: TrainFastFreight, Kind: UpgradeKindUpgrade, Cost: UpgradeCost},
		{To: TrainHeavy, Kind: UpgradeKindUpgrade, Cost: UpgradeCost},
	},
	TrainFastFreight: {
		{To: TrainSuperfreight, Kind: UpgradeKindUpgrade, Cost: UpgradeCost},
		{To: TrainHeavy, Kind: UpgradeKindCrossgrade, Cost: CrossgradeCost},
	},
	TrainHeavy: {
		{To: TrainSuperfreight, Kind: UpgradeKindUpgrade, Cost: UpgradeCost},
		{To: TrainFastFreight, Kind: UpgradeKindCrossgrade, Cost: CrossgradeCost},
	},
	TrainSuperfreight: {},
}

// UpgradeEdge looks up the edge from 'from' to 'to' in the upgrade graph.
// ok is false if no such edge exists (including target == from).
func UpgradeEdge(from, to TrainType) (kind UpgradeKind, cost int, ok bool) {
	for _, e := range upgradeGraph[from] {
		if e.To == to {
			return e.Kind, e.Cost, true
		}
	}
	return "", 0, false
}

// TrainState is the mutable per-turn state of a player's train.
type TrainState struct {
	Position          *Coord // nil until placed after initial build
	RemainingMovement int
	MovementHistory   []Coord
	CarriedLoads      []LoadType
	PendingFerryToken string // non-empty while a ferry crossing is in progress
}
