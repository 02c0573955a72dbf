package model

// Demand is one of the three entries on a DemandCard: deliver a load type
// to a destination city for a payment in ECU millions.
type Demand struct {
	DestinationCity string
	LoadType        LoadType
	Payment         int
}

// DemandCard is a hand card; fulfilling any one of its three demands
// discards the whole card (spec.md §3).
type DemandCard struct {
	ID      int
	Demands [3]Demand
}

// HandSize is the number of demand cards a player holds once the game is
// active (spec.md §3, invariant 9 in §8).
const HandSize = 3
