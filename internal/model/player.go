package model

// Player is one seat in a game. UserID is empty for bot seats.
type Player struct {
	ID               string
	GameID           string
	UserID           string // empty for bot seats
	IsBot            bool
	BotConfig        *BotConfig // nil for human seats
	Name             string
	Color            string // "#RRGGBB", unique within a game
	Money            int    // ECU millions, non-negative
	Debt             int    // ECU millions, non-negative
	TrainType        TrainType
	Train            TrainState
	CurrentTurnNum   int
	IsOnline         bool
	Hand             []DemandCard
	CreatedAtUnixSec int64 // seat order is CreatedAt ASC, spec.md §6
}

// CarriedCount returns the number of load tokens currently on the train.
func (p Player) CarriedCount() int {
	return len(p.Train.CarriedLoads)
}

// Clone returns a deep copy of p so callers can mutate it without
// affecting the repository's own copy.
func (p Player) Clone() Player {
	cp := p
	if p.BotConfig != nil {
		bc := *p.BotConfig
		cp.BotConfig = &bc
	}
	if p.Train.Position != nil {
		pos := *p.Train.Position
		cp.Train.Position = &pos
	}
	cp.Train.MovementHistory = append([]Coord(nil), p.Train.MovementHistory...)
	cp.Train.CarriedLoads = append([]LoadType(nil), p.Train.CarriedLoads...)
	cp.Hand = append([]DemandCard(nil), p.Hand...)
	return cp
}

// ApplyMercyRule implements the Mercy Rule decided in spec.md §9: delivery
// payment first repays outstanding debt, and only the remainder credits
// cash. Both money and debt remain non-negative (spec.md §8 invariant 2).
func ApplyMercyRule(money, debt, payment int) (newMoney, newDebt int) {
	if payment <= 0 {
		return money, debt
	}
	if debt >= payment {
		return money, debt - payment
	}
	remainder := payment - debt
	return money + remainder, 0
}
