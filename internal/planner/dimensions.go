package planner

import (
	"ironroute-backend/internal/model"
	"ironroute-backend/internal/snapshot"
)

// score sums weight[skill,d] * multiplier[archetype,d] * value(opt,d)
// across every dimension (spec.md §4.5 step 3).
func (p *Planner) score(snap *snapshot.WorldSnapshot, config model.BotConfig, opt Option) float64 {
	dims := []Dimension{
		DimImmediateIncome, DimIncomePerMilepost, DimMultiDeliveryPotential,
		DimNetworkExpansion, DimVictoryProgress, DimCompetitorBlocking,
		DimRiskExposure, DimLoadScarcity,
		DimUpgradeROI, DimBackboneAlignment, DimLoadCombinationScore, DimMajorCityProximity,
	}
	total := 0.0
	for _, d := range dims {
		total += weight(config.Skill, d) * multiplier(config.Archetype, d) * dimensionValue(snap, opt, d)
	}
	return total
}

func dimensionValue(snap *snapshot.WorldSnapshot, opt Option, dim Dimension) float64 {
	switch dim {
	case DimImmediateIncome:
		return float64(paymentOf(snap, opt))
	case DimIncomePerMilepost:
		return float64(paymentOf(snap, opt)) / float64(mileposts(opt)+1)
	case DimMultiDeliveryPotential:
		return float64(sameLoadDemandCount(snap, opt))
	case DimNetworkExpansion:
		return float64(len(opt.Segments))
	case DimVictoryProgress:
		return float64(snap.Money()+paymentOf(snap, opt)) / float64(model.VictoryThresholdMillions)
	case DimCompetitorBlocking:
		return competitorBlockingValue(snap, opt)
	case DimRiskExposure:
		return -riskOf(snap, opt)
	case DimLoadScarcity:
		return scarcityOf(snap, opt)
	case DimUpgradeROI:
		return upgradeROI(snap, opt)
	case DimBackboneAlignment:
		return backboneAlignment(snap, opt)
	case DimLoadCombinationScore:
		return float64(sameLoadDemandCount(snap, opt))
	case DimMajorCityProximity:
		return majorCityProximity(opt)
	default:
		return 0
	}
}

func paymentOf(snap *snapshot.WorldSnapshot, opt Option) int {
	if opt.Kind != OptionDeliver && opt.Kind != OptionPickupAndDeliver {
		return 0
	}
	demand, ok := demandFor(snap, opt.CardID, opt.DemandIndex)
	if !ok {
		return 0
	}
	return demand.Payment
}

func demandFor(snap *snapshot.WorldSnapshot, cardID, demandIndex int) (model.Demand, bool) {
	for _, card := range snap.Hand() {
		if card.ID == cardID && demandIndex >= 0 && demandIndex < len(card.Demands) {
			return card.Demands[demandIndex], true
		}
	}
	return model.Demand{}, false
}

func mileposts(opt Option) int {
	n := len(opt.PickupPath) + len(opt.DeliveryPath)
	if n > 0 {
		n--
	}
	return n
}

// sameLoadDemandCount counts every hand demand (opt's own included)
// sharing opt's load type, a proxy for how many future deliveries this
// pickup sets up.
func sameLoadDemandCount(snap *snapshot.WorldSnapshot, opt Option) int {
	if opt.LoadType == "" {
		return 0
	}
	count := 0
	for _, card := range snap.Hand() {
		for _, d := range card.Demands {
			if d.LoadType == opt.LoadType {
				count++
			}
		}
	}
	return count
}

// competitorBlockingValue rewards claiming track near nodes other
// players already own, since it denies them the same expansion.
func competitorBlockingValue(snap *snapshot.WorldSnapshot, opt Option) float64 {
	if len(opt.Segments) == 0 {
		return 0
	}
	own := make(map[[2]model.Coord]bool)
	for _, seg := range snap.OwnSegments() {
		a, b := seg.CanonicalKey()
		own[[2]model.Coord{a, b}] = true
	}
	othersOwn := make(map[model.Coord]bool)
	for _, seg := range snap.AllSegments() {
		if a, b := seg.CanonicalKey(); own[[2]model.Coord{a, b}] {
			continue
		}
		othersOwn[seg.A] = true
		othersOwn[seg.B] = true
	}
	score := 0.0
	for _, seg := range opt.Segments {
		if othersOwn[seg.A] || othersOwn[seg.B] {
			score++
		}
	}
	return score
}

// riskOf approximates exposure to a pickup's load disappearing before
// the bot reaches it: inversely proportional to remaining stock.
func riskOf(snap *snapshot.WorldSnapshot, opt Option) float64 {
	if opt.Kind != OptionPickupAndDeliver {
		return 0
	}
	avail := snap.LoadAvailability()[opt.LoadType]
	if avail <= 0 {
		return 1
	}
	return 1.0 / float64(avail)
}

func scarcityOf(snap *snapshot.WorldSnapshot, opt Option) float64 {
	if opt.LoadType == "" {
		return 0
	}
	avail := snap.LoadAvailability()[opt.LoadType]
	return 1.0 / float64(avail+1)
}

// upgradeROI weighs capacity and speed gains against cost.
func upgradeROI(snap *snapshot.WorldSnapshot, opt Option) float64 {
	if opt.Kind != OptionUpgrade {
		return 0
	}
	current := snap.TrainType()
	_, cost, ok := model.UpgradeEdge(current, opt.UpgradeTarget)
	if !ok || cost <= 0 {
		return 0
	}
	gainCapacity := opt.UpgradeTarget.Capacity() - current.Capacity()
	gainSpeed := opt.UpgradeTarget.Speed() - current.Speed()
	return float64(gainCapacity+gainSpeed) / float64(cost)
}

// backboneAlignment scores a build option by its number of new
// segments, matching a "backbone" archetype's preference for long runs;
// it does not measure whether those segments form a straight run.
func backboneAlignment(snap *snapshot.WorldSnapshot, opt Option) float64 {
	if len(opt.Segments) == 0 {
		return 0
	}
	return float64(len(opt.Segments))
}

// majorCityProximity rewards build-toward-major-city options that
// reach their target in fewer new segments.
func majorCityProximity(opt Option) float64 {
	if opt.Kind != OptionBuildTowardMajorCity || len(opt.Segments) == 0 {
		return 0
	}
	return 1.0 / float64(len(opt.Segments))
}
