package planner

import "ironroute-backend/internal/model"

// Dimension is one axis the scoring function weighs an option along
// (spec.md §4.5/§6).
type Dimension string

const (
	DimImmediateIncome      Dimension = "immediate_income"
	DimIncomePerMilepost    Dimension = "income_per_milepost"
	DimMultiDeliveryPotential Dimension = "multi_delivery_potential"
	DimNetworkExpansion     Dimension = "network_expansion"
	DimVictoryProgress      Dimension = "victory_progress"
	DimCompetitorBlocking   Dimension = "competitor_blocking"
	DimRiskExposure         Dimension = "risk_exposure"
	DimLoadScarcity         Dimension = "load_scarcity"

	// Archetype-specific dimensions (spec.md §6).
	DimUpgradeROI           Dimension = "upgrade_roi"
	DimBackboneAlignment    Dimension = "backbone_alignment"
	DimLoadCombinationScore Dimension = "load_combination_score"
	DimMajorCityProximity   Dimension = "major_city_proximity"
)

// skillProfile holds one skill tier's weights plus its noise
// probabilities and lookahead horizon (spec.md §6 normative table).
type skillProfile struct {
	weights              map[Dimension]float64
	horizon              int
	randomChoiceProb     float64
	missedOptionProb     float64
}

// skillProfiles is the normative skill weight table from spec.md §6.
var skillProfiles = map[model.Skill]skillProfile{
	model.SkillEasy: {
		weights: map[Dimension]float64{
			DimImmediateIncome:        0.8,
			DimIncomePerMilepost:      0.2,
			DimMultiDeliveryPotential: 0,
			DimNetworkExpansion:       0,
			DimVictoryProgress:        0,
			DimCompetitorBlocking:     0,
			DimRiskExposure:           0,
			DimLoadScarcity:           0,
		},
		horizon:          1,
		randomChoiceProb: 0.20,
		missedOptionProb: 0.30,
	},
	model.SkillMedium: {
		weights: map[Dimension]float64{
			DimImmediateIncome:        0.5,
			DimIncomePerMilepost:      0.7,
			DimMultiDeliveryPotential: 0.3,
			DimNetworkExpansion:       0.5,
			DimVictoryProgress:        0.3,
			DimCompetitorBlocking:     0,
			DimRiskExposure:           0.3,
			DimLoadScarcity:           0,
		},
		horizon:          3,
		randomChoiceProb: 0.05,
		missedOptionProb: 0.10,
	},
	model.SkillHard: {
		weights: map[Dimension]float64{
			DimImmediateIncome:        0.5,
			DimIncomePerMilepost:      0.7,
			DimMultiDeliveryPotential: 0.7,
			DimNetworkExpansion:       0.7,
			DimVictoryProgress:        0.7,
			DimCompetitorBlocking:     0.5,
			DimRiskExposure:           0.5,
			DimLoadScarcity:           0.5,
		},
		horizon:          5,
		randomChoiceProb: 0,
		missedOptionProb: 0,
	},
}

// archetypeMultipliers overrides the base skill weights per-dimension
// and adds the four archetype-specific dimensions (spec.md §6). Values
// are this implementation's matrices: each archetype emphasizes the
// dimensions its name suggests and leaves the rest at a neutral 1.0;
// spec.md defers to "the repo" for exact numbers without providing them.
var archetypeMultipliers = map[model.Archetype]map[Dimension]float64{
	model.ArchetypeBackboneBuilder: {
		DimNetworkExpansion:     1.8,
		DimBackboneAlignment:    2.0,
		DimMajorCityProximity:   1.3,
		DimImmediateIncome:      0.7,
	},
	model.ArchetypeFreightOptimizer: {
		DimIncomePerMilepost:      1.8,
		DimLoadCombinationScore:   1.6,
		DimMultiDeliveryPotential: 1.5,
		DimNetworkExpansion:       0.6,
	},
	model.ArchetypeTrunkSprinter: {
		DimImmediateIncome:   1.6,
		DimIncomePerMilepost: 1.4,
		DimRiskExposure:      0.6,
		DimNetworkExpansion:  0.8,
	},
	model.ArchetypeContinentalConnector: {
		DimNetworkExpansion:   1.7,
		DimMajorCityProximity: 1.9,
		DimVictoryProgress:    1.3,
		DimImmediateIncome:    0.6,
	},
	model.ArchetypeOpportunist: {
		DimCompetitorBlocking: 1.8,
		DimLoadScarcity:       1.7,
		DimRiskExposure:       1.3,
		DimUpgradeROI:         1.2,
	},
}

// multiplier returns archetype's multiplier for dimension, defaulting
// to a neutral 1.0 for any dimension the archetype does not emphasize.
func multiplier(archetype model.Archetype, dim Dimension) float64 {
	if m, ok := archetypeMultipliers[archetype][dim]; ok {
		return m
	}
	return 1.0
}

// archetypeSpecificDims are the four dimensions spec.md §6 adds on top
// of the base skill weights; they scale with the skill's lookahead
// horizon instead of having their own base-weight table entry, so a
// higher-horizon skill leans on archetype nuance more than a shallow one.
var archetypeSpecificDims = map[Dimension]bool{
	DimUpgradeROI:           true,
	DimBackboneAlignment:    true,
	DimLoadCombinationScore: true,
	DimMajorCityProximity:   true,
}

// weight returns skill's base weight for dim.
func weight(skill model.Skill, dim Dimension) float64 {
	if archetypeSpecificDims[dim] {
		return float64(skillProfiles[skill].horizon) / 5.0
	}
	return skillProfiles[skill].weights[dim]
}
