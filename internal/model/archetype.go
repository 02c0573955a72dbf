package model

// Skill is a bot's base-weight and noise configuration (spec.md §6).
type Skill string

const (
	SkillEasy   Skill = "easy"
	SkillMedium Skill = "medium"
	SkillHard   Skill = "hard"
)

// Archetype is a bot's behavioral lens: it scales the base skill weights
// per-dimension and adds four archetype-specific dimensions (spec.md §6).
type Archetype string

const (
	ArchetypeBackboneBuilder      Archetype = "backbone_builder"
	ArchetypeFreightOptimizer     Archetype = "freight_optimizer"
	ArchetypeTrunkSprinter        Archetype = "trunk_sprinter"
	ArchetypeContinentalConnector Archetype = "continental_connector"
	ArchetypeOpportunist          Archetype = "opportunist"
)

// BotConfig is the per-seat behavior configuration stored on a bot
// player row (spec.md §3: "optional bot profile (archetype + skill)").
type BotConfig struct {
	Archetype Archetype
	Skill     Skill
}
