package models

// Phase is the storm/combat gating phase derived from epoch index
//.
type Phase string

const (
	PhaseLoot Phase = "LOOT"
	PhaseHunt Phase = "HUNT"
	PhaseBlood Phase = "BLOOD"
	PhaseFinalStand Phase = "FINAL_STAND"
)

// DeathCause classifies what finally zeroed an agent's HP.
type DeathCause string

const (
	CausePrediction DeathCause = "prediction"
	CauseCombat DeathCause = "combat"
	CauseBleed DeathCause = "bleed"
	CauseMulti DeathCause = "multi"
)

// CombatOutcome names which cell of the triangle table resolved the clash
//.
type CombatOutcome string

const (
	OutcomeOverpower CombatOutcome = "overpower"
	OutcomeAbsorb CombatOutcome = "absorb"
	OutcomeUncontested CombatOutcome = "uncontested"
	OutcomeBypass CombatOutcome = "bypass"
	OutcomeStalemate CombatOutcome = "stalemate"
)

// MoveEvent records an applied or rejected movement.
type MoveEvent struct {
	AgentID string
	From HexCoord
	To HexCoord
	Accepted bool
}

// SponsorBoostEvent records a single applied sponsorship effect.
type SponsorBoostEvent struct {
	AgentID string
	HPBefore int
	HPAfter int
	ActualBoost int
	AttackBoost int
	FreeDefend bool
}

// SkillActivationEvent records a skill firing this epoch.
type SkillActivationEvent struct {
	AgentID string
	Skill string
	Target string
}

// PredictionResultEvent records a settled market prediction.
type PredictionResultEvent struct {
	AgentID string
	Asset Asset
	Direction Direction
	ActualChange float64
	Correct bool
	HPChange int
	HPAfter int
}

// CombatResultEvent records one resolved attacker/target clash.
type CombatResultEvent struct {
	AttackerID string
	TargetID string
	Stance Stance
	TargetStance Stance
	Outcome CombatOutcome
	Stake int
	HPChangeAttacker int
	HPChangeTarget int
	Damage int
	Blocked bool
	Betrayal bool
}

// DefendCostEvent records the 3% self-inflicted defend tax.
type DefendCostEvent struct {
	AgentID string
	Cost int
	Waived bool
}

// BleedEvent records the mandatory 2% epoch-end attrition.
type BleedEvent struct {
	AgentID string
	Amount int
	Waived bool
}

// DeathEvent records an agent crossing zero HP.
type DeathEvent struct {
	AgentID string
	AgentName string
	AgentClass Class
	EpochNumber int
	Cause DeathCause
	KilledBy string
}

// EpochRecord is the append-only, sealed-once result of one Resolve call
//.
type EpochRecord struct {
	EpochNumber int
	Market MarketSnapshot

	Decisions map[string]Decision

	Moves []MoveEvent
	SponsorBoosts []SponsorBoostEvent
	Skills []SkillActivationEvent
	Predictions []PredictionResultEvent
	Combats []CombatResultEvent
	DefendCosts []DefendCostEvent
	Bleeds []BleedEvent
	Deaths []DeathEvent

	BattleComplete bool
	WinnerID string
}
