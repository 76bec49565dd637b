package models

// EventType is the tagged-union discriminant for the spectator wire format.
type EventType string

const (
	EventEpochStart EventType = "epoch_start"
	EventAgentAction EventType = "agent_action"
	EventSponsorBoost EventType = "sponsor_boost"
	EventSkillActivation EventType = "skill_activation"
	EventPredictionResult EventType = "prediction_result"
	EventCombatResult EventType = "combat_result"
	EventDefendCost EventType = "defend_cost"
	EventAgentDeath EventType = "agent_death"
	EventEpochEnd EventType = "epoch_end"
	EventBattleEnd EventType = "battle_end"
	EventOddsUpdate EventType = "odds_update"
)

// Event is the wire envelope every subscriber receives: a stable type tag
// plus an opaque structural payload.
type Event struct {
	Type EventType `json:"type"`
	Data interface{} `json:"data"`
}

// --- payload shapes, one per EventType ---

type EpochStartData struct {
	EpochNumber int `json:"epochNumber"`
	MarketData MarketSnapshot `json:"marketData"`
}

type PredictionSummary struct {
	Asset Asset `json:"asset"`
	Direction Direction `json:"direction"`
	Stake int `json:"stake"`
}

type AttackSummary struct {
	Target string `json:"target"`
	Stake int `json:"stake"`
}

type AgentActionData struct {
	AgentID string `json:"agentId"`
	AgentName string `json:"agentName"`
	Prediction PredictionSummary `json:"prediction"`
	Attack *AttackSummary `json:"attack,omitempty"`
	Defend bool `json:"defend"`
	Reasoning string `json:"reasoning"`
}

type SponsorBoostData struct {
	AgentID string `json:"agentId"`
	HPBefore int `json:"hpBefore"`
	HPAfter int `json:"hpAfter"`
	ActualBoost int `json:"actualBoost"`
	AttackBoost int `json:"attackBoost"`
	FreeDefend bool `json:"freeDefend"`
}

type SkillActivationData struct {
	AgentID string `json:"agentId"`
	Skill string `json:"skill"`
	Target string `json:"target,omitempty"`
}

type PredictionResultData struct {
	AgentID string `json:"agentId"`
	Asset Asset `json:"asset"`
	Direction Direction `json:"direction"`
	ActualChange float64 `json:"actualChange"`
	Correct bool `json:"correct"`
	HPChange int `json:"hpChange"`
	HPAfter int `json:"hpAfter"`
}

type CombatResultData struct {
	AttackerID string `json:"attackerId"`
	TargetID string `json:"targetId"`
	Stance Stance `json:"stance"`
	Outcome CombatOutcome `json:"outcome"`
	Stake int `json:"stake"`
	HPChangeAttacker int `json:"hpChangeAttacker"`
	HPChangeTarget int `json:"hpChangeTarget"`
	Damage int `json:"damage"`
	Blocked bool `json:"blocked"`
}

type DefendCostData struct {
	AgentID string `json:"agentId"`
	Cost int `json:"cost"`
}

type AgentDeathData struct {
	AgentID string `json:"agentId"`
	AgentName string `json:"agentName"`
	AgentClass Class `json:"agentClass"`
	EpochNumber int `json:"epochNumber"`
	Cause DeathCause `json:"cause"`
	FinalWords string `json:"finalWords"`
	KilledBy string `json:"killedBy,omitempty"`
}

type AgentStateSnapshot struct {
	ID string `json:"id"`
	Name string `json:"name"`
	Class Class `json:"class"`
	HP int `json:"hp"`
	IsAlive bool `json:"isAlive"`
}

type EpochEndData struct {
	AgentStates []AgentStateSnapshot `json:"agentStates"`
	BattleComplete bool `json:"battleComplete"`
}

type BattleEndData struct {
	WinnerID string `json:"winnerId"`
	WinnerName string `json:"winnerName"`
	TotalEpochs int `json:"totalEpochs"`
}

type OddsUpdateData struct {
	Odds map[string]float64 `json:"odds"`
}
