package models

import "time"

// Bet is a single spectator wager.
type Bet struct {
	ID string
	BattleID string
	Bettor string
	AgentID string
	Amount float64
	PlacedAt time.Time
	Settled bool
	Payout float64
}

// SponsorTier is one of the five fixed sponsorship tiers.
type SponsorTier string

const (
	TierT1 SponsorTier = "T1"
	TierT2 SponsorTier = "T2"
	TierT3 SponsorTier = "T3"
	TierT4 SponsorTier = "T4"
	TierT5 SponsorTier = "T5"
)

// TierEffect is the deterministic effect triple a tier maps to.
type TierEffect struct {
	HPBoost int
	AttackBoost int
	FreeDefend bool
}

// TierEffects is the fixed tier table. Values are chosen to scale roughly
// geometrically with sponsorship price across the five tiers.
var TierEffects = map[SponsorTier]TierEffect{
	TierT1: {HPBoost: 20, AttackBoost: 0, FreeDefend: false},
	TierT2: {HPBoost: 50, AttackBoost: 5, FreeDefend: false},
	TierT3: {HPBoost: 100, AttackBoost: 10, FreeDefend: false},
	TierT4: {HPBoost: 175, AttackBoost: 15, FreeDefend: true},
	TierT5: {HPBoost: 300, AttackBoost: 25, FreeDefend: true},
}

// Sponsorship is a single accepted-or-recorded sponsor action.
type Sponsorship struct {
	ID string
	BattleID string
	Beneficiary string
	Sponsor string
	Amount float64
	Tier SponsorTier
	Epoch *int
	Accepted bool
	Message string
	PlacedAt time.Time
}
