// Package betting implements the pari-mutuel betting pool:
// bet acceptance gated on betting phase, live odds, and idempotent
// settlement with a carry-forward jackpot. A mutex-guarded in-process
// ledger, append-only, with derived views computed on read rather than
// maintained incrementally.
package betting

import (
	"errors"
	"math"

	"github.com/btcsuite/btcd/btcutil"
)

// ErrInvalidPhase is returned when a bet is placed outside BettingOpen.
var ErrInvalidPhase = errors.New("betting: battle is not accepting bets")

const (
	minProbability = 0.02
	maxProbability = 0.95
)

// AgentOddsInput is one alive roster member's current standing, the raw
// material for the odds formula.
type AgentOddsInput struct {
	AgentID string
	HP int
	WinRate float64 // imputed 0.5 by the caller for a never-battled agent
}

// ComputeOdds computes a win probability for every agent in agents, given
// the current pool distribution (agentID -> total bet amount) and
// totalPool across the whole battle.
func ComputeOdds(agents []AgentOddsInput, poolByAgent map[string]float64, totalPool float64) map[string]float64 {
	totalHP := 0
	for _, a := range agents {
		totalHP += a.HP
	}

	odds := make(map[string]float64, len(agents))
	for _, a := range agents {
		hpShare := 0.0
		if totalHP > 0 {
			hpShare = float64(a.HP) / float64(totalHP)
		}
		poolShare := 0.0
		if totalPool > 0 {
			poolShare = poolByAgent[a.AgentID] / totalPool
		}
		probability := 0.4*hpShare + 0.3*(1-poolShare) + 0.3*a.WinRate
		if probability < minProbability {
			probability = minProbability
		}
		if probability > maxProbability {
			probability = maxProbability
		}
		odds[a.AgentID] = round2(1 / probability)
	}
	return odds
}

// centSatoshiScale maps two-decimal currency rounding onto btcutil's
// satoshi (1e-8) precision: dividing by 1e6 before NewAmount and
// multiplying back after lands the rounding on the cent, not the satoshi.
const centSatoshiScale = 1e6

// round2 rounds v to the nearest cent using btcutil.NewAmount's
// satoshi-precision fixed-point rounding rather than naive float
// multiplication, the same IEEE-754 pitfall btcutil.NewAmount exists to
// avoid. Falls back to math.Round for a value NewAmount rejects (NaN,
// Inf, or out of its representable range).
func round2(v float64) float64 {
	amt, err := btcutil.NewAmount(v / centSatoshiScale)
	if err != nil {
		return math.Round(v*100) / 100
	}
	return float64(amt) / 100
}
