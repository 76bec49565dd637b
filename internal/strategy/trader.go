package strategy

import (
	"context"
	"math/rand"
	"strings"

	"github.com/rawblock/gladiator-arena/internal/llmclient"
	"github.com/rawblock/gladiator-arena/pkg/models"
)

const traderPersonality = `You are a Trader gladiator: risk-managed and market-obsessed. You avoid
direct violence, preferring to out-predict the market and sabotage rivals
from a distance.`

// Trader clamps stake to a conservative band and never attacks directly
//.
type Trader struct {
	llm llmclient.Client
	rng *rand.Rand
}

func NewTrader(llm llmclient.Client) *Trader {
	return &Trader{llm: llm, rng: rand.New(rand.NewSource(1))}
}

func (t *Trader) Personality() string { return traderPersonality }

func (t *Trader) Skill() SkillDefinition {
	return SkillDefinition{
		Name: "INSIDER_INFO",
		Description: "This epoch's prediction auto-wins.",
		Cooldown: models.DefaultSkillCooldown,
	}
}

func (t *Trader) Decide(ctx context.Context, req DecisionRequest) (models.Decision, error) {
	raw, _, err := callLLM(ctx, t.llm, t.Personality(), req)
	var d models.Decision
	if err != nil {
		d = models.NewDefaultDecision(req.Self.ID, models.AssetBTC)
		d.Prediction.StakePercent = 20
	} else {
		d = toRawDecision(req.Self.ID, raw)
	}
	return t.guardrails(d, req), nil
}

func (t *Trader) guardrails(d models.Decision, req DecisionRequest) models.Decision {
	var notes []string

	d.Prediction.StakePercent = clampStake(d.Prediction.StakePercent, 15, 25)

	if d.Stance == models.StanceAttack {
		d.Stance = models.StanceNone
		d.TargetName = ""
		d.CombatStake = 0
		notes = append(notes, "ATTACK stripped, converted to NONE")
	}

	hpPct := 100
	if req.Self.MaxHP > 0 {
		hpPct = req.Self.HP * 100 / req.Self.MaxHP
	}
	defendProb := 0.3
	if hpPct < 40 {
		defendProb = 0.6
	}
	if d.Stance == models.StanceNone && t.rng.Float64() < defendProb {
		d.Stance = models.StanceDefend
		notes = append(notes, "defend roll succeeded")
	}

	if d.SkillActivate && req.Self.SkillCooldown > 0 {
		d.SkillActivate = false
		notes = append(notes, "INSIDER_INFO on cooldown")
	}

	d.Reasoning = appendGuardrailNote(d.Reasoning, strings.Join(notes, "; "))
	return d
}
