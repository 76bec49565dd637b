package strategy

import (
	"context"
	"strings"

	"github.com/rawblock/gladiator-arena/internal/llmclient"
	"github.com/rawblock/gladiator-arena/pkg/models"
)

const warriorPersonality = `You are a Warrior gladiator: aggressive, decisive, and contemptuous of
retreat. You hunt the weakest nearby opponent and finish fights quickly.`

// Warrior hunts the lowest-HP adjacent opponent, stakes aggressively when
// confident, and only defends near death.
type Warrior struct {
	llm llmclient.Client
}

func NewWarrior(llm llmclient.Client) *Warrior {
	return &Warrior{llm: llm}
}

func (w *Warrior) Personality() string { return warriorPersonality }

func (w *Warrior) Skill() SkillDefinition {
	return SkillDefinition{
		Name: "BERSERK",
		Description: "Double ATTACK damage this epoch; incoming damage is multiplied 1.5x.",
		Cooldown: models.DefaultSkillCooldown,
	}
}

func (w *Warrior) Decide(ctx context.Context, req DecisionRequest) (models.Decision, error) {
	raw, _, err := callLLM(ctx, w.llm, w.Personality(), req)
	var d models.Decision
	if err != nil {
		d = w.fallback(req)
	} else {
		d = toRawDecision(req.Self.ID, raw)
	}
	return w.guardrails(d, req), nil
}

// fallback picks the lowest-HP adjacent opponent and attacks if any exists;
// either way it predicts ETH UP with a 35% stake (phase-aware
// fallback).
func (w *Warrior) fallback(req DecisionRequest) models.Decision {
	d := models.NewDefaultDecision(req.Self.ID, models.AssetETH)
	d.Prediction.StakePercent = 35
	if target := lowestHPAdjacent(req); target != nil {
		d.Stance = models.StanceAttack
		d.TargetName = target.Name
		d.CombatStake = target.HP * 30 / 100
	}
	return d
}

func (w *Warrior) guardrails(d models.Decision, req DecisionRequest) models.Decision {
	var notes []string

	if d.Stance == models.StanceAttack {
		if d.Prediction.StakePercent < 30 {
			d.Prediction.StakePercent = 30
			notes = append(notes, "stake raised to 30% minimum on confident attack")
		}
	}
	d.Prediction.StakePercent = clampStake(d.Prediction.StakePercent, models.MinStakePercent, models.MaxStakePercent)

	hpPct := 100
	if req.Self.MaxHP > 0 {
		hpPct = req.Self.HP * 100 / req.Self.MaxHP
	}
	if hpPct < 20 && d.Stance != models.StanceDefend {
		d.Stance = models.StanceDefend
		d.TargetName = ""
		notes = append(notes, "forced DEFEND below 20% HP")
	}

	if d.SkillActivate && req.Self.SkillCooldown > 0 {
		d.SkillActivate = false
		notes = append(notes, "BERSERK on cooldown")
	}

	d.Reasoning = appendGuardrailNote(d.Reasoning, strings.Join(notes, "; "))
	return d
}

func lowestHPAdjacent(req DecisionRequest) *AgentSnapshot {
	if req.Self.Position == nil {
		return nil
	}
	var best *AgentSnapshot
	for i := range req.Others {
		o := req.Others[i]
		if !o.Alive || o.Position == nil {
			continue
		}
		if models.Distance(*req.Self.Position, *o.Position) != 1 {
			continue
		}
		if best == nil || o.HP < best.HP {
			best = &req.Others[i]
		}
	}
	return best
}
