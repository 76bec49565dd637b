package strategy

import (
	"context"
	"strings"

	"github.com/rawblock/gladiator-arena/internal/llmclient"
	"github.com/rawblock/gladiator-arena/pkg/models"
)

const parasitePersonality = `You are a Parasite gladiator: patient and opportunistic. You sabotage the
wounded, steal life through SIPHON, and never fight an opponent at full
strength head-on.`

// Parasite only sabotages targets below ~15% max-HP.
type Parasite struct {
	llm llmclient.Client
}

func NewParasite(llm llmclient.Client) *Parasite {
	return &Parasite{llm: llm}
}

func (p *Parasite) Personality() string { return parasitePersonality }

func (p *Parasite) Skill() SkillDefinition {
	return SkillDefinition{
		Name: "SIPHON",
		Description: "Steal 10% of a target's current HP.",
		Cooldown: models.DefaultSkillCooldown,
	}
}

func (p *Parasite) Decide(ctx context.Context, req DecisionRequest) (models.Decision, error) {
	raw, _, err := callLLM(ctx, p.llm, p.Personality(), req)
	var d models.Decision
	if err != nil {
		d = models.NewDefaultDecision(req.Self.ID, models.AssetMON)
		d.Prediction.StakePercent = 10
	} else {
		d = toRawDecision(req.Self.ID, raw)
	}
	return p.guardrails(d, req), nil
}

func (p *Parasite) guardrails(d models.Decision, req DecisionRequest) models.Decision {
	var notes []string

	d.Prediction.StakePercent = clampStake(d.Prediction.StakePercent, 5, 15)

	if d.Stance == models.StanceSabotage {
		target := findSnapshot(req.Others, d.TargetName)
		if target == nil || target.MaxHP <= 0 || (target.HP*100/target.MaxHP) >= 15 {
			d.Stance = models.StanceNone
			d.TargetName = ""
			d.CombatStake = 0
			notes = append(notes, "SABOTAGE only permitted below 15% target max-HP")
		}
	}
	if d.Stance == models.StanceAttack {
		d.Stance = models.StanceSabotage
		notes = append(notes, "ATTACK downgraded to SABOTAGE")
		target := findSnapshot(req.Others, d.TargetName)
		if target == nil || target.MaxHP <= 0 || (target.HP*100/target.MaxHP) >= 15 {
			d.Stance = models.StanceNone
			d.TargetName = ""
			d.CombatStake = 0
		}
	}

	if d.SkillActivate && req.Self.SkillCooldown > 0 {
		d.SkillActivate = false
		notes = append(notes, "SIPHON on cooldown")
	}

	d.Reasoning = appendGuardrailNote(d.Reasoning, strings.Join(notes, "; "))
	return d
}

func findSnapshot(others []AgentSnapshot, name string) *AgentSnapshot {
	for i := range others {
		if others[i].Name == name {
			return &others[i]
		}
	}
	return nil
}
