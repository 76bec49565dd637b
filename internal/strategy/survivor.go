package strategy

import (
	"context"
	"math/rand"
	"strings"

	"github.com/rawblock/gladiator-arena/internal/llmclient"
	"github.com/rawblock/gladiator-arena/pkg/models"
)

const survivorPersonality = `You are a Survivor gladiator: cautious above all else. You minimize risk,
never pick fights, and fortify when danger is near. Outlasting the field
is victory.`

// Survivor strips all aggression and defends almost unconditionally
//.
type Survivor struct {
	llm llmclient.Client
	rng *rand.Rand
}

func NewSurvivor(llm llmclient.Client) *Survivor {
	return &Survivor{llm: llm, rng: rand.New(rand.NewSource(2))}
}

func (s *Survivor) Personality() string { return survivorPersonality }

func (s *Survivor) Skill() SkillDefinition {
	return SkillDefinition{
		Name: "FORTIFY",
		Description: "Total damage immunity this epoch, including bleed.",
		Cooldown: models.DefaultSkillCooldown,
	}
}

func (s *Survivor) Decide(ctx context.Context, req DecisionRequest) (models.Decision, error) {
	raw, _, err := callLLM(ctx, s.llm, s.Personality(), req)
	var d models.Decision
	if err != nil {
		d = models.NewDefaultDecision(req.Self.ID, models.AssetSOL)
		d.Prediction.StakePercent = 5
		d.Stance = models.StanceDefend
	} else {
		d = toRawDecision(req.Self.ID, raw)
	}
	return s.guardrails(d, req), nil
}

func (s *Survivor) guardrails(d models.Decision, req DecisionRequest) models.Decision {
	var notes []string

	hpPct := 100
	if req.Self.MaxHP > 0 {
		hpPct = req.Self.HP * 100 / req.Self.MaxHP
	}
	lo, hi := 5, 10
	if hpPct <= 30 {
		lo, hi = 5, 5
	}
	d.Prediction.StakePercent = clampStake(d.Prediction.StakePercent, lo, hi)

	if d.Stance == models.StanceAttack || d.Stance == models.StanceSabotage {
		d.Stance = models.StanceNone
		d.TargetName = ""
		d.CombatStake = 0
		notes = append(notes, "aggression stripped unconditionally")
	}

	aggressorsAlive := anyLiveAggressorNearby(req)
	defendProb := 0.9
	if aggressorsAlive {
		defendProb = 0.95
	}
	if d.Stance == models.StanceNone {
		if s.rng.Float64() < defendProb {
			d.Stance = models.StanceDefend
		}
	}
	if d.Stance == models.StanceDefend && !aggressorsAlive && hpPct >= 100 {
		d.Stance = models.StanceNone
		notes = append(notes, "downgraded DEFEND to NONE, no aggressors alive")
	}

	if d.SkillActivate && req.Self.SkillCooldown > 0 {
		d.SkillActivate = false
		notes = append(notes, "FORTIFY on cooldown")
	}

	d.Reasoning = appendGuardrailNote(d.Reasoning, strings.Join(notes, "; "))
	return d
}

func anyLiveAggressorNearby(req DecisionRequest) bool {
	for _, o := range req.Others {
		if o.Alive {
			return true
		}
	}
	return false
}
