package strategy

import (
	"context"
	"math/rand"

	"github.com/rawblock/gladiator-arena/internal/llmclient"
	"github.com/rawblock/gladiator-arena/pkg/models"
)

const gamblerPersonality = `You are a Gambler gladiator: chaotic and fearless. Every choice is a coin
flip — stance, stake, target, all decided by chance. Fortune favors you,
or it doesn't.`

var assetPool = []models.Asset{models.AssetETH, models.AssetBTC, models.AssetSOL, models.AssetMON}
var directionPool = []models.Direction{models.DirectionUp, models.DirectionDown}
var stancePool = []models.Stance{models.StanceAttack, models.StanceSabotage, models.StanceDefend, models.StanceNone}

// Gambler picks stance, stake, and target uniformly at random across legal
// options; the LLM call is consulted for reasoning flavor only, never for
// the actual choice.
type Gambler struct {
	llm llmclient.Client
	rng *rand.Rand
}

func NewGambler(llm llmclient.Client) *Gambler {
	return &Gambler{llm: llm, rng: rand.New(rand.NewSource(3))}
}

func (g *Gambler) Personality() string { return gamblerPersonality }

func (g *Gambler) Skill() SkillDefinition {
	return SkillDefinition{
		Name: "ALL_IN",
		Description: "Doubles the signed HP delta from the prediction's stake.",
		Cooldown: models.DefaultSkillCooldown,
	}
}

// ClassBonus returns a random 0-15% damage modifier from the strategy's own
// RNG. The Resolution Pipeline does not call it: it draws the Gambler's
// per-combat-event roll from its own per-battle RNG (attackBonus,
// sabotageBonus).
func (g *Gambler) ClassBonus() float64 {
	return g.rng.Float64() * 0.15
}

func (g *Gambler) Decide(ctx context.Context, req DecisionRequest) (models.Decision, error) {
	reasoning := "rolling the dice"
	raw, text, err := callLLM(ctx, g.llm, g.Personality(), req)
	if err == nil && text != "" {
		reasoning = raw.Reasoning
	}

	d := models.Decision{
		AgentID: req.Self.ID,
		Prediction: models.Prediction{
			Asset: assetPool[g.rng.Intn(len(assetPool))],
			Direction: directionPool[g.rng.Intn(len(directionPool))],
			StakePercent: models.MinStakePercent + g.rng.Intn(models.MaxStakePercent-models.MinStakePercent+1),
		},
		Reasoning: reasoning,
	}

	d.Stance = stancePool[g.rng.Intn(len(stancePool))]
	if d.Stance == models.StanceAttack || d.Stance == models.StanceSabotage {
		live := liveOthers(req)
		if len(live) == 0 {
			d.Stance = models.StanceNone
		} else {
			target := live[g.rng.Intn(len(live))]
			d.TargetName = target.Name
			d.CombatStake = target.HP * (10 + g.rng.Intn(30)) / 100
		}
	}

	if req.Self.SkillCooldown == 0 && g.rng.Float64() < 0.3 {
		d.SkillActivate = true
	}

	// Move is left unset; the Secretary's fallback-move injection
	// (step 7) is grid-aware and picks a legal destination,
	// which a class with no board knowledge of its own cannot do better.

	d.Reasoning = appendGuardrailNote(d.Reasoning, "random class policy")
	return d, nil
}

func liveOthers(req DecisionRequest) []AgentSnapshot {
	var out []AgentSnapshot
	for _, o := range req.Others {
		if o.Alive {
			out = append(out, o)
		}
	}
	return out
}
