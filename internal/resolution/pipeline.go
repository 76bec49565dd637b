// Package resolution implements the Resolution Pipeline: the
// fifteen-step ordered epoch resolver every Battle Coordinator tick calls
// exactly once, running a fixed sequence of numbered phases over one
// mutable accumulator struct rather than threading state through return
// values.
package resolution

import (
	"math/rand"
	"sort"

	"github.com/rawblock/gladiator-arena/internal/grid"
	"github.com/rawblock/gladiator-arena/pkg/models"
)

// epsilon is the "flat" band for prediction resolution (step 6).
const epsilon = 1e-9

// bleedRate, defendCostRate and siphonRate are the fixed percentages of HP
// applied at their respective pipeline steps (bleed and defend cost against
// the agent's epoch-start HP, siphon against the target's live HP).
const (
	bleedRate = 0.02
	defendCostRate = 0.03
	siphonRate = 0.10
)

// Pipeline resolves one epoch at a time against a shared grid. A fresh
// Pipeline is cheap; the Coordinator holds one per active battle only to
// reuse its deterministic per-battle RNG (Gambler's combat bonus).
type Pipeline struct {
	grid *grid.Grid
	rng *rand.Rand
}

// New constructs a Pipeline seeded for one battle's lifetime. Reusing the
// same seed across a re-run of the same decisions and market data is what
// makes property #6 (bit-identical replay) hold.
func New(g *grid.Grid, seed int64) *Pipeline {
	return &Pipeline{grid: g, rng: rand.New(rand.NewSource(seed))}
}

// SponsorEffect is the single honoured sponsor effect for one agent this
// epoch, already resolved by the Coordinator's first-accepted-wins rule.
type SponsorEffect struct {
	HPBoost int
	AttackBoost int
	FreeDefend bool
}

// Input bundles everything one Resolve call needs.
type Input struct {
	Battle *models.Battle
	Market models.MarketSnapshot
	Decisions map[string]models.Decision
	Sponsors map[string]SponsorEffect
}

// Resolve runs all fifteen steps in order against the battle's live roster,
// mutating agent HP/alive/cooldown state eagerly so later steps observe the
// post-mutation world, and returns the sealed EpochRecord.
func (p *Pipeline) Resolve(in Input) models.EpochRecord {
	b := in.Battle
	b.Epoch++

	rec := models.EpochRecord{
		EpochNumber: b.Epoch,
		Market: in.Market,
		Decisions: in.Decisions,
	}

	phase := grid.Phase(b.Epoch, b.MaxEpochs)
	order := sortedAliveIDs(b)

	// epochStartHP anchors the percentage-of-hp formulas (defend cost,
	// bleed) to the HP an agent carried into the epoch, not the
	// value after this same epoch's combat has already landed — matching
	// S3's worked defend-cost figure, which is computed against
	// pre-combat HP despite combat resolving in an earlier pipeline step.
	epochStartHP := make(map[string]int, len(order))
	for _, id := range order {
		epochStartHP[id] = b.AgentByID(id).HP
	}

	p.recordThoughts(b, in.Decisions)
	rec.Moves = p.applyMoves(b, order, in.Decisions)
	rec.SponsorBoosts = p.applySponsorBoosts(b, order, in.Sponsors)
	activeSkills := p.activateSkills(b, order, in.Decisions, &rec)
	rec.Predictions = p.resolvePredictions(b, order, in.Decisions, in.Market, activeSkills)

	targets := p.resolveCombatTargets(b, order, in.Decisions)
	rec.Combats = p.resolveCombatTriangle(b, order, in.Decisions, targets, in.Sponsors, activeSkills)
	rec.DefendCosts = p.applyDefendCost(b, order, in.Decisions, in.Sponsors, epochStartHP)
	p.applySiphon(b, order, activeSkills, targets, &rec)
	rec.Bleeds = p.applyBleed(b, order, activeSkills, epochStartHP)

	rec.Deaths = p.checkDeaths(b, order, rec, phase)
	p.tickSurvival(b)

	if winner, complete := p.checkWin(b); complete {
		rec.BattleComplete = true
		rec.WinnerID = winner
		b.WinnerID = winner
		b.Status = models.StatusCompleted
	}

	p.tickCooldowns(b, activeSkills)

	return rec
}

// sortedAliveIDs fixes a deterministic iteration order (lowest id first)
// for every phase that processes agents in roster order.
func sortedAliveIDs(b *models.Battle) []string {
	ids := make([]string, 0, len(b.Roster))
	for _, a := range b.Roster {
		if a.Alive {
			ids = append(ids, a.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

func (p *Pipeline) recordThoughts(b *models.Battle, decisions map[string]models.Decision) {
	for _, d := range decisions {
		if a := b.AgentByID(d.AgentID); a != nil && a.Alive {
			a.RecordThought(d.Reasoning)
		}
	}
}

func (p *Pipeline) applyMoves(b *models.Battle, order []string, decisions map[string]models.Decision) []models.MoveEvent {
	var events []models.MoveEvent
	for _, id := range order {
		d, ok := decisions[id]
		if !ok || d.Move == nil {
			continue
		}
		a := b.AgentByID(id)
		if a == nil || a.Position == nil {
			continue
		}
		from := *a.Position
		accepted := p.grid.Move(from, *d.Move, a.ID)
		if accepted {
			a.Position = d.Move
		}
		events = append(events, models.MoveEvent{AgentID: id, From: from, To: *d.Move, Accepted: accepted})
	}
	return events
}

func (p *Pipeline) applySponsorBoosts(b *models.Battle, order []string, sponsors map[string]SponsorEffect) []models.SponsorBoostEvent {
	var events []models.SponsorBoostEvent
	for _, id := range order {
		eff, ok := sponsors[id]
		if !ok || eff.HPBoost <= 0 {
			continue
		}
		a := b.AgentByID(id)
		if a == nil {
			continue
		}
		before := a.HP
		actual := a.Heal(eff.HPBoost)
		events = append(events, models.SponsorBoostEvent{
			AgentID: id,
			HPBefore: before,
			HPAfter: a.HP,
			ActualBoost: actual,
			AttackBoost: eff.AttackBoost,
			FreeDefend: eff.FreeDefend,
		})
	}
	return events
}

// activeSkill records which skill an agent activated this epoch, if any.
type activeSkill struct {
	name string
	target string
}

func (p *Pipeline) activateSkills(b *models.Battle, order []string, decisions map[string]models.Decision, rec *models.EpochRecord) map[string]activeSkill {
	active := make(map[string]activeSkill)
	for _, id := range order {
		d, ok := decisions[id]
		if !ok || !d.SkillActivate {
			continue
		}
		a := b.AgentByID(id)
		if a == nil || a.SkillCooldown > 0 {
			continue
		}
		name := skillName(a.Class)
		a.SkillActive = true
		a.SkillCooldown = models.DefaultSkillCooldown
		active[id] = activeSkill{name: name, target: d.SkillTarget}
		rec.Skills = append(rec.Skills, models.SkillActivationEvent{AgentID: id, Skill: name, Target: d.SkillTarget})
	}
	return active
}

func skillName(c models.Class) string {
	switch c {
	case models.ClassWarrior:
		return "BERSERK"
	case models.ClassTrader:
		return "INSIDER_INFO"
	case models.ClassSurvivor:
		return "FORTIFY"
	case models.ClassParasite:
		return "SIPHON"
	case models.ClassGambler:
		return "ALL_IN"
	default:
		return ""
	}
}

func (p *Pipeline) resolvePredictions(b *models.Battle, order []string, decisions map[string]models.Decision, market models.MarketSnapshot, active map[string]activeSkill) []models.PredictionResultEvent {
	var events []models.PredictionResultEvent
	for _, id := range order {
		a := b.AgentByID(id)
		if a == nil {
			continue
		}
		d, ok := decisions[id]
		if !ok {
			continue
		}
		change := market.Changes.Get(d.Prediction.Asset)

		if sk, on := active[id]; on {
			switch sk.name {
			case "INSIDER_INFO":
				if change < 0 {
					change = -change
				}
			case "ALL_IN":
				change *= 2
			case "FORTIFY":
				if change < 0 {
					change = 0
				}
			}
		}

		absoluteStake := a.HP * d.Prediction.StakePercent / 100
		var hpChange int
		correct := false
		if change > epsilon || change < -epsilon {
			predictedUp := d.Prediction.Direction == models.DirectionUp
			actualUp := change > 0
			correct = predictedUp == actualUp
			if correct {
				hpChange = a.Heal(absoluteStake)
			} else {
				hpChange = -a.Damage(absoluteStake)
			}
		}

		events = append(events, models.PredictionResultEvent{
			AgentID: id,
			Asset: d.Prediction.Asset,
			Direction: d.Prediction.Direction,
			ActualChange: change,
			Correct: correct,
			HPChange: hpChange,
			HPAfter: a.HP,
		})
	}
	return events
}

// resolveCombatTargets converts every combat decision's target name into a
// live id, dropping self/dead/non-adjacent entries (step 7).
// The Secretary already performs this resolution during validation; this
// step re-verifies post-movement state, since a target may have died or
// moved out of range between validation and resolution.
func (p *Pipeline) resolveCombatTargets(b *models.Battle, order []string, decisions map[string]models.Decision) map[string]string {
	targets := make(map[string]string)
	for _, id := range order {
		d, ok := decisions[id]
		if !ok || (d.Stance != models.StanceAttack && d.Stance != models.StanceSabotage) {
			continue
		}
		a := b.AgentByID(id)
		target := b.AgentByID(d.TargetID)
		if target == nil {
			target = b.AgentByName(d.TargetName)
		}
		if target == nil || target.ID == id || !target.Alive || a == nil || a.Position == nil || target.Position == nil {
			continue
		}
		if models.Distance(*a.Position, *target.Position) != 1 {
			continue
		}
		targets[id] = target.ID
	}
	return targets
}
