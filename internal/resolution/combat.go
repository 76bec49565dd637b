package resolution

import (
	"github.com/rawblock/gladiator-arena/pkg/models"
)

// resolveCombatTriangle runs step 8: every ATTACK/SABOTAGE action is scored
// against its target's chosen stance per the triangle table.
// Mutual ATTACK/SABOTAGE pairs resolve once from the winning side; the loser
// of the triangle is preempted rather than independently resolved.
func (p *Pipeline) resolveCombatTriangle(
	b *models.Battle,
	order []string,
	decisions map[string]models.Decision,
	targets map[string]string,
	sponsors map[string]SponsorEffect,
	active map[string]activeSkill,
) []models.CombatResultEvent {
	var events []models.CombatResultEvent
	resolved := make(map[string]bool)

	for _, id := range order {
		if resolved[id] {
			continue
		}
		targetID, ok := targets[id]
		if !ok {
			continue
		}
		a := b.AgentByID(id)
		t := b.AgentByID(targetID)
		if a == nil || t == nil || !a.Alive || !t.Alive {
			continue
		}
		d := decisions[id]
		tDecision, targetActsToo := decisions[targetID]
		targetStance := models.StanceNone
		if targetActsToo {
			targetStance = tDecision.Stance
		}
		reciprocal := targets[targetID] == id

		// ATTACK beats SABOTAGE in the triangle: a reciprocal ATTACK/SABOTAGE
		// pair resolves once from the ATTACK side, and the SABOTAGE side's
		// own action is preempted entirely rather than independently scored
		// (S2).
		if reciprocal && d.Stance == models.StanceSabotage && targetStance == models.StanceAttack {
			resolved[id] = true
			continue
		}

		events = append(events, p.resolveOneCombat(b, id, targetID, d.Stance, targetStance, d.CombatStake, sponsors, active)...)
		resolved[id] = true
		if reciprocal && d.Stance == models.StanceAttack && targetStance == models.StanceSabotage {
			resolved[targetID] = true
		}
	}
	return events
}

// resolveOneCombat computes and commits the HP deltas for a single
// aggressor/target pairing, returning exactly one CombatResultEvent. The
// preempted SABOTAGE side of a mutual ATTACK/SABOTAGE pair gets no event of
// its own; resolveCombatTriangle skips it.
func (p *Pipeline) resolveOneCombat(
	b *models.Battle,
	attackerID, targetID string,
	stance, targetStance models.Stance,
	stakeRaw int,
	sponsors map[string]SponsorEffect,
	active map[string]activeSkill,
) []models.CombatResultEvent {
	a := b.AgentByID(attackerID)
	t := b.AgentByID(targetID)

	stake := stakeRaw
	if stake > a.HP {
		stake = a.HP
	}
	if stake < 0 {
		stake = 0
	}

	outcome, dTarget, hAggressor := p.triangleMagnitudes(a, t, stance, targetStance, stake, sponsors, active)

	// FORTIFY clamps damage to zero for its holder, whether they are the
	// target taking direct damage or the aggressor taking Absorb recoil
	// ("class modifiers").
	if sk, on := active[t.ID]; on && sk.name == "FORTIFY" {
		dTarget = 0
	}
	// BERSERK multiplies damage received by its holder this epoch by 1.5,
	// the tradeoff for its own +100% ATTACK bonus.
	if sk, on := active[t.ID]; on && sk.name == "BERSERK" && dTarget > 0 {
		dTarget = floorF(float64(dTarget) * 1.5)
	}
	if sk, on := active[a.ID]; on && sk.name == "FORTIFY" && hAggressor < 0 {
		hAggressor = 0
	}

	betrayal := a.IsAlliedWith(t.ID)
	if betrayal {
		dTarget *= 2
		a.BreakAlly()
		t.BreakAlly()
	}

	hpChangeTarget := 0
	hpChangeAttacker := 0
	if dTarget > 0 {
		hpChangeTarget = -t.Damage(dTarget)
	}
	if hAggressor > 0 {
		hpChangeAttacker = a.Heal(hAggressor)
	} else if hAggressor < 0 {
		hpChangeAttacker = -a.Damage(-hAggressor)
	}

	return []models.CombatResultEvent{{
			AttackerID: attackerID,
			TargetID: targetID,
			Stance: stance,
			TargetStance: targetStance,
			Outcome: outcome,
			Stake: stake,
			HPChangeAttacker: hpChangeAttacker,
			HPChangeTarget: hpChangeTarget,
			Damage: dTarget,
			Blocked: outcome == models.OutcomeAbsorb || outcome == models.OutcomeBypass,
			Betrayal: betrayal,
		}}
}

// triangleMagnitudes implements the stance-triangle and class-modifier
// rules. Returns the resolved outcome plus D (damage to target) and H
// (signed HP delta to the aggressor: positive heal, negative self-damage).
func (p *Pipeline) triangleMagnitudes(a, t *models.Agent, stance, targetStance models.Stance, stake int, sponsors map[string]SponsorEffect, active map[string]activeSkill) (models.CombatOutcome, int, int) {
	s := float64(stake)

	switch stance {
	case models.StanceAttack:
		switch targetStance {
		case models.StanceSabotage:
			return models.OutcomeOverpower, int(s), int(s * (1 + p.attackBonus(a, sponsors, active)))
		case models.StanceDefend:
			reduce, reflectScale := p.defendModifiers(t)
			d := floorF(s * 0.25 * reduce)
			h := -floorF(s * 0.5 * reflectScale)
			return models.OutcomeAbsorb, d, h
		default: // ATTACK or NONE
			return models.OutcomeUncontested, int(s), int(s * (1 + p.attackBonus(a, sponsors, active)))
		}
	case models.StanceSabotage:
		switch targetStance {
		case models.StanceDefend:
			reduce, _ := p.defendModifiers(t)
			d := floorF(s * 0.6 * reduce)
			return models.OutcomeBypass, d, 0
		case models.StanceSabotage:
			d := floorF(s * 0.3 * (1 + p.sabotageBonus(a, active)))
			h := -floorF(s * 0.15)
			return models.OutcomeStalemate, d, h
		default: // ATTACK or NONE
			d := floorF(s * 0.6 * (1 + p.sabotageBonus(a, active)))
			return models.OutcomeUncontested, d, 0
		}
	}
	return models.OutcomeStalemate, 0, 0
}

// attackBonus combines every additive ATTACK-side modifier: Warrior's +20%,
// Survivor's -20%, a live sponsor attackBoost (already a whole percentage
// point value, e.g. 15 for 15%), BERSERK's +100%, and Gambler's fresh
// per-event random 0-15% roll ("class modifiers").
func (p *Pipeline) attackBonus(a *models.Agent, sponsors map[string]SponsorEffect, active map[string]activeSkill) float64 {
	bonus := 0.0
	switch a.Class {
	case models.ClassWarrior:
		bonus += 0.20
	case models.ClassSurvivor:
		bonus -= 0.20
	case models.ClassGambler:
		bonus += p.rng.Float64() * 0.15
	}
	if eff, ok := sponsors[a.ID]; ok {
		bonus += float64(eff.AttackBoost) / 100
	}
	if sk, on := active[a.ID]; on && sk.name == "BERSERK" {
		bonus += 1.00
	}
	return bonus
}

// sabotageBonus combines Trader's +10%, Parasite's +10%, and Gambler's
// per-event random roll.
func (p *Pipeline) sabotageBonus(a *models.Agent, active map[string]activeSkill) float64 {
	bonus := 0.0
	switch a.Class {
	case models.ClassTrader, models.ClassParasite:
		bonus += 0.10
	case models.ClassGambler:
		bonus += p.rng.Float64() * 0.15
	}
	_ = active
	return bonus
}

// defendModifiers returns (damageReduceMultiplier, reflectionScaleMultiplier)
// for the defending agent's class. Survivor reduces the damage it takes by
// 20% while simultaneously scaling the reflected/residual damage it deals
// back to the aggressor UP by 20% ("absorb" implies reflection increases
// with defend potency). Warrior's own DEFEND is 10% worse (damage it takes
// is multiplied up, not down).
func (p *Pipeline) defendModifiers(t *models.Agent) (reduce, reflectScale float64) {
	switch t.Class {
	case models.ClassSurvivor:
		return 0.8, 1.2
	case models.ClassWarrior:
		return 1.1, 1.0
	default:
		return 1.0, 1.0
	}
}

func floorF(v float64) int {
	n := int(v)
	if float64(n) > v {
		n--
	}
	if n < 0 {
		return 0
	}
	return n
}
