package resolution

import "github.com/rawblock/gladiator-arena/pkg/models"

// applyDefendCost runs step 9: every DEFEND agent pays 3% of the HP it
// carried into the epoch, waived if their honoured sponsor effect carries freeDefend.
func (p *Pipeline) applyDefendCost(b *models.Battle, order []string, decisions map[string]models.Decision, sponsors map[string]SponsorEffect, epochStartHP map[string]int) []models.DefendCostEvent {
	var events []models.DefendCostEvent
	for _, id := range order {
		d, ok := decisions[id]
		if !ok || d.Stance != models.StanceDefend {
			continue
		}
		a := b.AgentByID(id)
		if a == nil || !a.Alive {
			continue
		}
		waived := sponsors[id].FreeDefend
		cost := int(float64(epochStartHP[id]) * defendCostRate)
		if waived {
			events = append(events, models.DefendCostEvent{AgentID: id, Cost: 0, Waived: true})
			continue
		}
		actual := a.Damage(cost)
		events = append(events, models.DefendCostEvent{AgentID: id, Cost: actual, Waived: false})
	}
	return events
}

// applySiphon runs step 10: every SIPHON activation steals
// max(1, floor(target.hp*0.10)) HP from its target, sequentially in agent
// iteration order. The target was already resolved by the Secretary/decision
// (SkillTarget); dead or missing targets are skipped.
func (p *Pipeline) applySiphon(b *models.Battle, order []string, active map[string]activeSkill, targets map[string]string, rec *models.EpochRecord) {
	for _, id := range order {
		sk, on := active[id]
		if !on || sk.name != "SIPHON" {
			continue
		}
		a := b.AgentByID(id)
		if a == nil || !a.Alive {
			continue
		}
		t := b.AgentByName(sk.target)
		if t == nil || t.ID == id || !t.Alive {
			continue
		}
		amount := int(float64(t.HP) * siphonRate)
		if amount < 1 {
			amount = 1
		}
		actual := t.Damage(amount)
		a.Heal(actual)
	}
}

// applyBleed runs step 11: every alive agent loses max(1, floor(hp*0.02)) HP,
// waived entirely for an active FORTIFY holder.
func (p *Pipeline) applyBleed(b *models.Battle, order []string, active map[string]activeSkill, epochStartHP map[string]int) []models.BleedEvent {
	var events []models.BleedEvent
	for _, id := range order {
		a := b.AgentByID(id)
		if a == nil || !a.Alive {
			continue
		}
		if sk, on := active[id]; on && sk.name == "FORTIFY" {
			events = append(events, models.BleedEvent{AgentID: id, Amount: 0, Waived: true})
			continue
		}
		amount := int(float64(epochStartHP[id]) * bleedRate)
		if amount < 1 {
			amount = 1
		}
		actual := a.Damage(amount)
		events = append(events, models.BleedEvent{AgentID: id, Amount: actual, Waived: false})
	}
	return events
}

// checkDeaths runs step 12. Killer attribution: if an agent's HP crossed
// zero during combat this epoch and no further damage source touched them
// afterward, the attacker is credited; if bleed also landed this same
// epoch after combat damage, or if multiple independent sources both
// contributed, the cause is recorded as "multi" and no single killer is
// credited.
func (p *Pipeline) checkDeaths(b *models.Battle, order []string, rec models.EpochRecord, phase models.Phase) []models.DeathEvent {
	var events []models.DeathEvent
	for _, id := range order {
		a := b.AgentByID(id)
		if a == nil || a.Alive || a.HP > 0 {
			continue
		}
		cause, killedBy := attributeDeath(id, rec)
		events = append(events, models.DeathEvent{
			AgentID: id,
			AgentName: a.Name,
			AgentClass: a.Class,
			EpochNumber: rec.EpochNumber,
			Cause: cause,
			KilledBy: killedBy,
		})
	}
	return events
}

func attributeDeath(agentID string, rec models.EpochRecord) (models.DeathCause, string) {
	var combatKiller string
	combatHits := 0
	for _, c := range rec.Combats {
		if c.TargetID == agentID && c.HPChangeTarget < 0 {
			combatHits++
			combatKiller = c.AttackerID
		}
	}
	bledThisEpoch := false
	for _, bl := range rec.Bleeds {
		if bl.AgentID == agentID && bl.Amount > 0 {
			bledThisEpoch = true
		}
	}
	predictionHit := false
	for _, pr := range rec.Predictions {
		if pr.AgentID == agentID && pr.HPChange < 0 {
			predictionHit = true
		}
	}

	sources := 0
	if combatHits > 0 {
		sources++
	}
	if bledThisEpoch {
		sources++
	}
	if predictionHit {
		sources++
	}

	switch {
	case sources > 1:
		return models.CauseMulti, ""
	case combatHits == 1:
		return models.CauseCombat, combatKiller
	case combatHits > 1:
		return models.CauseMulti, ""
	case bledThisEpoch:
		return models.CauseBleed, ""
	case predictionHit:
		return models.CausePrediction, ""
	default:
		return models.CauseMulti, ""
	}
}

// tickSurvival runs step 13.
func (p *Pipeline) tickSurvival(b *models.Battle) {
	for _, a := range b.Roster {
		if a.Alive {
			a.EpochsSurvived++
		}
	}
}

// checkWin runs step 14: single-survivor win (for a roster of two or more;
// a one-agent roster runs until its agent dies or the timeout), or maxEpochs
// timeout with a highest-HP tiebreak (lowest id wins ties).
func (p *Pipeline) checkWin(b *models.Battle) (string, bool) {
	alive := b.Alive()
	if len(alive) == 1 && len(b.Roster) > 1 {
		return alive[0].ID, true
	}
	if len(alive) == 0 {
		return highestEverHP(b), true
	}
	if b.Epoch >= b.MaxEpochs {
		return timeoutWinner(alive), true
	}
	return "", false
}

func timeoutWinner(alive []*models.Agent) string {
	best := alive[0]
	for _, a := range alive[1:] {
		if a.HP > best.HP || (a.HP == best.HP && a.ID < best.ID) {
			best = a
		}
	}
	return best.ID
}

// highestEverHP handles the degenerate all-dead-simultaneously edge case
// (S1): treat it as a timeout resolved against the roster's
// recorded HP at the moment of death, which for a last-agent-standing
// battle is simply that agent.
func highestEverHP(b *models.Battle) string {
	if len(b.Roster) == 0 {
		return ""
	}
	best := b.Roster[0]
	for _, a := range b.Roster[1:] {
		if a.HP > best.HP || (a.HP == best.HP && a.ID < best.ID) {
			best = a
		}
	}
	return best.ID
}

// tickCooldowns runs step 15: decrement cooldowns, clear skill-active flags,
// and tick active alliances down, breaking naturally on expiry.
func (p *Pipeline) tickCooldowns(b *models.Battle, active map[string]activeSkill) {
	for _, a := range b.Roster {
		if !a.Alive {
			continue
		}
		if a.SkillCooldown > 0 {
			a.SkillCooldown--
		}
		a.SkillActive = false
		if a.Ally != nil {
			a.Ally.Remaining--
			if a.Ally.Remaining <= 0 {
				a.BreakAlly()
			}
		}
	}
	_ = active
}
