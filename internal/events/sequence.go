package events

import (
	"sort"

	"github.com/rawblock/gladiator-arena/pkg/models"
)

// FromEpochRecord translates one resolved epoch into the ordered event
// sequence required by grammar:
//
//	epoch_start -> agent_action* -> sponsor_boost* -> skill_activation* ->
//	prediction_result* -> combat_result* -> defend_cost* -> agent_death* ->
//	epoch_end [-> battle_end]
//
// battle is read after the pipeline has mutated it, so agentStates/winner
// reflect the post-resolution world.
func FromEpochRecord(battle *models.Battle, rec models.EpochRecord) []models.Event {
	var out []models.Event

	out = append(out, models.Event{Type: models.EventEpochStart, Data: models.EpochStartData{
				EpochNumber: rec.EpochNumber,
				MarketData: rec.Market,
			}})

	for _, id := range sortedDecisionIDs(rec.Decisions) {
		d := rec.Decisions[id]
		a := battle.AgentByID(id)
		if a == nil {
			continue
		}
		data := models.AgentActionData{
			AgentID: id,
			AgentName: a.Name,
			Prediction: models.PredictionSummary{
				Asset: d.Prediction.Asset,
				Direction: d.Prediction.Direction,
				Stake: d.Prediction.StakePercent,
			},
			Defend: d.Stance == models.StanceDefend,
			Reasoning: d.Reasoning,
		}
		if d.Stance == models.StanceAttack || d.Stance == models.StanceSabotage {
			data.Attack = &models.AttackSummary{Target: d.TargetName, Stake: d.CombatStake}
		}
		out = append(out, models.Event{Type: models.EventAgentAction, Data: data})
	}

	for _, sb := range rec.SponsorBoosts {
		out = append(out, models.Event{Type: models.EventSponsorBoost, Data: models.SponsorBoostData(sb)})
	}
	for _, sk := range rec.Skills {
		out = append(out, models.Event{Type: models.EventSkillActivation, Data: models.SkillActivationData(sk)})
	}
	for _, pr := range rec.Predictions {
		out = append(out, models.Event{Type: models.EventPredictionResult, Data: models.PredictionResultData(pr)})
	}
	for _, c := range rec.Combats {
		out = append(out, models.Event{Type: models.EventCombatResult, Data: models.CombatResultData{
					AttackerID: c.AttackerID,
					TargetID: c.TargetID,
					Stance: c.Stance,
					Outcome: c.Outcome,
					Stake: c.Stake,
					HPChangeAttacker: c.HPChangeAttacker,
					HPChangeTarget: c.HPChangeTarget,
					Damage: c.Damage,
					Blocked: c.Blocked,
				}})
	}
	for _, dc := range rec.DefendCosts {
		out = append(out, models.Event{Type: models.EventDefendCost, Data: models.DefendCostData{AgentID: dc.AgentID, Cost: dc.Cost}})
	}
	for _, death := range rec.Deaths {
		var finalWords string
		if a := battle.AgentByID(death.AgentID); a != nil && len(a.Thoughts) > 0 {
			finalWords = a.Thoughts[len(a.Thoughts)-1]
		}
		out = append(out, models.Event{Type: models.EventAgentDeath, Data: models.AgentDeathData{
					AgentID: death.AgentID,
					AgentName: death.AgentName,
					AgentClass: death.AgentClass,
					EpochNumber: death.EpochNumber,
					Cause: death.Cause,
					FinalWords: finalWords,
					KilledBy: death.KilledBy,
				}})
	}

	states := make([]models.AgentStateSnapshot, 0, len(battle.Roster))
	for _, a := range battle.Roster {
		states = append(states, models.AgentStateSnapshot{ID: a.ID, Name: a.Name, Class: a.Class, HP: a.HP, IsAlive: a.Alive})
	}
	out = append(out, models.Event{Type: models.EventEpochEnd, Data: models.EpochEndData{AgentStates: states, BattleComplete: rec.BattleComplete}})

	if rec.BattleComplete {
		winnerName := ""
		if w := battle.AgentByID(rec.WinnerID); w != nil {
			winnerName = w.Name
		}
		out = append(out, models.Event{Type: models.EventBattleEnd, Data: models.BattleEndData{
					WinnerID: rec.WinnerID,
					WinnerName: winnerName,
					TotalEpochs: rec.EpochNumber,
				}})
	}

	return out
}

func sortedDecisionIDs(decisions map[string]models.Decision) []string {
	ids := make([]string, 0, len(decisions))
	for id := range decisions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
