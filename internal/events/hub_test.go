package events

import (
	"testing"

	"github.com/rawblock/gladiator-arena/pkg/models"
)

func TestLateSubscriberReceivesSyntheticEpochEnd(t *testing.T) {
	h := NewHub("battle-1")
	snapshot := models.EpochEndData{AgentStates: []models.AgentStateSnapshot{{ID: "a", HP: 500, IsAlive: true}}}
	h.Publish(models.Event{Type: models.EventEpochEnd, Data: snapshot})

	late := h.Subscribe(4)
	select {
	case ev := <-late.Events():
		if ev.Type != models.EventEpochEnd {
			t.Fatalf("expected synthetic epoch_end, got %s", ev.Type)
		}
	default:
		t.Fatal("expected a buffered synthetic epoch_end for the late subscriber")
	}
}

func TestSlowSubscriberDroppedNotBlocked(t *testing.T) {
	h := NewHub("battle-2")
	sub := h.Subscribe(1)
	h.Publish(models.Event{Type: models.EventEpochStart, Data: models.EpochStartData{EpochNumber: 1}})
	// Second publish would block a synchronous channel send; Publish must not
	// block the caller even though the subscriber's buffer is already full.
	h.Publish(models.Event{Type: models.EventEpochStart, Data: models.EpochStartData{EpochNumber: 2}})

	h.mu.Lock()
	_, stillSubscribed := h.subscribers[sub]
	h.mu.Unlock()
	if stillSubscribed {
		t.Fatal("expected the slow subscriber to have been dropped")
	}
}

func TestFromEpochRecordOrdersEventsPerGrammar(t *testing.T) {
	agent := models.NewAgent("a", "A", models.ClassWarrior, "")
	battle := &models.Battle{ID: "battle-3", Roster: []*models.Agent{agent}}
	rec := models.EpochRecord{
		EpochNumber: 1,
		Decisions: map[string]models.Decision{"a": models.NewDefaultDecision("a", models.AssetETH)},
		SponsorBoosts: []models.SponsorBoostEvent{{AgentID: "a", HPAfter: 520, ActualBoost: 20}},
		Skills: []models.SkillActivationEvent{{AgentID: "a", Skill: "BERSERK"}},
		Predictions: []models.PredictionResultEvent{{AgentID: "a", HPChange: 10}},
		Combats: []models.CombatResultEvent{{AttackerID: "a", TargetID: "a"}},
		DefendCosts: []models.DefendCostEvent{{AgentID: "a", Cost: 5}},
		Deaths: []models.DeathEvent{{AgentID: "a", Cause: models.CauseBleed}},
		BattleComplete: true,
		WinnerID: "a",
	}

	evs := FromEpochRecord(battle, rec)
	var order []models.EventType
	for _, e := range evs {
		order = append(order, e.Type)
	}
	expected := []models.EventType{
		models.EventEpochStart, models.EventAgentAction, models.EventSponsorBoost,
		models.EventSkillActivation, models.EventPredictionResult, models.EventCombatResult,
		models.EventDefendCost, models.EventAgentDeath, models.EventEpochEnd, models.EventBattleEnd,
	}
	if len(order) != len(expected) {
		t.Fatalf("expected %d events, got %d: %v", len(expected), len(order), order)
	}
	for i, want := range expected {
		if order[i] != want {
			t.Fatalf("position %d: expected %s, got %s (full order %v)", i, want, order[i], order)
		}
	}
}
