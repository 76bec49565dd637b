package strategy

import (
	"context"
	"testing"

	"github.com/rawblock/gladiator-arena/pkg/models"
)

func TestTraderStripsAttack(t *testing.T) {
	tr := NewTrader(nil)
	d, err := tr.Decide(context.Background(), DecisionRequest{
		Self: AgentSnapshot{ID: "t1", HP: 1000, MaxHP: 1000},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Stance == models.StanceAttack {
		t.Fatal("trader must never emit ATTACK")
	}
	if d.Prediction.StakePercent < 15 || d.Prediction.StakePercent > 25 {
		t.Fatalf("trader stake out of band: %d", d.Prediction.StakePercent)
	}
}

func TestSurvivorStripsAggression(t *testing.T) {
	s := NewSurvivor(nil)
	d, err := s.Decide(context.Background(), DecisionRequest{
		Self: AgentSnapshot{ID: "s1", HP: 1000, MaxHP: 1000},
		Others: []AgentSnapshot{{ID: "o1", Alive: true, HP: 500, MaxHP: 1000}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Stance == models.StanceAttack || d.Stance == models.StanceSabotage {
		t.Fatal("survivor must never emit ATTACK or SABOTAGE")
	}
	if d.Prediction.StakePercent < 5 || d.Prediction.StakePercent > 10 {
		t.Fatalf("survivor stake out of band: %d", d.Prediction.StakePercent)
	}
}

func TestSurvivorStakeCappedAtFiveWhenLowHP(t *testing.T) {
	s := NewSurvivor(nil)
	d, _ := s.Decide(context.Background(), DecisionRequest{
		Self: AgentSnapshot{ID: "s1", HP: 250, MaxHP: 1000},
	})
	if d.Prediction.StakePercent != 5 {
		t.Fatalf("expected stake 5 at <=30%% HP, got %d", d.Prediction.StakePercent)
	}
}

func TestParasiteRefusesHighHPSabotage(t *testing.T) {
	p := NewParasite(nil)
	d, err := p.Decide(context.Background(), DecisionRequest{
		Self: AgentSnapshot{ID: "p1", HP: 1000, MaxHP: 1000},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Stance == models.StanceSabotage {
		t.Fatal("parasite fallback decision should not carry a sabotage target")
	}
}

func TestWarriorForcesDefendBelowTwentyPercent(t *testing.T) {
	w := NewWarrior(nil)
	d, _ := w.Decide(context.Background(), DecisionRequest{
		Self: AgentSnapshot{ID: "w1", HP: 150, MaxHP: 1000},
	})
	if d.Stance != models.StanceDefend {
		t.Fatalf("expected forced DEFEND below 20%% HP, got %s", d.Stance)
	}
}
