package rating

import (
	"testing"

	"github.com/rawblock/gladiator-arena/pkg/models"
)

func TestApplyBattleResultWinnerGainsMu(t *testing.T) {
	store := NewStore()
	outcomes := []AgentOutcome{
		{AgentID: "a", SurvivalRank: 1, PredictionAttempts: 4, PredictionsCorrect: 3, Kills: 2, DamageDealt: 500, DamageTaken: 100},
		{AgentID: "b", SurvivalRank: 2, PredictionAttempts: 4, PredictionsCorrect: 1, Kills: 0, DamageDealt: 100, DamageTaken: 500},
	}
	results := ApplyBattleResult(store, "battle-1", outcomes)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	a := results[0]
	b := results[1]
	if a.Survival.Mu <= models.DefaultMu {
		t.Fatalf("expected winner survival mu to rise above prior, got %f", a.Survival.Mu)
	}
	if b.Survival.Mu >= models.DefaultMu {
		t.Fatalf("expected loser survival mu to fall below prior, got %f", b.Survival.Mu)
	}
	if a.Battles != 1 || b.Battles != 1 {
		t.Fatalf("expected battle counters to increment, got a=%d b=%d", a.Battles, b.Battles)
	}
	if a.Composite.Mu <= b.Composite.Mu {
		t.Fatalf("expected winner composite to exceed loser's, got a=%f b=%f", a.Composite.Mu, b.Composite.Mu)
	}
}

func TestBootstrapCIRequiresThreeBattles(t *testing.T) {
	store := NewStore()
	outcomes := []AgentOutcome{
		{AgentID: "a", SurvivalRank: 1},
		{AgentID: "b", SurvivalRank: 2},
	}
	ApplyBattleResult(store, "battle-1", outcomes)
	ApplyBattleResult(store, "battle-2", outcomes)

	if _, _, ok := BootstrapCI(store, "a", models.CategorySurvival, 200, 42); ok {
		t.Fatal("expected insufficient-battles to report ok=false")
	}

	ApplyBattleResult(store, "battle-3", outcomes)
	lo, hi, ok := BootstrapCI(store, "a", models.CategorySurvival, 200, 42)
	if !ok {
		t.Fatal("expected ok=true after three battles")
	}
	if lo > hi {
		t.Fatalf("expected lower <= upper, got lo=%f hi=%f", lo, hi)
	}
}
