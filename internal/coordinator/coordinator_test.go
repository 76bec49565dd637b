package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/rawblock/gladiator-arena/internal/betting"
	"github.com/rawblock/gladiator-arena/internal/llmclient"
	"github.com/rawblock/gladiator-arena/pkg/models"
)

func testRoster() []RosterEntry {
	return []RosterEntry{
		{Name: "Axe", Class: models.ClassWarrior},
		{Name: "Pip", Class: models.ClassTrader},
		{Name: "Rook", Class: models.ClassSurvivor},
		{Name: "Leech", Class: models.ClassParasite},
		{Name: "Luck", Class: models.ClassGambler},
	}
}

func TestCreateBattleReachesBettingOpenWithPlacedRoster(t *testing.T) {
	c := New(llmclient.NoopClient{}, nil)
	rt, err := c.CreateBattle("b1", testRoster(), StartOptions{MaxEpochs: 5, TickInterval: 0, MarketSeed: 1})
	if err != nil {
		t.Fatalf("CreateBattle: %v", err)
	}
	if rt.Battle.Status != models.StatusBettingOpen {
		t.Fatalf("expected BETTING_OPEN, got %s", rt.Battle.Status)
	}
	if rt.Battle.BettingPhase != models.BettingOpen {
		t.Fatalf("expected betting phase OPEN, got %s", rt.Battle.BettingPhase)
	}
	for _, a := range rt.Battle.Roster {
		if a.Position == nil {
			t.Fatalf("agent %s was never placed on the grid", a.Name)
		}
	}
}

func TestImmediateModeBattleRunsToCompletion(t *testing.T) {
	c := New(llmclient.NoopClient{}, nil)
	_, err := c.CreateBattle("b2", testRoster(), StartOptions{MaxEpochs: 6, TickInterval: 0, MarketSeed: 42})
	if err != nil {
		t.Fatalf("CreateBattle: %v", err)
	}
	if _, err := c.PlaceBet("b2", "alice", "b2:Axe", 100); err != nil {
		t.Fatalf("PlaceBet during BETTING_OPEN: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.ActivateAndRun(ctx, "b2"); err != nil {
		t.Fatalf("ActivateAndRun: %v", err)
	}

	view, err := c.GetState("b2")
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if view.Battle.Status != models.StatusSettled {
		t.Fatalf("expected battle to reach SETTLED, got %s", view.Battle.Status)
	}
	if view.Battle.Epoch == 0 {
		t.Fatal("expected at least one epoch to have resolved")
	}

	if _, err := c.PlaceBet("b2", "bob", "b2:Pip", 50); err != betting.ErrInvalidPhase {
		t.Fatalf("expected betting.ErrInvalidPhase after settlement, got %v", err)
	}
}

func TestPlaceBetUnknownBattle(t *testing.T) {
	c := New(llmclient.NoopClient{}, nil)
	if _, err := c.PlaceBet("missing", "alice", "x", 10); err != ErrUnknownBattle {
		t.Fatalf("expected ErrUnknownBattle, got %v", err)
	}
}

func TestSponsorRecordsPledgeAgainstLedger(t *testing.T) {
	c := New(llmclient.NoopClient{}, nil)
	rt, err := c.CreateBattle("b3", testRoster(), StartOptions{MaxEpochs: 4, TickInterval: 0, MarketSeed: 7})
	if err != nil {
		t.Fatalf("CreateBattle: %v", err)
	}
	beneficiary := rt.Battle.Roster[0].ID
	sp, err := c.Sponsor("b3", "whale", beneficiary, 25, models.TierT2)
	if err != nil {
		t.Fatalf("Sponsor: %v", err)
	}
	if sp.Beneficiary != beneficiary {
		t.Fatalf("expected sponsorship recorded for %s, got %s", beneficiary, sp.Beneficiary)
	}
}
