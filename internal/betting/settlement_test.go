package betting

import (
	"testing"
	"time"

	"github.com/rawblock/gladiator-arena/pkg/models"
)

// TestS4Settlement reproduces S4 exactly.
func TestS4Settlement(t *testing.T) {
	now := time.Now()
	bets := []*models.Bet{
		{ID: "alice-bet", Bettor: "Alice", AgentID: "winner", Amount: 500, PlacedAt: now},
		{ID: "bob-bet", Bettor: "Bob", AgentID: "winner", Amount: 300, PlacedAt: now.Add(time.Second)},
		{ID: "loser-bet", Bettor: "Carol", AgentID: "loser", Amount: 9200, PlacedAt: now},
	}

	res := Settle(bets, 500, "winner")

	if res.WinnersPool != 9000 {
		t.Fatalf("expected winnersPool=9000, got %f", res.WinnersPool)
	}
	if res.Treasury != 500 {
		t.Fatalf("expected treasury=500, got %f", res.Treasury)
	}
	if res.Burn != 500 {
		t.Fatalf("expected burn=500, got %f", res.Burn)
	}
	if res.NextJackpot != 300 {
		t.Fatalf("expected nextJackpot=300, got %f", res.NextJackpot)
	}
	if res.TopBettor != "Alice" {
		t.Fatalf("expected Alice as top bettor, got %s", res.TopBettor)
	}
	if res.Payouts["Alice"] != 5825 {
		t.Fatalf("expected Alice payout=5825, got %f", res.Payouts["Alice"])
	}
	if res.Payouts["Bob"] != 3375 {
		t.Fatalf("expected Bob payout=3375, got %f", res.Payouts["Bob"])
	}
	if bets[2].Payout != 0 || !bets[2].Settled {
		t.Fatalf("expected Carol's losing bet settled with zero payout, got %+v", bets[2])
	}
}

func TestSettleIdempotentViaBook(t *testing.T) {
	bk := NewBook("battle-x", 0)
	if _, err := bk.PlaceBet("Alice", "winner", 100, models.BettingOpen); err != nil {
		t.Fatalf("unexpected error placing bet: %v", err)
	}
	first := bk.Settle("winner")
	bets := bk.Bets()
	bets[0].Amount = 99999 // mutate the snapshot, not the ledger
	second := bk.Settle("winner")
	if first.WinnersPool != second.WinnersPool || first.Payouts["Alice"] != second.Payouts["Alice"] {
		t.Fatalf("expected re-settlement to be a no-op returning the cached result, got %+v vs %+v", first, second)
	}
}

func TestPlaceBetRejectedOutsideBettingOpen(t *testing.T) {
	bk := NewBook("battle-y", 0)
	if _, err := bk.PlaceBet("Alice", "winner", 100, models.BettingLocked); err != ErrInvalidPhase {
		t.Fatalf("expected ErrInvalidPhase, got %v", err)
	}
}

func TestSettleRollsNoWinnerPoolToJackpot(t *testing.T) {
	bets := []*models.Bet{
		{ID: "only-bet", Bettor: "Dave", AgentID: "loser", Amount: 1000, PlacedAt: time.Now()},
	}
	res := Settle(bets, 0, "winner")
	if res.RolledToJackpot != res.WinnersPool+0.02*1000 {
		t.Fatalf("expected full winners pool plus top-bettor cut rolled to jackpot, got %+v", res)
	}
	if !bets[0].Settled || bets[0].Payout != 0 {
		t.Fatalf("expected losing bet settled with zero payout, got %+v", bets[0])
	}
}
