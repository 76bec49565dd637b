package sponsorship

import (
	"testing"
	"time"

	"github.com/rawblock/gladiator-arena/pkg/models"
)

func TestHonouredKeepsOnlyFirstAcceptedPerAgentPerEpoch(t *testing.T) {
	l := NewLedger("battle-1")
	first := l.Record("Alice", "agent-a", 10, models.TierT1, 3)
	time.Sleep(time.Millisecond)
	second := l.Record("Bob", "agent-a", 50, models.TierT3, 3)

	effects := l.Honoured(3)
	if len(effects) != 1 {
		t.Fatalf("expected one honoured effect, got %d", len(effects))
	}
	eff, ok := effects["agent-a"]
	if !ok || eff.HPBoost != models.TierEffects[models.TierT1].HPBoost {
		t.Fatalf("expected T1 tier effect from the first-accepted sponsorship, got %+v", eff)
	}

	all := l.All()
	var firstAccepted, secondAccepted bool
	for _, s := range all {
		if s.ID == first.ID {
			firstAccepted = s.Accepted
		}
		if s.ID == second.ID {
			secondAccepted = s.Accepted
		}
	}
	if !firstAccepted {
		t.Fatal("expected first sponsorship to be accepted")
	}
	if secondAccepted {
		t.Fatal("expected second same-epoch sponsorship to be recorded but not accepted")
	}
}

func TestHonouredScopedToEpoch(t *testing.T) {
	l := NewLedger("battle-1")
	l.Record("Alice", "agent-a", 10, models.TierT1, 1)
	l.Record("Bob", "agent-a", 10, models.TierT2, 2)

	effects := l.Honoured(2)
	if effects["agent-a"].HPBoost != models.TierEffects[models.TierT2].HPBoost {
		t.Fatalf("expected epoch-2 sponsorship only, got %+v", effects["agent-a"])
	}
}
