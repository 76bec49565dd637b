package market

import (
	"context"
	"testing"

	"github.com/rawblock/gladiator-arena/pkg/models"
)

func TestSimulatedOracleDeterministicUnderSameSeed(t *testing.T) {
	base := models.PriceSet{ETH: 2000, BTC: 60000, SOL: 150, MON: 5}
	o1 := NewSimulatedOracle(42, base)
	o2 := NewSimulatedOracle(42, base)

	for epoch := 1; epoch <= 5; epoch++ {
		s1, err := o1.Fetch(context.Background(), epoch)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s2, err := o2.Fetch(context.Background(), epoch)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s1 != s2 {
			t.Fatalf("epoch %d: expected identical snapshots under the same seed, got %+v vs %+v", epoch, s1, s2)
		}
	}
}

func TestSimulatedOracleBoundsStepSize(t *testing.T) {
	base := models.PriceSet{ETH: 1000}
	o := NewSimulatedOracle(1, base)
	s, _ := o.Fetch(context.Background(), 1)
	if s.Changes.ETH > 0.05 || s.Changes.ETH < -0.05 {
		t.Fatalf("expected a single-epoch change within +-5%%, got %f", s.Changes.ETH)
	}
}
