package grid

import (
	"testing"

	"github.com/rawblock/gladiator-arena/pkg/models"
)

func TestNewGridHas37Tiles(t *testing.T) {
	g := New()
	if g.TileCount() != 37 {
		t.Fatalf("expected 37 tiles, got %d", g.TileCount())
	}
}

func TestDistance(t *testing.T) {
	cases := []struct {
		a, b models.HexCoord
		want int
	}{
		{models.HexCoord{0, 0}, models.HexCoord{0, 0}, 0},
		{models.HexCoord{0, 0}, models.HexCoord{1, 0}, 1},
		{models.HexCoord{0, 0}, models.HexCoord{3, -3}, 3},
		{models.HexCoord{2, 1}, models.HexCoord{-1, -1}, 5},
	}
	for _, c := range cases {
		if got := models.Distance(c.a, c.b); got != c.want {
			t.Errorf("Distance(%v,%v) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestMoveRejectsNonAdjacent(t *testing.T) {
	g := New()
	g.Occupy(models.HexCoord{0, 0}, "a1")
	if g.Move(models.HexCoord{0, 0}, models.HexCoord{2, 0}, "a1") {
		t.Fatal("expected non-adjacent move to be rejected")
	}
}

func TestMoveRejectsOccupied(t *testing.T) {
	g := New()
	g.Occupy(models.HexCoord{0, 0}, "a1")
	g.Occupy(models.HexCoord{1, 0}, "a2")
	if g.Move(models.HexCoord{0, 0}, models.HexCoord{1, 0}, "a1") {
		t.Fatal("expected occupied move to be rejected")
	}
}

func TestMoveAppliesAndVacates(t *testing.T) {
	g := New()
	g.Occupy(models.HexCoord{0, 0}, "a1")
	if !g.Move(models.HexCoord{0, 0}, models.HexCoord{1, 0}, "a1") {
		t.Fatal("expected valid move to be accepted")
	}
	if g.Tile(models.HexCoord{0, 0}).Occupant != "" {
		t.Fatal("origin tile should be vacated")
	}
	if g.Tile(models.HexCoord{1, 0}).Occupant != "a1" {
		t.Fatal("destination tile should be occupied by a1")
	}
}

func TestPhaseTable(t *testing.T) {
	if Phase(0, 20) != models.PhaseLoot {
		t.Fatal("epoch 0 should be LOOT")
	}
	if Phase(19, 20) != models.PhaseFinalStand {
		t.Fatal("final epoch should be FINAL_STAND")
	}
}

func TestMaxSafeLevelMatchesTable(t *testing.T) {
	cases := map[models.Phase]int{
		models.PhaseLoot: 3,
		models.PhaseHunt: 2,
		models.PhaseBlood: 1,
		models.PhaseFinalStand: 0,
	}
	for phase, want := range cases {
		if got := MaxSafeLevel(phase); got != want {
			t.Errorf("MaxSafeLevel(%s) = %d, want %d", phase, got, want)
		}
	}
}

func TestClosestUnoccupiedNonStormPrefersCentre(t *testing.T) {
	g := New()
	from := models.HexCoord{2, 0}
	best := g.ClosestUnoccupiedNonStorm(from, models.PhaseHunt)
	if best == nil {
		t.Fatal("expected a candidate move")
	}
	if models.Level(*best) > MaxSafeLevel(models.PhaseHunt) {
		t.Fatalf("expected a non-storm tile, got level %d", models.Level(*best))
	}
}
