package secretary

import (
	"context"
	"testing"

	"github.com/rawblock/gladiator-arena/internal/grid"
	"github.com/rawblock/gladiator-arena/pkg/models"
)

func battleWithTwoLiveNeighbors(t *testing.T) (*models.Battle, *grid.Grid) {
	t.Helper()
	g := grid.New()

	self := models.NewAgent("self", "HERO", models.ClassWarrior, "")
	selfPos := models.HexCoord{Q: 0, R: 0}
	self.Position = &selfPos
	g.Occupy(selfPos, self.ID)

	dead := models.NewAgent("dead", "DEADGUY", models.ClassWarrior, "")
	dead.Alive = false

	live := models.NewAgent("dedfng", "DEDFNG", models.ClassSurvivor, "")
	livePos := models.HexCoord{Q: 1, R: 0}
	live.Position = &livePos
	live.HP = 400
	g.Occupy(livePos, live.ID)

	b := &models.Battle{
		ID: "b1",
		Status: models.StatusActive,
		Roster: []*models.Agent{self, dead, live},
	}
	return b, g
}

// TestSecretaryRepairsS6 reproduces scenario S6 exactly: lowercase
// asset/direction, an over-cap stake, and a target name that must resolve by
// fuzzy match to a live adjacent agent rather than the dead one it
// resembles more closely by edit distance.
func TestSecretaryRepairsS6(t *testing.T) {
	b, g := battleWithTwoLiveNeighbors(t)
	s := New(nil, false, false)

	raw := models.Decision{
		AgentID: "self",
		Prediction: models.Prediction{
			Asset: models.Asset("eth"),
			Direction: models.Direction("up"),
			StakePercent: 80,
		},
		Stance: models.StanceAttack,
		TargetName: "DEDGUY",
	}

	d, issues := s.Validate(context.Background(), b, g, models.PhaseHunt, raw)

	if d.Prediction.Asset != models.AssetETH {
		t.Fatalf("expected asset ETH, got %s", d.Prediction.Asset)
	}
	if d.Prediction.Direction != models.DirectionUp {
		t.Fatalf("expected direction UP, got %s", d.Prediction.Direction)
	}
	if d.Prediction.StakePercent != models.MaxStakePercent {
		t.Fatalf("expected stake clamped to 50, got %d", d.Prediction.StakePercent)
	}
	if d.TargetName != "DEDFNG" {
		t.Fatalf("expected fuzzy match to DEDFNG, got %q", d.TargetName)
	}
	if d.CombatStake != 100 { // 10% of the acting agent's 1000 HP
		t.Fatalf("expected combatStake defaulted to 10%% of current HP (100), got %d", d.CombatStake)
	}
	if len(issues) == 0 {
		t.Fatal("expected repair issues to be recorded")
	}
}

func TestLayer1PredictionClampsStake(t *testing.T) {
	s := New(nil, false, false)
	d, issues := s.layer1Prediction(models.Decision{
			Prediction: models.Prediction{Asset: models.AssetBTC, Direction: models.DirectionDown, StakePercent: 999},
		}, nil)
	if d.Prediction.StakePercent != models.MaxStakePercent {
		t.Fatalf("expected clamp to %d, got %d", models.MaxStakePercent, d.Prediction.StakePercent)
	}
	if len(issues) != 1 {
		t.Fatalf("expected one issue, got %d", len(issues))
	}
}

func TestLayer1CombatTargetDowngradesWhenUnresolved(t *testing.T) {
	b, g := battleWithTwoLiveNeighbors(t)
	s := New(nil, false, false)
	vc := validationContext{battle: b, grid: g, phase: models.PhaseHunt, self: b.AgentByID("self")}

	d, _ := s.layer1CombatTarget(vc, models.Decision{
			AgentID: "self",
			Stance: models.StanceAttack,
			TargetName: "NoSuchAgent",
		}, nil)

	if d.Stance != models.StanceNone {
		t.Fatalf("expected downgrade to NONE, got %s", d.Stance)
	}
	if d.TargetID != "" || d.TargetName != "" {
		t.Fatal("expected target cleared")
	}
}

func TestLayer1MoveRejectsNonAdjacent(t *testing.T) {
	b, g := battleWithTwoLiveNeighbors(t)
	s := New(nil, false, false)
	vc := validationContext{battle: b, grid: g, phase: models.PhaseHunt, self: b.AgentByID("self")}

	far := models.HexCoord{Q: 3, R: 0}
	d, issues := s.layer1Move(vc, models.Decision{AgentID: "self", Move: &far}, nil)
	if d.Move != nil {
		t.Fatal("expected non-adjacent move discarded")
	}
	if len(issues) != 1 {
		t.Fatalf("expected one issue, got %d", len(issues))
	}
}

func TestLayer1FallbackMoveInjectsWhenOnStorm(t *testing.T) {
	b, g := battleWithTwoLiveNeighbors(t)
	s := New(nil, false, false)
	self := b.AgentByID("self")
	// FINAL_STAND: MaxSafeLevel is 0, so any non-origin tile is storm.
	stormPos := models.HexCoord{Q: 2, R: -1}
	self.Position = &stormPos
	g.Occupy(stormPos, self.ID)
	vc := validationContext{battle: b, grid: g, phase: models.PhaseFinalStand, self: self}

	d, issues := s.layer1FallbackMove(vc, models.Decision{AgentID: "self"}, nil)
	if d.Move == nil {
		t.Fatal("expected fallback move injected while standing in storm")
	}
	if len(issues) != 1 {
		t.Fatalf("expected one issue, got %d", len(issues))
	}
}

func TestLayer1AllianceProposeAndBreakKeepsBreakOnly(t *testing.T) {
	s := New(nil, false, false)
	b, _ := battleWithTwoLiveNeighbors(t)
	vc := validationContext{battle: b, grid: nil, phase: models.PhaseHunt, self: b.AgentByID("self")}

	d, issues := s.layer1Alliance(vc, models.Decision{
			AgentID: "self",
			AllianceProposeTarget: "DEDFNG",
			AllianceBreak: true,
		}, nil)

	if d.AllianceProposeTarget != "" {
		t.Fatal("expected propose target dropped when break also set")
	}
	if !d.AllianceBreak {
		t.Fatal("expected break to survive")
	}
	if len(issues) != 1 {
		t.Fatalf("expected one issue, got %d", len(issues))
	}
}

func TestSafeHybridKeepsValidFieldsAndDefaultsTheRest(t *testing.T) {
	s := New(nil, false, false)
	hybrid := s.safeHybrid(models.Decision{
		AgentID: "self",
		Prediction: models.Prediction{
			Asset: models.AssetSOL,
			Direction: models.Direction("sideways"),
			StakePercent: 15,
		},
		Reasoning: "garbled",
	})
	if hybrid.Prediction.Asset != models.AssetSOL {
		t.Fatal("expected valid asset kept")
	}
	if hybrid.Prediction.Direction != models.DirectionUp {
		t.Fatal("expected invalid direction defaulted to UP")
	}
	if hybrid.Prediction.StakePercent != 15 {
		t.Fatal("expected valid stake kept")
	}
	if hybrid.Stance != models.StanceNone {
		t.Fatal("expected stance defaulted to NONE")
	}
}
