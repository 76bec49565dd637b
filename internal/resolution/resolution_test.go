package resolution

import (
	"testing"

	"github.com/rawblock/gladiator-arena/internal/grid"
	"github.com/rawblock/gladiator-arena/pkg/models"
)

func zeroMarket() models.MarketSnapshot {
	return models.MarketSnapshot{}
}

func newTestBattle(agents ...*models.Agent) *models.Battle {
	return &models.Battle{
		ID: "test",
		Status: models.StatusActive,
		MaxEpochs: 20,
		Roster: agents,
	}
}

// TestS1SoloBleedToDeath reproduces S1 exactly.
func TestS1SoloBleedToDeath(t *testing.T) {
	a := models.NewAgent("a", "LoneWarrior", models.ClassWarrior, "")
	a.HP = 3
	pos := models.HexCoord{}
	a.Position = &pos
	b := newTestBattle(a)
	p := New(grid.New(), 1)

	decisions := map[string]models.Decision{"a": models.NewDefaultDecision("a", models.AssetETH)}

	rec1 := p.Resolve(Input{Battle: b, Market: zeroMarket(), Decisions: decisions})
	if a.HP != 2 {
		t.Fatalf("epoch 1: expected hp=2, got %d", a.HP)
	}
	if rec1.BattleComplete {
		t.Fatal("epoch 1: battle should not be complete yet")
	}

	rec2 := p.Resolve(Input{Battle: b, Market: zeroMarket(), Decisions: decisions})
	if a.HP != 1 {
		t.Fatalf("epoch 2: expected hp=1, got %d", a.HP)
	}
	if rec2.BattleComplete {
		t.Fatal("epoch 2: battle should not be complete yet")
	}

	rec3 := p.Resolve(Input{Battle: b, Market: zeroMarket(), Decisions: decisions})
	if a.HP != 0 {
		t.Fatalf("epoch 3: expected hp=0, got %d", a.HP)
	}
	if !rec3.BattleComplete {
		t.Fatal("epoch 3: expected battle complete")
	}
	if rec3.WinnerID != "a" {
		t.Fatalf("expected winner a, got %s", rec3.WinnerID)
	}
	if len(rec3.Deaths) != 1 || rec3.Deaths[0].Cause != models.CauseBleed {
		t.Fatalf("expected single bleed death, got %+v", rec3.Deaths)
	}
}

func adjacentPair(classA, classB models.Class, hpA, hpB int) (*models.Agent, *models.Agent, *grid.Grid) {
	g := grid.New()
	a := models.NewAgent("agent-a", "A", classA, "")
	b := models.NewAgent("agent-b", "B", classB, "")
	pa := models.HexCoord{Q: 0, R: 0}
	pb := models.HexCoord{Q: 1, R: 0}
	a.Position = &pa
	b.Position = &pb
	a.HP = hpA
	b.HP = hpB
	g.Occupy(pa, a.ID)
	g.Occupy(pb, b.ID)
	return a, b, g
}

// TestS2TriangleOverpower reproduces S2 by driving the combat
// triangle step directly, isolated from bleed and the other whole-epoch
// steps the scenario's worked numbers don't account for.
func TestS2TriangleOverpower(t *testing.T) {
	a, bAgent, g := adjacentPair(models.ClassWarrior, models.ClassParasite, 500, 500)
	battle := newTestBattle(a, bAgent)
	p := New(g, 2)

	decisions := map[string]models.Decision{
		"agent-a": {
			AgentID: "agent-a",
			Stance: models.StanceAttack,
			TargetID: "agent-b",
			TargetName: "B",
			CombatStake: 100,
		},
		"agent-b": {
			AgentID: "agent-b",
			Stance: models.StanceSabotage,
			TargetID: "agent-a",
			TargetName: "A",
			CombatStake: 100,
		},
	}
	order := []string{"agent-a", "agent-b"}
	targets := p.resolveCombatTargets(battle, order, decisions)
	combats := p.resolveCombatTriangle(battle, order, decisions, targets, nil, nil)

	if len(combats) != 1 {
		t.Fatalf("expected exactly one combat event (B's sabotage preempted), got %d", len(combats))
	}
	c := combats[0]
	if c.Outcome != models.OutcomeOverpower {
		t.Fatalf("expected Overpower, got %s", c.Outcome)
	}
	if c.AttackerID != "agent-a" {
		t.Fatalf("expected agent-a as winning aggressor, got %s", c.AttackerID)
	}
	if c.HPChangeTarget != -100 {
		t.Fatalf("expected B to lose 100, got %d", c.HPChangeTarget)
	}
	if c.HPChangeAttacker != 120 {
		t.Fatalf("expected A to heal 120, got %d", c.HPChangeAttacker)
	}
	if a.HP != 620 || bAgent.HP != 400 {
		t.Fatalf("expected A=620 B=400, got A=%d B=%d", a.HP, bAgent.HP)
	}
}

// TestS3TriangleAbsorb reproduces S3, driving the combat triangle
// and defend-cost steps directly (the scenario's worked final HP numbers
// stop short of that epoch's mandatory bleed step).
func TestS3TriangleAbsorb(t *testing.T) {
	a, bAgent, g := adjacentPair(models.ClassWarrior, models.ClassSurvivor, 500, 500)
	battle := newTestBattle(a, bAgent)
	p := New(g, 3)

	decisions := map[string]models.Decision{
		"agent-a": {
			AgentID: "agent-a",
			Stance: models.StanceAttack,
			TargetID: "agent-b",
			TargetName: "B",
			CombatStake: 200,
		},
		"agent-b": {
			AgentID: "agent-b",
			Stance: models.StanceDefend,
		},
	}
	order := []string{"agent-a", "agent-b"}
	epochStartHP := map[string]int{"agent-a": 500, "agent-b": 500}

	targets := p.resolveCombatTargets(battle, order, decisions)
	combats := p.resolveCombatTriangle(battle, order, decisions, targets, nil, nil)
	defends := p.applyDefendCost(battle, order, decisions, nil, epochStartHP)

	if len(combats) != 1 {
		t.Fatalf("expected one combat event, got %d", len(combats))
	}
	c := combats[0]
	if c.Outcome != models.OutcomeAbsorb {
		t.Fatalf("expected Absorb, got %s", c.Outcome)
	}
	if c.HPChangeTarget != -40 {
		t.Fatalf("expected B to lose 40, got %d", c.HPChangeTarget)
	}
	if c.HPChangeAttacker != -120 {
		t.Fatalf("expected A to lose 120 (reflected), got %d", c.HPChangeAttacker)
	}
	if len(defends) != 1 || defends[0].Cost != 15 {
		t.Fatalf("expected B's defend cost 15, got %+v", defends)
	}
	if a.HP != 380 {
		t.Fatalf("expected A final hp 380, got %d", a.HP)
	}
	if bAgent.HP != 445 {
		t.Fatalf("expected B final hp 445 (500-40-15), got %d", bAgent.HP)
	}
}

// TestS5TimeoutWin reproduces S5.
func TestS5TimeoutWin(t *testing.T) {
	a, bAgent, g := adjacentPair(models.ClassWarrior, models.ClassSurvivor, 420, 419)
	battle := newTestBattle(a, bAgent)
	battle.MaxEpochs = 1
	battle.Epoch = 0
	p := New(g, 5)

	decisions := map[string]models.Decision{
		"agent-a": models.NewDefaultDecision("agent-a", models.AssetETH),
		"agent-b": models.NewDefaultDecision("agent-b", models.AssetETH),
	}

	rec := p.Resolve(Input{Battle: battle, Market: zeroMarket(), Decisions: decisions})

	if !rec.BattleComplete {
		t.Fatal("expected battle complete at maxEpochs timeout")
	}
	if rec.WinnerID != "agent-a" {
		t.Fatalf("expected agent-a (highest hp) to win, got %s", rec.WinnerID)
	}
}

func TestDeathAttributionMultiWhenCombatAndBleedBothLand(t *testing.T) {
	a, bAgent, g := adjacentPair(models.ClassWarrior, models.ClassParasite, 500, 6)
	battle := newTestBattle(a, bAgent)
	p := New(g, 7)

	decisions := map[string]models.Decision{
		"agent-a": {
			AgentID: "agent-a",
			Prediction: models.Prediction{Asset: models.AssetETH, Direction: models.DirectionUp, StakePercent: 5},
			Stance: models.StanceAttack,
			TargetID: "agent-b",
			TargetName: "B",
			CombatStake: 5,
		},
		"agent-b": models.NewDefaultDecision("agent-b", models.AssetETH),
	}

	rec := p.Resolve(Input{Battle: battle, Market: zeroMarket(), Decisions: decisions})

	if bAgent.Alive {
		t.Fatal("expected B to die from combined combat+bleed")
	}
	if len(rec.Deaths) != 1 {
		t.Fatalf("expected one death, got %d", len(rec.Deaths))
	}
	if rec.Deaths[0].Cause != models.CauseMulti {
		t.Fatalf("expected cause multi, got %s", rec.Deaths[0].Cause)
	}
}
