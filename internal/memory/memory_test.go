package memory

import "testing"

func TestReflectRequiresThreeSharedTagObservations(t *testing.T) {
	s := NewStore()
	s.RecordObservation("a", "battle-1", 1, "lost a clash", 5, []string{"combat"})
	s.RecordObservation("a", "battle-1", 2, "lost another clash", 6, []string{"combat"})
	if _, ok := s.Reflect("a", "combat", "I keep losing combat", 1); ok {
		t.Fatal("expected reflection to fail with only two tagged observations")
	}
	s.RecordObservation("a", "battle-1", 3, "lost a third clash", 7, []string{"combat"})
	refl, ok := s.Reflect("a", "combat", "I keep losing combat", 1)
	if !ok {
		t.Fatal("expected reflection to succeed with three tagged observations")
	}
	if len(refl.ObservationIDs) != 3 {
		t.Fatalf("expected 3 linked observations, got %d", len(refl.ObservationIDs))
	}
}

func TestAddPlanSupersedesPreviousActive(t *testing.T) {
	s := NewStore()
	first := s.AddPlan("a", "play defensively", nil)
	second := s.AddPlan("a", "go aggressive", nil)

	active, ok := s.ActivePlan("a")
	if !ok || active.ID != second.ID {
		t.Fatalf("expected second plan active, got %+v ok=%v", active, ok)
	}
	_ = first
}

func TestRetrieveTopKByImportanceWithTagIntersection(t *testing.T) {
	s := NewStore()
	s.RecordObservation("a", "battle-1", 1, "low importance combat note", 2, []string{"combat"})
	s.RecordObservation("a", "battle-1", 2, "high importance combat note", 9, []string{"combat"})
	s.RecordObservation("a", "battle-1", 3, "unrelated market note", 10, []string{"market"})

	got, _ := s.Retrieve("a", []string{"combat"}, 1)
	if len(got) != 1 || got[0].Importance != 9 {
		t.Fatalf("expected single highest-importance combat observation, got %+v", got)
	}
}
