// Package memory implements the three-layer generative memory every
// strategy consults before deciding: observations, synthesised
// reflections, and actionable plans. Appends to an in-process event log
// (not size-bounded) and folds it into derived summaries rather than querying a database per
// event.
package memory

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rawblock/gladiator-arena/pkg/models"
)

// minReflectionObservations is the "≥3 recent observations sharing a tag"
// synthesis threshold for reflection.
const minReflectionObservations = 3

// Store is a per-agent generative memory bank, concurrent-safe for the same
// reason internal/rating.Store is: many strategies may read/record
// concurrently across battles sharing a process.
type Store struct {
	mu sync.RWMutex
	observations map[string][]models.Observation
	reflections map[string][]models.Reflection
	plans map[string][]models.Plan
}

func NewStore() *Store {
	return &Store{
		observations: make(map[string][]models.Observation),
		reflections: make(map[string][]models.Reflection),
		plans: make(map[string][]models.Plan),
	}
}

// RecordObservation appends one sub-event to an agent's raw memory.
func (s *Store) RecordObservation(agentID, battleID string, epoch int, summary string, importance int, tags []string) models.Observation {
	if importance < 1 {
		importance = 1
	}
	if importance > 10 {
		importance = 10
	}
	obs := models.Observation{
		ID: uuid.NewString(),
		AgentID: agentID,
		BattleID: battleID,
		EpochNumber: epoch,
		Summary: summary,
		Importance: importance,
		Tags: tags,
	}
	s.mu.Lock()
	s.observations[agentID] = append(s.observations[agentID], obs)
	s.mu.Unlock()
	return obs
}

// Reflect synthesises a Reflection from every observation sharing tag, if
// at least minReflectionObservations qualify; returns ok=false otherwise.
// abstractionLevel is chosen by the caller and clamped into [1,3]; nothing
// in this module calls Reflect outside the tests.
func (s *Store) Reflect(agentID, tag, insight string, abstractionLevel int) (models.Reflection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Observation
	for _, o := range s.observations[agentID] {
		if hasTag(o.Tags, tag) {
			matched = append(matched, o)
		}
	}
	if len(matched) < minReflectionObservations {
		return models.Reflection{}, false
	}
	if abstractionLevel < 1 {
		abstractionLevel = 1
	}
	if abstractionLevel > 3 {
		abstractionLevel = 3
	}

	ids := make([]string, len(matched))
	for i, o := range matched {
		ids[i] = o.ID
	}
	refl := models.Reflection{
		ID: uuid.NewString(),
		AgentID: agentID,
		ObservationIDs: ids,
		Insight: insight,
		AbstractionLevel: abstractionLevel,
		Tags: []string{tag},
	}
	s.reflections[agentID] = append(s.reflections[agentID], refl)
	return refl, true
}

// AddPlan derives a new active Plan from one or more reflections. Any
// previously active plan for the agent is superseded.
func (s *Store) AddPlan(agentID, strategy string, reflectionIDs []string) models.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.plans[agentID] {
		if p.Status == models.PlanActive {
			s.plans[agentID][i].Status = models.PlanSuperseded
		}
	}
	plan := models.Plan{
		ID: uuid.NewString(),
		AgentID: agentID,
		ReflectionIDs: reflectionIDs,
		Strategy: strategy,
		Status: models.PlanActive,
	}
	s.plans[agentID] = append(s.plans[agentID], plan)
	return plan
}

// MarkApplied transitions the agent's active plan to applied, once a
// strategy has actually acted on it.
func (s *Store) MarkApplied(agentID, planID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.plans[agentID] {
		if p.ID == planID && p.Status == models.PlanActive {
			s.plans[agentID][i].Status = models.PlanApplied
			return
		}
	}
}

// ExpirePlan marks a stale active plan expired (e.g. the battle it was
// drawn up for has ended without the agent ever acting on it).
func (s *Store) ExpirePlan(agentID, planID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.plans[agentID] {
		if p.ID == planID && p.Status == models.PlanActive {
			s.plans[agentID][i].Status = models.PlanExpired
			return
		}
	}
}

// ActivePlan returns the agent's current active plan, if any.
func (s *Store) ActivePlan(agentID string) (models.Plan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.plans[agentID]) - 1; i >= 0; i-- {
		if s.plans[agentID][i].Status == models.PlanActive {
			return s.plans[agentID][i], true
		}
	}
	return models.Plan{}, false
}

// Retrieve implements decision-time retrieval rule: the top-k
// highest-importance observations whose tags intersect situationTags, plus
// the most recent active plan.
func (s *Store) Retrieve(agentID string, situationTags []string, k int) ([]models.Observation, *models.Plan) {
	s.mu.RLock()
	var candidates []models.Observation
	for _, o := range s.observations[agentID] {
		if intersects(o.Tags, situationTags) {
			candidates = append(candidates, o)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Importance > candidates[j].Importance })
	if k > 0 && len(candidates) > k {
		candidates = candidates[:k]
	}

	var plan *models.Plan
	if p, ok := s.ActivePlan(agentID); ok {
		plan = &p
	}
	return candidates, plan
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, x := range a {
		if hasTag(b, x) {
			return true
		}
	}
	return false
}
