// Package strategy implements the five class-specific decision policies
// over one shared contract. Classes never share an inheritance chain —
// each is an independent Strategy implementation: a narrow, unrelated
// wrapper type rather than a shared base struct.
package strategy

import (
	"context"

	"github.com/rawblock/gladiator-arena/pkg/models"
)

// AgentSnapshot is the read-only view of a roster member handed to a
// Strategy; strategies never see the live *models.Agent (the Coordinator
// must not observe any strategy-internal state, and that isolation cuts
// both ways — strategies get a copy, not a reference).
type AgentSnapshot struct {
	ID string
	Name string
	Class models.Class
	HP int
	MaxHP int
	Alive bool
	Position *models.HexCoord
	SkillCooldown int
	AllyID string
}

// DecisionRequest is the input to every Strategy.Decide call.
type DecisionRequest struct {
	Self AgentSnapshot
	Others []AgentSnapshot
	Market models.MarketSnapshot
	RecentLessons []string
	SpatialContext string
	SkillContext string
	AllianceContext string
}

// SkillDefinition describes a class's unique ability for display and for
// the Resolution Pipeline's skill-activation phase (step 5).
type SkillDefinition struct {
	Name string
	Description string
	Cooldown int
}

// Strategy is the capability every gladiator class implements identically
// in shape, differently in constraint.
type Strategy interface {
	Decide(ctx context.Context, req DecisionRequest) (models.Decision, error)
	Personality() string
	Skill() SkillDefinition
}

// clampStake forces a stake percentage into [lo, hi].
func clampStake(pct, lo, hi int) int {
	if pct < lo {
		return lo
	}
	if pct > hi {
		return hi
	}
	return pct
}

// appendGuardrailNote appends the observability suffix every class wrapper
// attaches when it silently rewrites an LLM's output.
func appendGuardrailNote(reasoning, note string) string {
	if note == "" {
		return reasoning
	}
	return reasoning + " [Guardrails: " + note + "]"
}
