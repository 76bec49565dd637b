package db

import (
	"context"
	"fmt"

	"github.com/rawblock/gladiator-arena/pkg/models"
)

// SaveObservation persists one raw memory event. internal/memory.Store's
// in-process log is the source of truth; nothing in this module calls
// SaveObservation, SaveReflection or SavePlan.
func (s *PostgresStore) SaveObservation(ctx context.Context, o models.Observation) error {
	sql := `
	INSERT INTO memory_observations (id, agent_id, battle_id, epoch, summary, importance, tags)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO NOTHING;
	`
	_, err := s.pool.Exec(ctx, sql, o.ID, o.AgentID, o.BattleID, o.EpochNumber, o.Summary, o.Importance, o.Tags)
	if err != nil {
		return fmt.Errorf("failed to insert observation: %v", err)
	}
	return nil
}

// SaveReflection persists one synthesised reflection.
func (s *PostgresStore) SaveReflection(ctx context.Context, r models.Reflection) error {
	sql := `
	INSERT INTO memory_reflections (id, agent_id, tag, insight, abstraction_level, source_ids)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO NOTHING;
	`
	tag := ""
	if len(r.Tags) > 0 {
		tag = r.Tags[0]
	}
	_, err := s.pool.Exec(ctx, sql, r.ID, r.AgentID, tag, r.Insight, r.AbstractionLevel, r.ObservationIDs)
	if err != nil {
		return fmt.Errorf("failed to insert reflection: %v", err)
	}
	return nil
}

// SavePlan upserts one agent plan, since a plan's Status transitions in
// place (active -> applied/superseded/expired) rather than being replaced
// by a new row.
func (s *PostgresStore) SavePlan(ctx context.Context, p models.Plan) error {
	sql := `
	INSERT INTO memory_plans (id, agent_id, reflection_ids, strategy, status)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status;
	`
	_, err := s.pool.Exec(ctx, sql, p.ID, p.AgentID, p.ReflectionIDs, p.Strategy, p.Status)
	if err != nil {
		return fmt.Errorf("failed to upsert plan: %v", err)
	}
	return nil
}
