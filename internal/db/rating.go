package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rawblock/gladiator-arena/pkg/models"
)

// SaveRating upserts one agent's four-category rating. It is not part of
// coordinator.Persister, and nothing in this module calls it after
// internal/rating.ApplyBattleResult.
func (s *PostgresStore) SaveRating(ctx context.Context, r models.AgentRating) error {
	sql := `
	INSERT INTO agent_ratings (
		agent_id, prediction_mu, prediction_sigma, combat_mu, combat_sigma,
		survival_mu, survival_sigma, composite_mu, composite_sigma, battles, wins
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (agent_id) DO UPDATE SET
	prediction_mu = EXCLUDED.prediction_mu, prediction_sigma = EXCLUDED.prediction_sigma,
	combat_mu = EXCLUDED.combat_mu, combat_sigma = EXCLUDED.combat_sigma,
	survival_mu = EXCLUDED.survival_mu, survival_sigma = EXCLUDED.survival_sigma,
	composite_mu = EXCLUDED.composite_mu, composite_sigma = EXCLUDED.composite_sigma,
	battles = EXCLUDED.battles, wins = EXCLUDED.wins;
	`
	_, err := s.pool.Exec(ctx, sql, r.AgentID, r.Prediction.Mu, r.Prediction.Sigma, r.Combat.Mu, r.Combat.Sigma,
		r.Survival.Mu, r.Survival.Sigma, r.Composite.Mu, r.Composite.Sigma, r.Battles, r.Wins)
	if err != nil {
		return fmt.Errorf("failed to upsert agent rating: %v", err)
	}
	return nil
}

// SaveRatingHistory inserts one per-battle rating delta row.
func (s *PostgresStore) SaveRatingHistory(ctx context.Context, h models.RatingHistoryEntry) error {
	sql := `
	INSERT INTO agent_rating_history (id, agent_id, battle_id, category, delta_mu)
	VALUES ($1, $2, $3, $4, $5);
	`
	_, err := s.pool.Exec(ctx, sql, uuid.NewString(), h.AgentID, h.BattleID, h.Category, h.DeltaMu)
	if err != nil {
		return fmt.Errorf("failed to insert rating history: %v", err)
	}
	return nil
}

// LoadRatings reads every persisted rating back, the read-through pass
// cmd/arena runs once at process start to seed internal/rating.Store before
// any battle touches an agent that has played before.
func (s *PostgresStore) LoadRatings(ctx context.Context) ([]models.AgentRating, error) {
rows, err := s.pool.Query(ctx, `
	SELECT agent_id, prediction_mu, prediction_sigma, combat_mu, combat_sigma,
	survival_mu, survival_sigma, composite_mu, composite_sigma, battles, wins
	FROM agent_ratings;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query agent ratings: %v", err)
	}
	defer rows.Close()

	var out []models.AgentRating
	for rows.Next() {
		var r models.AgentRating
		if err := rows.Scan(&r.AgentID, &r.Prediction.Mu, &r.Prediction.Sigma, &r.Combat.Mu, &r.Combat.Sigma,
			&r.Survival.Mu, &r.Survival.Sigma, &r.Composite.Mu, &r.Composite.Sigma, &r.Battles, &r.Wins); err != nil {
			return nil, fmt.Errorf("failed to scan agent rating: %v", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
