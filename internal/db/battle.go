package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rawblock/gladiator-arena/pkg/models"
)

// SaveBattle upserts a battle's top-level row plus its full roster: begin
// a transaction, upsert the parent row, then batch-insert/upsert child
// rows, commit.
func (s *PostgresStore) SaveBattle(ctx context.Context, b *models.Battle) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	upsertBattleSQL := `
	INSERT INTO battles (id, status, betting_phase, epoch, max_epochs, winner_id, started_at, ended_at, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10)
	ON CONFLICT (id) DO UPDATE SET
	status = EXCLUDED.status, betting_phase = EXCLUDED.betting_phase,
	epoch = EXCLUDED.epoch, winner_id = EXCLUDED.winner_id,
	started_at = EXCLUDED.started_at, ended_at = EXCLUDED.ended_at,
	updated_at = EXCLUDED.updated_at;
	`
	_, err = tx.Exec(ctx, upsertBattleSQL, b.ID, b.Status, b.BettingPhase, b.Epoch, b.MaxEpochs,
		b.WinnerID, b.StartedAt, b.EndedAt, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert battle: %v", err)
	}

	upsertAgentSQL := `
	INSERT INTO agents (id, battle_id, name, class, hp, max_hp, alive, kills, epochs_survived, personality_prompt)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO UPDATE SET
	hp = EXCLUDED.hp, alive = EXCLUDED.alive, kills = EXCLUDED.kills,
	epochs_survived = EXCLUDED.epochs_survived;
	`
	for _, a := range b.Roster {
		_, err = tx.Exec(ctx, upsertAgentSQL, a.ID, b.ID, a.Name, a.Class, a.HP, a.MaxHP,
			a.Alive, a.Kills, a.EpochsSurvived, a.PersonalityPrompt)
		if err != nil {
			return fmt.Errorf("failed to upsert agent %s: %v", a.ID, err)
		}
	}

	return tx.Commit(ctx)
}

// SaveEpoch persists one resolved epoch plus the decisions behind it.
// Satisfies coordinator.Persister, the narrow write interface the Battle
// Coordinator depends on instead of importing internal/db directly.
func (s *PostgresStore) SaveEpoch(battleID string, rec models.EpochRecord) error {
	ctx := context.Background()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	marketJSON, err := json.Marshal(rec.Market)
	if err != nil {
		return fmt.Errorf("failed to marshal market snapshot: %v", err)
	}

	epochID := uuid.NewString()
	insertEpochSQL := `
	INSERT INTO epochs (id, battle_id, epoch_number, market, battle_complete, winner_id)
	VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
	ON CONFLICT (battle_id, epoch_number) DO UPDATE SET
	market = EXCLUDED.market, battle_complete = EXCLUDED.battle_complete,
	winner_id = EXCLUDED.winner_id
	RETURNING id;
	`
	if err := tx.QueryRow(ctx, insertEpochSQL, epochID, battleID, rec.EpochNumber, marketJSON,
		rec.BattleComplete, rec.WinnerID).Scan(&epochID); err != nil {
		return fmt.Errorf("failed to insert epoch: %v", err)
	}

	insertActionSQL := `
	INSERT INTO epoch_actions (id, epoch_id, agent_id, decision)
	VALUES ($1, $2, $3, $4);
	`
	for agentID, d := range rec.Decisions {
		decisionJSON, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("failed to marshal decision for %s: %v", agentID, err)
		}
		if _, err := tx.Exec(ctx, insertActionSQL, uuid.NewString(), epochID, agentID, decisionJSON); err != nil {
			return fmt.Errorf("failed to insert epoch action: %v", err)
		}
	}

	return tx.Commit(ctx)
}

// SaveBattleRecord persists the sealed outcome of a finished battle plus
// its settlement summary, once per battle.
func (s *PostgresStore) SaveBattleRecord(ctx context.Context, battleID, winnerID string, totalEpochs int, settlement interface{}) error {
	settlementJSON, err := json.Marshal(settlement)
	if err != nil {
		return fmt.Errorf("failed to marshal settlement: %v", err)
	}
	sql := `
	INSERT INTO battle_records (id, battle_id, winner_id, total_epochs, settlement)
	VALUES ($1, $2, NULLIF($3, ''), $4, $5)
	ON CONFLICT (battle_id) DO UPDATE SET
	winner_id = EXCLUDED.winner_id, total_epochs = EXCLUDED.total_epochs,
	settlement = EXCLUDED.settlement;
	`
	_, err = s.pool.Exec(ctx, sql, uuid.NewString(), battleID, winnerID, totalEpochs, settlementJSON)
	return err
}
