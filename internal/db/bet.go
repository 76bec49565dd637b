package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rawblock/gladiator-arena/pkg/models"
)

// SaveBet persists one placed wager. Bets are append-only until Settle
// updates the same row with its payout, so this is a plain upsert keyed on
// the bet's own generated id rather than a battle/bettor composite key.
func (s *PostgresStore) SaveBet(ctx context.Context, b models.Bet) error {
	sql := `
	INSERT INTO bets (id, battle_id, bettor, agent_id, amount, placed_at, settled, payout)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO UPDATE SET settled = EXCLUDED.settled, payout = EXCLUDED.payout;
	`
	id := b.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx, sql, id, b.BattleID, b.Bettor, b.AgentID, b.Amount, b.PlacedAt, b.Settled, b.Payout)
	if err != nil {
		return fmt.Errorf("failed to upsert bet: %v", err)
	}
	return nil
}

// SaveSponsorship persists one recorded sponsorship, win or lose the
// first-accepted-per-epoch race; saving the same id again updates only
// Accepted. It is not part of coordinator.Persister, and nothing in this
// module calls it.
func (s *PostgresStore) SaveSponsorship(ctx context.Context, sp models.Sponsorship) error {
	sql := `
	INSERT INTO sponsorships (id, battle_id, beneficiary, sponsor, amount, tier, epoch, accepted, message, placed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO UPDATE SET accepted = EXCLUDED.accepted;
	`
	_, err := s.pool.Exec(ctx, sql, sp.ID, sp.BattleID, sp.Beneficiary, sp.Sponsor, sp.Amount, sp.Tier, sp.Epoch, sp.Accepted, sp.Message, sp.PlacedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert sponsorship: %v", err)
	}
	return nil
}

// JackpotCarry reads the singleton jackpot_pool row's current amount, the
// carry-forward CreateBattle reads through coordinator.Persister and hands
// to the fresh battle's betting book.
func (s *PostgresStore) JackpotCarry(ctx context.Context) (float64, error) {
	var amount float64
	err := s.pool.QueryRow(ctx, `SELECT amount FROM jackpot_pool WHERE id = TRUE`).Scan(&amount)
	if err != nil {
		return 0, fmt.Errorf("failed to read jackpot pool: %v", err)
	}
	return amount, nil
}

// SaveJackpotCarry overwrites the singleton jackpot_pool row, called once a
// battle settles with whatever remainder betting.SettlementResult reports
// carrying forward to the next battle.
func (s *PostgresStore) SaveJackpotCarry(ctx context.Context, amount float64) error {
	_, err := s.pool.Exec(ctx, `UPDATE jackpot_pool SET amount = $1 WHERE id = TRUE`, amount)
	if err != nil {
		return fmt.Errorf("failed to update jackpot pool: %v", err)
	}
	return nil
}
