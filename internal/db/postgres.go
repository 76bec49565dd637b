// Package db implements the persisted-state layout: Battles, Agents,
// Epochs, EpochActions, Bets, Sponsorships, BattleRecords,
// MemoryObservations, MemoryReflections, MemoryPlans, AgentRatings,
// AgentRatingHistory, FaucetClaims (declared, no accessor — wallet
// integration is out of scope), and the JackpotPool singleton. Built
// around pgxpool.Pool, Connect/Ping/Close, InitSchema reading
// internal/db/schema.sql from disk (relative to the working directory), and ON CONFLICT ... DO UPDATE upserts inside explicit
// transactions.
package db

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore wraps the connection pool every persistence method shares.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect initializes the connection pool to PostgreSQL using pgx.
func Connect(connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping failed: %v", err)
	}

	log.Println("Successfully connected to PostgreSQL for Gladiator Arena")
	return &PostgresStore{pool: pool}, nil
}

// Close gracefully closes the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema loads and executes schema.sql.
func (s *PostgresStore) InitSchema() error {
	schemaBytes, err := os.ReadFile("internal/db/schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema file: %v", err)
	}

	_, err = s.pool.Exec(context.Background(), string(schemaBytes))
	if err != nil {
		return fmt.Errorf("failed to execute schema migrations: %v", err)
	}

	log.Println("Gladiator Arena schema initialized")
	return nil
}

// GetPool exposes the connection pool for raw access; nothing in this
// module calls it.
func (s *PostgresStore) GetPool() *pgxpool.Pool {
	return s.pool
}
