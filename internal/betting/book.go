package betting

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rawblock/gladiator-arena/pkg/models"
)

// Book is one battle's bet ledger.
type Book struct {
	mu sync.Mutex
	battleID string
	bets []*models.Bet
	settled bool
	lastResult SettlementResult
	carriedJackpot float64
}

// NewBook opens a ledger for battleID, seeded with the jackpot carried
// forward from the previous settled battle (0 if none).
func NewBook(battleID string, carriedJackpot float64) *Book {
	return &Book{battleID: battleID, carriedJackpot: carriedJackpot}
}

// PlaceBet appends a bet, rejecting it with ErrInvalidPhase unless phase is
// BettingOpen (acceptance gate).
func (bk *Book) PlaceBet(bettor, agentID string, amount float64, phase models.BettingPhase) (models.Bet, error) {
	if phase != models.BettingOpen {
		return models.Bet{}, ErrInvalidPhase
	}
	bk.mu.Lock()
	defer bk.mu.Unlock()

	bet := models.Bet{
		ID: uuid.NewString(),
		BattleID: bk.battleID,
		Bettor: bettor,
		AgentID: agentID,
		Amount: amount,
		PlacedAt: time.Now(),
	}
	bk.bets = append(bk.bets, &bet)
	return bet, nil
}

// TotalPool sums every bet placed so far, settled or not.
func (bk *Book) TotalPool() float64 {
	bk.mu.Lock()
	defer bk.mu.Unlock()
	var total float64
	for _, b := range bk.bets {
		total += b.Amount
	}
	return total
}

// PoolByAgent buckets the current total stake per agent, for ComputeOdds.
func (bk *Book) PoolByAgent() map[string]float64 {
	bk.mu.Lock()
	defer bk.mu.Unlock()
	out := make(map[string]float64)
	for _, b := range bk.bets {
		out[b.AgentID] += b.Amount
	}
	return out
}

// Settle runs the pari-mutuel settlement exactly once; re-settling an
// already-settled book is a no-op that returns the cached result.
func (bk *Book) Settle(winnerAgentID string) SettlementResult {
	bk.mu.Lock()
	defer bk.mu.Unlock()
	if bk.settled {
		return bk.lastResult
	}
	result := Settle(bk.bets, bk.carriedJackpot, winnerAgentID)
	bk.settled = true
	bk.lastResult = result
	return result
}

// Bets returns a snapshot copy of the ledger, for persistence or odds math.
func (bk *Book) Bets() []models.Bet {
	bk.mu.Lock()
	defer bk.mu.Unlock()
	out := make([]models.Bet, len(bk.bets))
	for i, b := range bk.bets {
		out[i] = *b
	}
	return out
}

// Store tracks one Book per battle, grounded on internal/rating.Store's
// mutex-guarded map-of-aggregates shape.
type Store struct {
	mu sync.Mutex
	books map[string]*Book
}

func NewStore() *Store {
	return &Store{books: make(map[string]*Book)}
}

// Open creates (or returns the existing) Book for battleID.
func (s *Store) Open(battleID string, carriedJackpot float64) *Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.books[battleID]; ok {
		return b
	}
	b := NewBook(battleID, carriedJackpot)
	s.books[battleID] = b
	return b
}

func (s *Store) Get(battleID string) (*Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[battleID]
	return b, ok
}
