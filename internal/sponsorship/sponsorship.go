// Package sponsorship implements tiered per-agent buffs, recorded
// append-only but honouring only the first-accepted sponsorship per agent
// per epoch — an append-then-filter ledger shape.
package sponsorship

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rawblock/gladiator-arena/internal/resolution"
	"github.com/rawblock/gladiator-arena/pkg/models"
)

// Ledger tracks every sponsorship recorded for one battle, applied or not.
type Ledger struct {
	mu sync.Mutex
	battleID string
	entries []*models.Sponsorship
}

func NewLedger(battleID string) *Ledger {
	return &Ledger{battleID: battleID}
}

// Record appends a sponsorship for the current epoch. Acceptance (whether
// this is the first-in-epoch for the beneficiary, and therefore honoured)
// is decided lazily by Honoured, not at record time, since the Coordinator
// may still be collecting sponsorships when this is called.
func (l *Ledger) Record(sponsor, beneficiary string, amount float64, tier models.SponsorTier, epoch int) models.Sponsorship {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := epoch
	s := &models.Sponsorship{
		ID: uuid.NewString(),
		BattleID: l.battleID,
		Beneficiary: beneficiary,
		Sponsor: sponsor,
		Amount: amount,
		Tier: tier,
		Epoch: &e,
		PlacedAt: time.Now(),
	}
	l.entries = append(l.entries, s)
	return *s
}

// Honoured computes, for the given epoch, the single sponsorship per
// beneficiary that wins the first-accepted-by-placedAt rule, marks it
// Accepted, and returns the resolution.SponsorEffect map the Pipeline
// expects. Every later-recorded sponsorship for the same beneficiary/epoch
// stays Accepted=false: recorded, never applied.
func (l *Ledger) Honoured(epoch int) map[string]resolution.SponsorEffect {
	l.mu.Lock()
	defer l.mu.Unlock()

	winners := make(map[string]*models.Sponsorship)
	for _, s := range l.entries {
		if s.Epoch == nil || *s.Epoch != epoch {
			continue
		}
		cur, ok := winners[s.Beneficiary]
		if !ok || s.PlacedAt.Before(cur.PlacedAt) {
			winners[s.Beneficiary] = s
		}
	}

	effects := make(map[string]resolution.SponsorEffect, len(winners))
	for _, s := range l.entries {
		if s.Epoch == nil || *s.Epoch != epoch {
			continue
		}
		s.Accepted = winners[s.Beneficiary] == s
	}
	for beneficiary, s := range winners {
		tier := models.TierEffects[s.Tier]
		effects[beneficiary] = resolution.SponsorEffect{
			HPBoost: tier.HPBoost,
			AttackBoost: tier.AttackBoost,
			FreeDefend: tier.FreeDefend,
		}
	}
	return effects
}

// All returns a snapshot of every sponsorship recorded, for persistence.
func (l *Ledger) All() []models.Sponsorship {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Sponsorship, len(l.entries))
	for i, s := range l.entries {
		out[i] = *s
	}
	return out
}

// Store tracks one Ledger per battle.
type Store struct {
	mu sync.Mutex
	ledgers map[string]*Ledger
}

func NewStore() *Store {
	return &Store{ledgers: make(map[string]*Ledger)}
}

func (s *Store) Open(battleID string) *Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.ledgers[battleID]; ok {
		return l
	}
	l := NewLedger(battleID)
	s.ledgers[battleID] = l
	return l
}
