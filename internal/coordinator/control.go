package coordinator

import (
	"context"

	"github.com/rawblock/gladiator-arena/internal/events"
	"github.com/rawblock/gladiator-arena/pkg/models"
)

// BattleView is the read-only snapshot handed back by GetState, a copy so
// callers can never mutate Coordinator-owned state.
type BattleView struct {
	Battle models.Battle
	Roster []models.Agent
	Odds map[string]float64
}

// StartBattle assembles a new runtime and returns it at BETTING_OPEN; it
// does not start the tick loop. Callers accept wagers, then ActivateAndRun
// locks betting and runs the loop.
func (c *Coordinator) StartBattle(ctx context.Context, id string, roster []RosterEntry, opts StartOptions) (*BattleRuntime, error) {
	rt, err := c.CreateBattle(id, roster, opts)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

// ActivateAndRun locks betting, flips the battle ACTIVE, and runs its tick
// loop to completion (or until ctx is cancelled). Call this once spectators
// have had their chance to bet.
func (c *Coordinator) ActivateAndRun(ctx context.Context, battleID string) error {
	if err := c.ActivateBattle(battleID); err != nil {
		return err
	}
	rt, ok := c.get(battleID)
	if !ok {
		return ErrUnknownBattle
	}
	c.Run(ctx, rt)
	return nil
}

// GetState returns a defensive copy of one battle's current state.
func (c *Coordinator) GetState(battleID string) (BattleView, error) {
	rt, ok := c.get(battleID)
	if !ok {
		return BattleView{}, ErrUnknownBattle
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()

	roster := make([]models.Agent, len(rt.Battle.Roster))
	for i, a := range rt.Battle.Roster {
		roster[i] = *a
	}

	return BattleView{Battle: *rt.Battle, Roster: roster, Odds: rt.lastOdds}, nil
}

// PlaceBet forwards to the battle's Book, translated into ErrUnknownBattle
// for an unrecognised battle ID and ErrInvalidPhase (via the Book) for any
// bet outside BettingOpen.
func (c *Coordinator) PlaceBet(battleID, bettor, agentID string, amount float64) (models.Bet, error) {
	rt, ok := c.get(battleID)
	if !ok {
		return models.Bet{}, ErrUnknownBattle
	}
	rt.mu.Lock()
	phase := rt.Battle.BettingPhase
	rt.mu.Unlock()
	return rt.Bets.PlaceBet(bettor, agentID, amount, phase)
}

// Sponsor forwards a sponsorship pledge to the battle's Ledger. Acceptance
// of the honoured-tier effect happens lazily at the next tick via
// sponsorship.Ledger.Honoured, not here.
func (c *Coordinator) Sponsor(battleID, sponsor, beneficiaryAgentID string, amount float64, tier models.SponsorTier) (models.Sponsorship, error) {
	rt, ok := c.get(battleID)
	if !ok {
		return models.Sponsorship{}, ErrUnknownBattle
	}
	rt.mu.Lock()
	epoch := rt.Battle.Epoch + 1
	rt.mu.Unlock()
	return rt.Sponsors.Record(sponsor, beneficiaryAgentID, amount, tier, epoch), nil
}

// Leaderboard exposes the shared rating store's composite ranking.
func (c *Coordinator) Leaderboard() []models.AgentRating {
	return c.Ratings.Leaderboard()
}

// Subscribe opens a spectator event stream for a battle.
func (c *Coordinator) Subscribe(battleID string, buffer int) (*events.Subscriber, error) {
	rt, ok := c.get(battleID)
	if !ok {
		return nil, ErrUnknownBattle
	}
	return rt.Hub.Subscribe(buffer), nil
}
