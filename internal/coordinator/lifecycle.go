package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/rawblock/gladiator-arena/internal/grid"
	"github.com/rawblock/gladiator-arena/internal/market"
	"github.com/rawblock/gladiator-arena/internal/resolution"
	"github.com/rawblock/gladiator-arena/internal/strategy"
	"github.com/rawblock/gladiator-arena/pkg/models"
)

// RosterEntry is one seat the caller fills when starting a battle.
type RosterEntry struct {
	Name string
	Class models.Class
	Personality string
}

// StartOptions configures CreateBattle. TickInterval 0 means "advance a
// tick immediately when the previous one resolves", the mode tests and
// the CLI runner reserve; any positive value is the wall-clock period
// between epochs.
type StartOptions struct {
	MaxEpochs int
	TickInterval time.Duration
	MarketSeed int64
	Oracle market.Oracle
}

// CreateBattle allocates a new BattleRuntime in PENDING, places the roster
// on the grid, and advances it through LOBBY/COUNTDOWN up to BETTING_OPEN
// as one synchronous setup walk, gated at each step by
// models.CanTransition rather than a flat unchecked sequence; ActivateBattle
// takes it on to ACTIVE.
func (c *Coordinator) CreateBattle(id string, roster []RosterEntry, opts StartOptions) (*BattleRuntime, error) {
	if opts.MaxEpochs <= 0 {
		opts.MaxEpochs = 100
	}
	if opts.Oracle == nil {
		opts.Oracle = market.NewSimulatedOracle(opts.MarketSeed, models.PriceSet{BTC: 60000, ETH: 3000, SOL: 150, MON: 1})
	}

	now := time.Now()
	battle := &models.Battle{
		ID: id,
		Status: models.StatusPending,
		BettingPhase: models.BettingLocked,
		MaxEpochs: opts.MaxEpochs,
		CreatedAt: now,
		UpdatedAt: now,
	}

	carriedJackpot, err := c.Persist.JackpotCarry(context.Background())
	if err != nil {
		carriedJackpot = 0
	}

	g := grid.New()
	strategies := make(map[string]strategy.Strategy, len(roster))
	for _, re := range roster {
		a := models.NewAgent(uuidLike(id, re.Name), re.Name, re.Class, re.Personality)
		battle.Roster = append(battle.Roster, a)
	}

	if err := advance(battle, models.StatusLobby); err != nil {
		return nil, err
	}
	placeRoster(g, battle.Roster)
	if err := advance(battle, models.StatusCountdown); err != nil {
		return nil, err
	}
	if err := advance(battle, models.StatusBettingOpen); err != nil {
		return nil, err
	}
	battle.BettingPhase = models.BettingOpen

	rt := &BattleRuntime{
		Battle: battle,
		Grid: g,
		Pipeline: resolution.New(g, opts.MarketSeed),
		Oracle: opts.Oracle,
		Strategies: strategies,
		Bets: c.BetStore.Open(id, carriedJackpot),
		Sponsors: c.SponsorStore.Open(id),
		Hub: c.EventStore.Open(id),
		tickInterval: opts.TickInterval,
		decisionTimeout: DecisionTimeout,
		stop: make(chan struct{}),
	}
	for _, a := range battle.Roster {
		rt.Strategies[a.ID] = strategy.NewForClass(a.Class, c.llm)
	}

	c.mu.Lock()
	c.battles[id] = rt
	c.mu.Unlock()

	return rt, nil
}

// ActivateBattle locks betting and moves the battle into ACTIVE, the point
// at which the tick loop is allowed to run. Separated from
// CreateBattle so control.go can hold the betting window open for callers
// that want to accept wagers before the clock starts.
func (c *Coordinator) ActivateBattle(battleID string) error {
	rt, ok := c.get(battleID)
	if !ok {
		return ErrUnknownBattle
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if err := advance(rt.Battle, models.StatusActive); err != nil {
		return err
	}
	rt.Battle.BettingPhase = models.BettingLocked
	started := time.Now()
	rt.Battle.StartedAt = &started
	return nil
}

// advance checks the transition against models.CanTransition before
// applying it, wrapping a failure in ErrInvalidTransition.
func advance(b *models.Battle, to models.Status) error {
	if !models.CanTransition(b.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, to)
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	return nil
}

// placeRoster seats every agent, in roster order, on the next unoccupied
// tile of ringOrderedCoords, a deterministic LOBBY placement. Seating starts
// at the board's edge (q = -Radius), not at the centre.
func placeRoster(g *grid.Grid, roster []*models.Agent) {
	coords := ringOrderedCoords()
	i := 0
	for _, a := range roster {
		for i < len(coords) {
			c := coords[i]
			i++
			if t := g.Tile(c); t != nil && t.Occupant == "" {
				g.Occupy(c, a.ID)
				cc := c
				a.Position = &cc
				break
			}
		}
	}
}

// ringOrderedCoords lists every arena coordinate in grid.New()'s own
// construction order, giving placeRoster a stable seating order.
func ringOrderedCoords() []models.HexCoord {
	var out []models.HexCoord
	for q := -grid.Radius; q <= grid.Radius; q++ {
		for r := -grid.Radius; r <= grid.Radius; r++ {
			c := models.HexCoord{Q: q, R: r}
			if models.InRadius(c, grid.Radius) {
				out = append(out, c)
			}
		}
	}
	return out
}

// uuidLike derives a stable per-roster-seat agent ID without importing
// google/uuid here; Coordinator-issued IDs need only be unique within one
// battle, which name+battle already guarantees.
func uuidLike(battleID, name string) string {
	return battleID + ":" + name
}
