// Package coordinator implements the Battle Coordinator: the
// lifecycle state machine, epoch clock, per-agent decision fan-out, and the
// single owner of all mutable battle state. A ticker-plus-context select
// loop driving a fixed per-tick pipeline, holding its collaborators
// (oracle, strategies, Secretary, Resolution Pipeline, event hub) as plain
// struct fields rather than through a DI container.
package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/rawblock/gladiator-arena/internal/betting"
	"github.com/rawblock/gladiator-arena/internal/events"
	"github.com/rawblock/gladiator-arena/internal/grid"
	"github.com/rawblock/gladiator-arena/internal/llmclient"
	"github.com/rawblock/gladiator-arena/internal/market"
	"github.com/rawblock/gladiator-arena/internal/memory"
	"github.com/rawblock/gladiator-arena/internal/rating"
	"github.com/rawblock/gladiator-arena/internal/resolution"
	"github.com/rawblock/gladiator-arena/internal/secretary"
	"github.com/rawblock/gladiator-arena/internal/sponsorship"
	"github.com/rawblock/gladiator-arena/internal/strategy"
	"github.com/rawblock/gladiator-arena/pkg/models"
)

// ProductionTickInterval is the wall-clock period between epochs outside
// test/CLI mode. A Coordinator constructed with tickInterval 0 instead
// ticks immediately on completion of the previous epoch, the mode reserved
// for tests and the CLI runner.
const ProductionTickInterval = 300 * time.Second

// DecisionTimeout bounds a single strategy.Decide call; exceeding it is
// treated as ErrDecisionFailed.
const DecisionTimeout = 8 * time.Second

// StorageRetryBudget is how many consecutive persistence failures a battle
// tolerates before it is cancelled.
const StorageRetryBudget = 3

// Persister is the narrow write-side contract internal/db satisfies; the
// Coordinator never imports internal/db directly, only this interface,
// generalised to let the Coordinator also run in tests against no storage
// at all.
type Persister interface {
	SaveEpoch(battleID string, rec models.EpochRecord) error

	// JackpotCarry and SaveJackpotCarry read and update the single
	// cross-battle jackpot pool (RolledToJackpot), so an
	// unbacked winner's pool survives a process restart.
	JackpotCarry(ctx context.Context) (float64, error)
	SaveJackpotCarry(ctx context.Context, amount float64) error
}

// NoopPersister discards every write; the default for tests and the
// immediate-tick CLI mode.
type NoopPersister struct{}

func (NoopPersister) SaveEpoch(string, models.EpochRecord) error { return nil }
func (NoopPersister) JackpotCarry(context.Context) (float64, error) { return 0, nil }
func (NoopPersister) SaveJackpotCarry(context.Context, float64) error { return nil }

// BattleRuntime bundles one in-progress battle with every collaborator its
// tick loop needs. The Coordinator is the exclusive owner of everything
// reachable from here ("Ownership").
type BattleRuntime struct {
	mu sync.Mutex

	Battle *models.Battle
	Grid *grid.Grid
	Pipeline *resolution.Pipeline
	Oracle market.Oracle

	Strategies map[string]strategy.Strategy

	Bets *betting.Book
	Sponsors *sponsorship.Ledger
	Hub *events.Hub

	tickInterval time.Duration
	decisionTimeout time.Duration
	storageFailures int

	lastMarket models.MarketSnapshot
	lastOdds map[string]float64
	Records []models.EpochRecord
	stop chan struct{}
}

// Coordinator owns every active battle plus the collaborators shared
// across battles (memory and rating are per-agent and outlive any single
// fight).
type Coordinator struct {
	mu sync.Mutex
	battles map[string]*BattleRuntime
	llm llmclient.Client
	Secretary *secretary.Secretary
	Memory *memory.Store
	Ratings *rating.Store
	BetStore *betting.Store
	SponsorStore *sponsorship.Store
	EventStore *events.Store
	Persist Persister
}

// New constructs a Coordinator with fresh shared collaborators. llm is
// threaded into every strategy and into the Secretary's layer-2 repair.
func New(llm llmclient.Client, persist Persister) *Coordinator {
	if persist == nil {
		persist = NoopPersister{}
	}
	return &Coordinator{
		battles: make(map[string]*BattleRuntime),
		llm: llm,
		Secretary: secretary.New(llm, false, true),
		Memory: memory.NewStore(),
		Ratings: rating.NewStore(),
		BetStore: betting.NewStore(),
		SponsorStore: sponsorship.NewStore(),
		EventStore: events.NewStore(),
		Persist: persist,
	}
}

func (c *Coordinator) get(battleID string) (*BattleRuntime, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rt, ok := c.battles[battleID]
	return rt, ok
}
