// Package market implements the price-oracle collaborator boundary (the
// external market-price oracle itself is out of scope, but a deterministic
// simulated implementation is required so test scenarios stay
// reproducible). A narrow RPC-call wrapper the Coordinator treats as an
// opaque collaborator, with HTTP concerns isolated to one file.
package market

import (
	"context"
	"math/rand"

	"github.com/rawblock/gladiator-arena/pkg/models"
)

// Oracle supplies one MarketSnapshot per epoch tick.
type Oracle interface {
	Fetch(ctx context.Context, epoch int) (models.MarketSnapshot, error)
}

// SimulatedOracle produces a deterministic bounded random walk over the four
// tradeable assets, seeded once per battle so replays (property
// #6) see identical price paths.
type SimulatedOracle struct {
	rng *rand.Rand
	prices models.PriceSet
	// maxStepPct bounds each epoch's percentage move per asset.
	maxStepPct float64
}

// NewSimulatedOracle seeds a walk starting from the given base prices.
func NewSimulatedOracle(seed int64, base models.PriceSet) *SimulatedOracle {
	return &SimulatedOracle{
		rng: rand.New(rand.NewSource(seed)),
		prices: base,
		maxStepPct: 0.05,
	}
}

func (o *SimulatedOracle) Fetch(ctx context.Context, epoch int) (models.MarketSnapshot, error) {
	select {
	case <-ctx.Done():
		return models.MarketSnapshot{}, ctx.Err()
	default:
	}

	before := o.prices
	o.prices.ETH = o.step(o.prices.ETH)
	o.prices.BTC = o.step(o.prices.BTC)
	o.prices.SOL = o.step(o.prices.SOL)
	o.prices.MON = o.step(o.prices.MON)

	changes := models.PriceSet{
		ETH: pctChange(before.ETH, o.prices.ETH),
		BTC: pctChange(before.BTC, o.prices.BTC),
		SOL: pctChange(before.SOL, o.prices.SOL),
		MON: pctChange(before.MON, o.prices.MON),
	}

	return models.MarketSnapshot{Prices: o.prices, Changes: changes, Timestamp: int64(epoch)}, nil
}

func (o *SimulatedOracle) step(price float64) float64 {
	if price <= 0 {
		return price
	}
	move := (o.rng.Float64()*2 - 1) * o.maxStepPct
	next := price * (1 + move)
	if next < 0 {
		next = 0
	}
	return next
}

func pctChange(before, after float64) float64 {
	if before == 0 {
		return 0
	}
	return (after - before) / before
}

// ZeroSnapshot is the fallback used on OracleUnavailable: every
// asset reports zero change, so predictions resolve flat for the epoch.
func ZeroSnapshot(epoch int, lastPrices models.PriceSet) models.MarketSnapshot {
	return models.MarketSnapshot{Prices: lastPrices, Changes: models.PriceSet{}, Timestamp: int64(epoch)}
}
