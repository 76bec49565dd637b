package coordinator

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/rawblock/gladiator-arena/internal/betting"
	"github.com/rawblock/gladiator-arena/internal/events"
	"github.com/rawblock/gladiator-arena/internal/grid"
	"github.com/rawblock/gladiator-arena/internal/rating"
	"github.com/rawblock/gladiator-arena/internal/resolution"
	"github.com/rawblock/gladiator-arena/internal/strategy"
	"github.com/rawblock/gladiator-arena/pkg/models"
)

// Run drives rt's epoch clock until the battle completes or ctx is
// cancelled: a ticker wrapped in a select against ctx.Done(), except here
// tickInterval 0 means "tick again immediately", the mode tests and the
// CLI runner use so a whole battle resolves without a wall-clock wait.
func (c *Coordinator) Run(ctx context.Context, rt *BattleRuntime) {
	if rt.tickInterval <= 0 {
		c.runImmediate(ctx, rt)
		return
	}

	ticker := time.NewTicker(rt.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-rt.stop:
			return
		case <-ticker.C:
			if done := c.doTick(ctx, rt); done {
				return
			}
		}
	}
}

// runImmediate advances epochs back-to-back with no wall-clock wait,
// stopping as soon as doTick reports the battle finished.
func (c *Coordinator) runImmediate(ctx context.Context, rt *BattleRuntime) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-rt.stop:
			return
		default:
		}
		if done := c.doTick(ctx, rt); done {
			return
		}
	}
}

// doTick runs exactly one epoch: fetch market data, fan out decisions,
// validate them, resolve the pipeline, publish events, refresh odds, and
// persist. Returns true once the battle has ended (COMPLETED). Every
// sub-step degrades to a documented fallback rather than aborting the
// epoch.
func (c *Coordinator) doTick(ctx context.Context, rt *BattleRuntime) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.Battle.Status != models.StatusActive {
		return rt.Battle.Status == models.StatusCompleted || rt.Battle.Status == models.StatusSettled
	}

	snapshot, err := rt.Oracle.Fetch(ctx, rt.Battle.Epoch+1)
	if err != nil {
		log.Printf("[coordinator] %v: %v; falling back to zero-change snapshot", ErrOracleUnavailable, err)
		snapshot = newZeroSnapshot(rt.lastMarket)
	}
	rt.lastMarket = snapshot

	decisions := c.collectDecisions(ctx, rt, snapshot)

	sponsors := rt.Sponsors.Honoured(rt.Battle.Epoch + 1)

	rec := rt.Pipeline.Resolve(resolution.Input{
		Battle: rt.Battle,
		Market: snapshot,
		Decisions: decisions,
		Sponsors: sponsors,
	})

	if err := c.Persist.SaveEpoch(rt.Battle.ID, rec); err != nil {
		rt.storageFailures++
		log.Printf("[coordinator] %v: %v (failure %d/%d)", ErrStorageError, err, rt.storageFailures, StorageRetryBudget)
		if rt.storageFailures >= StorageRetryBudget {
			rt.Battle.Status = models.StatusCancelled
			return true
		}
	} else {
		rt.storageFailures = 0
	}

	rt.Records = append(rt.Records, rec)

	for _, ev := range events.FromEpochRecord(rt.Battle, rec) {
		rt.Hub.Publish(ev)
	}

	c.recordMemory(rt, rec)
	c.publishOdds(rt)

	if rec.BattleComplete {
		c.finishBattle(rt, rec)
		return true
	}
	return false
}

// collectDecisions fans a strategy.Decide call out to every living agent in
// parallel, bounding each call with decisionTimeout and substituting the
// universal fallback decision on error or timeout. Secretary
// validation runs synchronously per decision once every call has returned,
// since layer-2 repair can itself call the LLM and must not race Decide.
func (c *Coordinator) collectDecisions(ctx context.Context, rt *BattleRuntime, snapshot models.MarketSnapshot) map[string]models.Decision {
	alive := rt.Battle.Alive()
	raw := make(map[string]models.Decision, len(alive))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, agent := range alive {
		agent := agent
		wg.Add(1)
		go func() {
			defer wg.Done()
			d := c.decideOne(ctx, rt, agent, snapshot)
			mu.Lock()
			raw[agent.ID] = d
			mu.Unlock()
		}()
	}
	wg.Wait()

	phase := grid.Phase(rt.Battle.Epoch+1, rt.Battle.MaxEpochs)
	out := make(map[string]models.Decision, len(raw))
	for id, d := range raw {
		validated, issues := c.Secretary.Validate(ctx, rt.Battle, rt.Grid, phase, d)
		if len(issues) > 0 {
			log.Printf("[coordinator] battle=%s agent=%s secretary issues=%d", rt.Battle.ID, id, len(issues))
		}
		out[id] = validated
	}
	return out
}

// decideOne calls one agent's strategy under decisionTimeout, substituting
// the fallback decision and raising ErrDecisionFailed on error or timeout.
func (c *Coordinator) decideOne(ctx context.Context, rt *BattleRuntime, agent *models.Agent, snapshot models.MarketSnapshot) models.Decision {
	s, ok := rt.Strategies[agent.ID]
	if !ok {
		return models.NewDefaultDecision(agent.ID, models.AssetETH)
	}

	callCtx, cancel := context.WithTimeout(ctx, rt.decisionTimeout)
	defer cancel()

	req := c.buildRequest(rt, agent, snapshot)

	resultCh := make(chan models.Decision, 1)
	errCh := make(chan error, 1)
	go func() {
		d, err := s.Decide(callCtx, req)
		if err != nil {
			errCh <- err
			return
		}
		resultCh <- d
	}()

	select {
	case d := <-resultCh:
		return d
	case err := <-errCh:
		log.Printf("[coordinator] %v: agent=%s: %v", ErrDecisionFailed, agent.ID, err)
		return models.NewDefaultDecision(agent.ID, models.AssetETH)
	case <-callCtx.Done():
		log.Printf("[coordinator] %v: agent=%s: timed out after %s", ErrDecisionFailed, agent.ID, rt.decisionTimeout)
		return models.NewDefaultDecision(agent.ID, models.AssetETH)
	}
}

// buildRequest assembles one agent's DecisionRequest from live grid state
// and its most recent memory plan.
func (c *Coordinator) buildRequest(rt *BattleRuntime, agent *models.Agent, snapshot models.MarketSnapshot) strategy.DecisionRequest {
	others := make([]strategy.AgentSnapshot, 0, len(rt.Battle.Roster)-1)
	for _, other := range rt.Battle.Roster {
		if other.ID == agent.ID {
			continue
		}
		others = append(others, toSnapshot(other))
	}

	_, plan := c.Memory.Retrieve(agent.ID, []string{string(agent.Class)}, 5)
	lessons := make([]string, 0)
	if plan != nil {
		lessons = append(lessons, plan.Strategy)
	}

	return strategy.DecisionRequest{
		Self: toSnapshot(agent),
		Others: others,
		Market: snapshot,
		RecentLessons: lessons,
		SpatialContext: rt.Grid.SpatialContext(agent, rt.Battle.Roster, rt.Battle.Epoch+1, rt.Battle.MaxEpochs),
	}
}

func toSnapshot(a *models.Agent) strategy.AgentSnapshot {
	var allyID string
	if a.Ally != nil {
		allyID = a.Ally.ID
	}
	return strategy.AgentSnapshot{
		ID: a.ID,
		Name: a.Name,
		Class: a.Class,
		HP: a.HP,
		MaxHP: a.MaxHP,
		Alive: a.Alive,
		Position: a.Position,
		SkillCooldown: a.SkillCooldown,
		AllyID: allyID,
	}
}

// recordMemory turns this epoch's events into one Observation per agent
// touched by a combat or death event, the minimal trace the reflection
// threshold needs to eventually fire.
func (c *Coordinator) recordMemory(rt *BattleRuntime, rec models.EpochRecord) {
	for _, combat := range rec.Combats {
		c.Memory.RecordObservation(combat.AttackerID, rt.Battle.ID, rec.EpochNumber,
			"engaged "+combat.TargetID+" with outcome "+string(combat.Outcome), 5, []string{"combat"})
	}
	for _, death := range rec.Deaths {
		c.Memory.RecordObservation(death.AgentID, rt.Battle.ID, rec.EpochNumber,
			"died to "+string(death.Cause), 9, []string{"death"})
	}
}

// publishOdds recomputes live odds from the book's current pool, caching
// them on the runtime for GetState; does not add a dedicated
// odds event type, so spectators read odds via the control surface rather
// than the event stream.
func (c *Coordinator) publishOdds(rt *BattleRuntime) {
	inputs := make([]betting.AgentOddsInput, 0, len(rt.Battle.Alive()))
	for _, a := range rt.Battle.Alive() {
		wr := c.Ratings.Get(a.ID).WinRate()
		inputs = append(inputs, betting.AgentOddsInput{AgentID: a.ID, HP: a.HP, WinRate: wr})
	}
	rt.lastOdds = betting.ComputeOdds(inputs, rt.Bets.PoolByAgent(), rt.Bets.TotalPool())
}

// finishBattle marks the battle COMPLETED, scores ratings, settles the
// betting book, moves the battle to SETTLED and saves the jackpot carry; it
// publishes no events itself.
func (c *Coordinator) finishBattle(rt *BattleRuntime, rec models.EpochRecord) {
	rt.Battle.Status = models.StatusCompleted
	ended := time.Now()
	rt.Battle.EndedAt = &ended
	rt.Battle.BettingPhase = models.BettingSettled

	outcomes := buildOutcomes(rt.Battle, rt.Records)
	rating.ApplyBattleResult(c.Ratings, rt.Battle.ID, outcomes)

	result := rt.Bets.Settle(rt.Battle.WinnerID)
	rt.Battle.Status = models.StatusSettled

	if err := c.Persist.SaveJackpotCarry(context.Background(), result.NextJackpot); err != nil {
		rt.storageFailures++
	}
}

// buildOutcomes aggregates the per-agent totals internal/rating needs from
// the battle's sealed epoch history; Agent itself only tracks Kills, so
// prediction accuracy and damage flow are summed from the EpochRecords
// instead of carrying running counters on the model.
func buildOutcomes(b *models.Battle, records []models.EpochRecord) []rating.AgentOutcome {
	attempts := map[string]int{}
	correct := map[string]int{}
	dealt := map[string]int{}
	taken := map[string]int{}

	for _, rec := range records {
		for _, pr := range rec.Predictions {
			attempts[pr.AgentID]++
			if pr.Correct {
				correct[pr.AgentID]++
			}
		}
		for _, c := range rec.Combats {
			if c.Blocked || c.Damage <= 0 {
				continue
			}
			dealt[c.AttackerID] += c.Damage
			taken[c.TargetID] += c.Damage
		}
	}

	out := make([]rating.AgentOutcome, 0, len(b.Roster))
	for _, a := range b.Roster {
		rank := 2
		if a.ID == b.WinnerID {
			rank = 1
		} else if !a.Alive {
			rank = 3
		}
		out = append(out, rating.AgentOutcome{
			AgentID: a.ID,
			SurvivalRank: rank,
			PredictionAttempts: attempts[a.ID],
			PredictionsCorrect: correct[a.ID],
			Kills: a.Kills,
			DamageDealt: dealt[a.ID],
			DamageTaken: taken[a.ID],
		})
	}
	return out
}

// newZeroSnapshot builds the OracleUnavailable fallback: no price change
// from the last known snapshot.
func newZeroSnapshot(last models.MarketSnapshot) models.MarketSnapshot {
	return models.MarketSnapshot{Prices: last.Prices, Changes: models.PriceSet{}}
}
