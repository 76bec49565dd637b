package rating

import (
	"sort"

	"github.com/rawblock/gladiator-arena/pkg/models"
)

// AgentOutcome is one roster member's raw per-battle performance, from which
// the three placement orders of are derived.
type AgentOutcome struct {
	AgentID string
	SurvivalRank int // 1 = winner; lower is better
	PredictionAttempts int
	PredictionsCorrect int
	Kills int
	DamageDealt int
	DamageTaken int
}

func (o AgentOutcome) predictionRatio() float64 {
	if o.PredictionAttempts == 0 {
		return 0
	}
	return float64(o.PredictionsCorrect) / float64(o.PredictionAttempts)
}

func (o AgentOutcome) combatScore() float64 {
	return float64(o.Kills)*100 + float64(o.DamageDealt) - 0.5*float64(o.DamageTaken)
}

// ApplyBattleResult runs the three category placement-order updates plus the
// composite recomputation for every agent in outcomes, persisting the result
// and a history.RatingHistoryEntry per category to store.
func ApplyBattleResult(store *Store, battleID string, outcomes []AgentOutcome) []models.AgentRating {
	if len(outcomes) == 0 {
		return nil
	}

	ids := make([]string, len(outcomes))
	current := make(map[string]models.AgentRating, len(outcomes))
	for i, o := range outcomes {
		ids[i] = o.AgentID
		current[o.AgentID] = store.Get(o.AgentID)
	}

	survivalOrder := rankIndexes(outcomes, func(a, b AgentOutcome) bool { return a.SurvivalRank < b.SurvivalRank })
	predictionOrder := rankIndexes(outcomes, func(a, b AgentOutcome) bool { return a.predictionRatio() > b.predictionRatio() })
	combatOrder := rankIndexes(outcomes, func(a, b AgentOutcome) bool { return a.combatScore() > b.combatScore() })

	survival := updateFFA(extract(current, ids, func(r models.AgentRating) models.Gaussian { return r.Survival }), survivalOrder)
	prediction := updateFFA(extract(current, ids, func(r models.AgentRating) models.Gaussian { return r.Prediction }), predictionOrder)
	combat := updateFFA(extract(current, ids, func(r models.AgentRating) models.Gaussian { return r.Combat }), combatOrder)

	results := make([]models.AgentRating, len(ids))
	for i, id := range ids {
		r := current[id]
		before := r
		r.Survival = toModel(survival[i])
		r.Prediction = toModel(prediction[i])
		r.Combat = toModel(combat[i])
		r.RecomputeComposite()
		r.Battles++
		if outcomes[i].SurvivalRank == 1 {
			r.Wins++
		}
		store.put(r)
		store.mu.Lock()
		store.history = append(store.history,
			models.RatingHistoryEntry{AgentID: id, BattleID: battleID, Category: models.CategorySurvival, DeltaMu: r.Survival.Mu - before.Survival.Mu},
			models.RatingHistoryEntry{AgentID: id, BattleID: battleID, Category: models.CategoryPrediction, DeltaMu: r.Prediction.Mu - before.Prediction.Mu},
			models.RatingHistoryEntry{AgentID: id, BattleID: battleID, Category: models.CategoryCombat, DeltaMu: r.Combat.Mu - before.Combat.Mu},
		)
		store.mu.Unlock()
		results[i] = r
	}
	return results
}

// rankIndexes returns the indexes into outcomes sorted best-to-worst by
// less(a,b) (true means a outranks b), stable so ties keep outcome order.
func rankIndexes(outcomes []AgentOutcome, less func(a, b AgentOutcome) bool) []int {
	idx := make([]int, len(outcomes))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return less(outcomes[idx[i]], outcomes[idx[j]]) })
	return idx
}

func extract(current map[string]models.AgentRating, ids []string, pick func(models.AgentRating) models.Gaussian) []Gaussian {
	out := make([]Gaussian, len(ids))
	for i, id := range ids {
		g := pick(current[id])
		out[i] = Gaussian{Mu: g.Mu, Sigma: g.Sigma}
	}
	return out
}

func toModel(g Gaussian) models.Gaussian {
	return models.Gaussian{Mu: g.Mu, Sigma: g.Sigma}
}
