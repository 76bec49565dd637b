package rating

import (
	"math/rand"
	"sort"

	"github.com/rawblock/gladiator-arena/pkg/models"
)

// BootstrapCI computes a 90% bootstrap confidence interval on the mean
// per-battle mu delta for one agent/category, resampling with replacement
//. Requires at least three recorded battles; ok is false
// otherwise.
func BootstrapCI(store *Store, agentID string, category models.RatingCategory, resamples int, seed int64) (lower, upper float64, ok bool) {
	entries := store.History(agentID, category)
	if len(entries) < 3 {
		return 0, 0, false
	}
	if resamples <= 0 {
		resamples = 1000
	}

	deltas := make([]float64, len(entries))
	for i, e := range entries {
		deltas[i] = e.DeltaMu
	}

	rng := rand.New(rand.NewSource(seed))
	means := make([]float64, resamples)
	for i := 0; i < resamples; i++ {
		sum := 0.0
		for j := 0; j < len(deltas); j++ {
			sum += deltas[rng.Intn(len(deltas))]
		}
		means[i] = sum / float64(len(deltas))
	}
	sort.Float64s(means)

	loIdx := int(0.05 * float64(resamples))
	hiIdx := int(0.95 * float64(resamples))
	if hiIdx >= resamples {
		hiIdx = resamples - 1
	}
	return means[loIdx], means[hiIdx], true
}
