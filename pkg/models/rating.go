package models

import "math"

// RatingCategory is one of the four TrueSkill-FFA tracks.
type RatingCategory string

const (
	CategoryPrediction RatingCategory = "prediction"
	CategoryCombat RatingCategory = "combat"
	CategorySurvival RatingCategory = "survival"
	CategoryComposite RatingCategory = "composite"
)

// TrueSkill default parameters.
const (
	DefaultMu = 25.0
	DefaultSigma = 8.333
	Beta = 4.167
	Tau = 0.0833
)

// Gaussian is a single (mu, sigma) belief.
type Gaussian struct {
	Mu float64
	Sigma float64
}

// Display is the conservative leaderboard rating, mu - 3*sigma.
func (g Gaussian) Display() float64 {
	return g.Mu - 3*g.Sigma
}

// AgentRating holds all four per-agent category ratings plus a battle
// counter, as persisted in AgentRatings.
type AgentRating struct {
	AgentID string
	Prediction Gaussian
	Combat Gaussian
	Survival Gaussian
	Composite Gaussian
	Battles int
	Wins int
}

// WinRate is Wins/Battles, imputed 0.5 for a never-battled agent, the
// value the betting odds formula reads for an agent's prior form.
func (r AgentRating) WinRate() float64 {
	if r.Battles == 0 {
		return 0.5
	}
	return float64(r.Wins) / float64(r.Battles)
}

// NewAgentRating seeds every category at the TrueSkill prior.
func NewAgentRating(agentID string) AgentRating {
	prior := Gaussian{Mu: DefaultMu, Sigma: DefaultSigma}
	return AgentRating{
		AgentID: agentID,
		Prediction: prior,
		Combat: prior,
		Survival: prior,
		Composite: prior,
	}
}

// RecomputeComposite applies the fixed composite-rating weighting:
// mu = 0.3*pred + 0.3*combat + 0.4*survival
// sigma^2 = 0.3^2*sigma_pred^2 + 0.3^2*sigma_combat^2 + 0.4^2*sigma_survival^2
func (r *AgentRating) RecomputeComposite() {
	mu := 0.3*r.Prediction.Mu + 0.3*r.Combat.Mu + 0.4*r.Survival.Mu
	variance := 0.3*0.3*r.Prediction.Sigma*r.Prediction.Sigma +
	0.3*0.3*r.Combat.Sigma*r.Combat.Sigma +
	0.4*0.4*r.Survival.Sigma*r.Survival.Sigma
	r.Composite = Gaussian{Mu: mu, Sigma: math.Sqrt(variance)}
}

// RatingHistoryEntry is one row of AgentRatingHistory: the per-battle delta
// used by the bootstrap confidence interval resampler.
type RatingHistoryEntry struct {
	AgentID string
	BattleID string
	Category RatingCategory
	DeltaMu float64
}
