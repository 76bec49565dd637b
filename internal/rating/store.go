package rating

import (
	"sort"
	"sync"

	"github.com/rawblock/gladiator-arena/pkg/models"
)

// Store is a concurrent-safe in-process rating book: a sync.RWMutex
// guarding a plain map, exposed through narrow getter/setter methods.
// cmd/arena seeds it from internal/db once at process start (Seed); nothing
// writes ratings back to internal/db after ApplyBattleResult, and Store
// itself never touches disk.
type Store struct {
	mu sync.RWMutex
	ratings map[string]models.AgentRating
	history []models.RatingHistoryEntry
}

func NewStore() *Store {
	return &Store{ratings: make(map[string]models.AgentRating)}
}

// Get returns the agent's rating, seeding the TrueSkill prior on first sight.
func (s *Store) Get(agentID string) models.AgentRating {
	s.mu.RLock()
	r, ok := s.ratings[agentID]
	s.mu.RUnlock()
	if ok {
		return r
	}
	return models.NewAgentRating(agentID)
}

func (s *Store) put(r models.AgentRating) {
	s.mu.Lock()
	s.ratings[r.AgentID] = r
	s.mu.Unlock()
}

// Seed loads a rating read back from persistence into the in-process book,
// used at process start before any battle touches the agent.
func (s *Store) Seed(r models.AgentRating) {
	s.put(r)
}

// History returns every recorded per-battle delta for one agent/category,
// oldest first.
func (s *Store) History(agentID string, category models.RatingCategory) []models.RatingHistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.RatingHistoryEntry
	for _, h := range s.history {
		if h.AgentID == agentID && h.Category == category {
			out = append(out, h)
		}
	}
	return out
}

// Leaderboard returns every tracked agent's composite display rating
// (mu - 3*sigma), highest first.
func (s *Store) Leaderboard() []models.AgentRating {
	s.mu.RLock()
	out := make([]models.AgentRating, 0, len(s.ratings))
	for _, r := range s.ratings {
		out = append(out, r)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].Composite.Display() > out[j].Composite.Display()
	})
	return out
}
