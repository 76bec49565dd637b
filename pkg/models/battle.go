package models

import "time"

// Status is the battle lifecycle state. It only advances
// forward through this sequence except CANCELLED, which is reachable from
// any pre-ACTIVE state.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusLobby Status = "LOBBY"
	StatusCountdown Status = "COUNTDOWN"
	StatusBettingOpen Status = "BETTING_OPEN"
	StatusActive Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusSettled Status = "SETTLED"
)

// statusOrder is the forward sequence Status must advance through. CANCELLED
// is handled separately since it can interrupt any pre-ACTIVE state.
var statusOrder = []Status{
	StatusPending, StatusLobby, StatusCountdown, StatusBettingOpen,
	StatusActive, StatusCompleted, StatusSettled,
}

func statusIndex(s Status) int {
	for i, v := range statusOrder {
		if v == s {
			return i
		}
	}
	return -1
}

// CanTransition reports whether the battle may move from 'from' to 'to'.
func CanTransition(from, to Status) bool {
	if to == StatusCancelled {
		return from == StatusPending || from == StatusLobby ||
		from == StatusCountdown || from == StatusBettingOpen
	}
	fi, ti := statusIndex(from), statusIndex(to)
	if fi < 0 || ti < 0 {
		return false
	}
	return ti == fi+1
}

// BettingPhase tracks whether new bets are accepted.
type BettingPhase string

const (
	BettingOpen BettingPhase = "OPEN"
	BettingLocked BettingPhase = "LOCKED"
	BettingSettled BettingPhase = "SETTLED"
)

// Battle is the top-level aggregate the Coordinator owns exclusively while a
// fight is in progress.
type Battle struct {
	ID string
	Status Status
	BettingPhase BettingPhase

	Epoch int
	MaxEpochs int

	Roster []*Agent

	WinnerID string

	StartedAt *time.Time
	EndedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Alive returns the roster members still in the fight.
func (b *Battle) Alive() []*Agent {
	out := make([]*Agent, 0, len(b.Roster))
	for _, a := range b.Roster {
		if a.Alive {
			out = append(out, a)
		}
	}
	return out
}

// AgentByID finds a roster member, or nil.
func (b *Battle) AgentByID(id string) *Agent {
	for _, a := range b.Roster {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// AgentByName finds a roster member by display name, case-sensitive exact
// match only; fuzzy matching is the Secretary's job, not the model's.
func (b *Battle) AgentByName(name string) *Agent {
	for _, a := range b.Roster {
		if a.Name == name {
			return a
		}
	}
	return nil
}
