package coordinator

import "errors"

// Sentinel error kinds the Coordinator's tick loop can raise, exported so
// callers can errors.Is against them rather than matching ad-hoc strings.
var (
	// ErrOracleUnavailable: market fetch failed. Never fatal — the tick
	// proceeds with a zero-change snapshot.
	ErrOracleUnavailable = errors.New("coordinator: market oracle unavailable")

	// ErrDecisionFailed: a strategy call errored or exceeded its per-call
	// timeout. Never fatal — substituted with the phase-aware fallback
	// decision.
	ErrDecisionFailed = errors.New("coordinator: agent decision failed")

	// ErrInvalidPhase: an action was attempted outside the battle phase
	// that permits it (e.g. a bet placed once betting has locked).
	ErrInvalidPhase = errors.New("coordinator: action not permitted in current phase")

	// ErrDuplicateSettlement: a settlement was requested for a battle
	// already settled. Settlement itself is idempotent (internal/betting);
	// this error flags a caller that didn't check state first.
	ErrDuplicateSettlement = errors.New("coordinator: battle already settled")

	// ErrStorageError: a persistence write failed. The write is not
	// retried; StorageRetryBudget consecutive failures cancel the battle,
	// one of only two ways a battle can end in a non-winning state.
	ErrStorageError = errors.New("coordinator: persistence write failed")

	// ErrSubscriberSendFailed: delivery to one event subscriber failed.
	// Never fatal to the battle — internal/events drops the subscriber.
	ErrSubscriberSendFailed = errors.New("coordinator: subscriber delivery failed")

	// ErrBattleHung: an epoch failed to complete within its deadline even
	// after decision/oracle fallbacks, suggesting a deadlock rather than a
	// transient failure.
	ErrBattleHung = errors.New("coordinator: battle exceeded its epoch deadline")

	// ErrUnknownBattle is returned by the control surface for an
	// unrecognised battle ID.
	ErrUnknownBattle = errors.New("coordinator: unknown battle")

	// ErrInvalidTransition guards models.CanTransition at the control
	// surface boundary.
	ErrInvalidTransition = errors.New("coordinator: invalid battle status transition")
)
