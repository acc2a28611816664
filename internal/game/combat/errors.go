package combat

import "errors"

// Sentinel errors for the operation surface. Callers relay the wrapped
// detail text to the issuing actor; phase and target checks are expected
// conditions, not panics.
var (
	// ErrWrongPhase marks an operation invoked in the wrong phase.
	ErrWrongPhase = errors.New("wrong combat phase")
	// ErrNotInCombat marks an actor that is not a combatant here.
	ErrNotInCombat = errors.New("not in this fight")
	// ErrNotYourTurn marks a turn-scoped operation by a non-active actor.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrInvalidTarget marks a target that is absent, unattackable, or
	// otherwise ineligible for the operation.
	ErrInvalidTarget = errors.New("invalid target")
	// ErrSessionOver marks operations against a session that is tearing
	// down.
	ErrSessionOver = errors.New("combat is over")
)
