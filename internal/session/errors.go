package session

import "errors"

// Usage and resolution errors surfaced to the caller. None of these leave
// the session in a partially updated state.
var (
	// ErrNoPriorRun indicates a continuation attempted before any
	// successful fresh run.
	ErrNoPriorRun = errors.New("session: continuation requires a completed fresh run first")

	// ErrUnknownMode indicates an unrecognized simulation mode string.
	ErrUnknownMode = errors.New("session: unknown simulation mode")

	// ErrBadDuration indicates a non-positive simulation duration.
	ErrBadDuration = errors.New("session: duration must be positive")

	// ErrUnknownName indicates a name that is neither a registered
	// symbol nor a catalogued location.
	ErrUnknownName = errors.New("session: unknown variable or location")

	// ErrUnavailable indicates a value that only exists after the first
	// simulation has run.
	ErrUnavailable = errors.New("session: value available after first simulation")

	// ErrNotCaptured indicates a continuous variable absent from the
	// recorded output set.
	ErrNotCaptured = errors.New("session: variable not captured in simulation output")

	// ErrUndefined indicates a variable class no resolution rule covers.
	ErrUndefined = errors.New("session: value undefined for this variable")
)
