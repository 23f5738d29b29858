package ers

import "errors"

// ErrRecoveredPanic is at the root of any error returned by a
// function in flow that recovers from a panic.
const ErrRecoveredPanic Error = Error("recovered panic")

// ErrInvariantViolation is the root error of the panics raised when a
// caller violates an API contract, e.g. passing nil functions to an
// operator.
const ErrInvariantViolation Error = Error("invariant violation")

// ErrInvalidInput indicates malformed input. These errors are not
// generally retriable.
const ErrInvalidInput Error = Error("invalid input")

// IsInvariantViolation returns true if the argument is or resolves to
// ErrInvariantViolation. The argument is typically the value returned
// by recover().
func IsInvariantViolation(r any) bool {
	err, ok := r.(error)
	if !ok || err == nil {
		return false
	}
	return errors.Is(err, ErrInvariantViolation)
}
