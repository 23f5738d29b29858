package flow

import (
	"fmt"

	"github.com/tychoish/flow/ers"
)

// ErrInvalidDemand is reported to the undeliverable error handler
// when a subscriber calls Request with a non-positive count.
const ErrInvalidDemand ers.Error = ers.Error("demand must be positive")

// ErrNoElements is returned by blocking reads of a publisher that
// completed without producing an element.
const ErrNoElements ers.Error = ers.Error("publisher completed without elements")

// ErrDuplicateSubscription is reported to the undeliverable error
// handler when a publisher calls OnSubscribe more than once on the
// same subscriber.
const ErrDuplicateSubscription ers.Error = ers.Error("subscription already set")

// ErrRecoveredPanic is at the root of errors produced by recovering a
// panic in a caller-supplied function.
const ErrRecoveredPanic ers.Error = ers.ErrRecoveredPanic

// validDemand returns true when n is a legal Request argument, and
// otherwise reports the violation as undeliverable.
func validDemand(n int64) bool {
	if n > 0 {
		return true
	}
	ReportUndeliverable(fmt.Errorf("request(%d): %w", n, ErrInvalidDemand))
	return false
}
