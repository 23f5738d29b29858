// Package flow provides cold, backpressure-aware, push-based
// streams. A Publisher pushes elements to a Subscriber only against
// the demand the subscriber has signaled through its Subscription, and
// finishes with at most one terminal signal: an error or completion.
//
// Flowables are cold: nothing happens until Subscribe is called, and
// every subscription runs the source again with fresh state, so a
// flowable can be subscribed to (and replayed) any number of times.
//
// Errors that cannot be delivered to a subscriber, because it has
// already received its terminal signal or has canceled, are passed
// to the process-wide handler configured with SetErrorHandler.
package flow

import (
	"math"

	"github.com/tychoish/flow/ers"
)

// Unbounded is the demand a subscriber requests when it accepts every
// element a publisher can produce. Publishers stop counting demand
// once it reaches Unbounded.
const Unbounded int64 = math.MaxInt64

// Subscription is the handle a Publisher gives its Subscriber in
// OnSubscribe. Request and Cancel are safe to call from any goroutine,
// including from within the subscriber's own signal handlers.
type Subscription interface {
	// Request adds n to the number of elements the subscriber is
	// ready to receive. Non-positive values are invalid and are
	// reported to the undeliverable error handler.
	Request(n int64)
	// Cancel asks the publisher to stop sending signals and release
	// resources. Cancel is idempotent, and never produces a
	// terminal signal.
	Cancel()
}

// Subscriber receives signals from a Publisher. The publisher calls
// OnSubscribe exactly once and first, then OnNext zero or more times,
// then at most one of OnError or OnComplete. Calls for one
// subscription never overlap.
type Subscriber[T any] interface {
	OnSubscribe(Subscription)
	OnNext(T)
	OnError(error)
	OnComplete()
}

// Publisher produces elements for subscribers.
type Publisher[T any] interface {
	Subscribe(Subscriber[T])
}

// Flowable is a cold Publisher implemented by a source function: each
// call to Subscribe runs the source function for that subscriber.
type Flowable[T any] struct {
	source func(Subscriber[T])
}

// MakeFlowable constructs a Flowable from a source function. The
// source must call OnSubscribe before any other method of the
// subscriber, and must honor the Subscriber contract.
func MakeFlowable[T any](source func(Subscriber[T])) *Flowable[T] {
	if source == nil {
		panic(ers.NewInvariantViolation("flowable source must not be nil"))
	}
	return &Flowable[T]{source: source}
}

// Subscribe runs the flowable's source for the subscriber. Passing a
// nil subscriber panics.
func (f *Flowable[T]) Subscribe(sub Subscriber[T]) {
	if sub == nil {
		panic(ers.NewInvariantViolation("subscriber must not be nil"))
	}
	f.source(sub)
}

// Publisher returns the flowable as a Publisher, for call sites that
// want to hold the interface.
func (f *Flowable[T]) Publisher() Publisher[T] { return f }

type emptySubscription struct{}

func (emptySubscription) Request(int64) {}
func (emptySubscription) Cancel()       {}

// EmptySubscription returns a subscription that does nothing. Sources
// that terminate immediately hand it to their subscriber before the
// terminal signal.
func EmptySubscription() Subscription { return emptySubscription{} }
