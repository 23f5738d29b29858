// Package flowtest provides tools for testing publishers and
// operators: a recording TestSubscriber, misbehaving and probing
// publishers, and capture of undeliverable errors.
package flowtest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tychoish/flow"
	"github.com/tychoish/flow/adt"
)

// TestSubscriber records every signal it receives. It is safe for
// concurrent use, and tolerates publishers that violate the
// Subscriber contract: extra terminal signals and signals after a
// terminal signal are recorded so that assertions can detect them.
type TestSubscriber[T any] struct {
	initial int64

	mtx           sync.Mutex
	sub           flow.Subscription
	subscriptions int
	values        []T
	errs          []error
	completions   int
	afterTerminal int

	done chan struct{}
	once sync.Once
}

// NewTestSubscriber constructs a subscriber that requests
// initialDemand elements when subscribed. With zero initial demand
// nothing is requested until Request is called.
func NewTestSubscriber[T any](initialDemand int64) *TestSubscriber[T] {
	return &TestSubscriber[T]{initial: initialDemand, done: make(chan struct{})}
}

// Subscribe subscribes a new TestSubscriber with unbounded demand to
// the publisher and returns it.
func Subscribe[T any](pub flow.Publisher[T]) *TestSubscriber[T] {
	return SubscribeWithDemand(pub, flow.Unbounded)
}

// SubscribeWithDemand subscribes a new TestSubscriber with the given
// initial demand to the publisher and returns it.
func SubscribeWithDemand[T any](pub flow.Publisher[T], initialDemand int64) *TestSubscriber[T] {
	ts := NewTestSubscriber[T](initialDemand)
	pub.Subscribe(ts)
	return ts
}

func (ts *TestSubscriber[T]) OnSubscribe(sub flow.Subscription) {
	ts.mtx.Lock()
	ts.subscriptions++
	if ts.sub != nil {
		ts.mtx.Unlock()
		sub.Cancel()
		return
	}
	ts.sub = sub
	ts.mtx.Unlock()

	if ts.initial > 0 {
		sub.Request(ts.initial)
	}
}

func (ts *TestSubscriber[T]) OnNext(item T) {
	defer adt.With(adt.Lock(&ts.mtx))
	if ts.terminatedLocked() {
		ts.afterTerminal++
	}
	ts.values = append(ts.values, item)
}

func (ts *TestSubscriber[T]) OnError(err error) {
	ts.mtx.Lock()
	if ts.terminatedLocked() {
		ts.afterTerminal++
	}
	ts.errs = append(ts.errs, err)
	ts.mtx.Unlock()

	ts.once.Do(func() { close(ts.done) })
}

func (ts *TestSubscriber[T]) OnComplete() {
	ts.mtx.Lock()
	if ts.terminatedLocked() {
		ts.afterTerminal++
	}
	ts.completions++
	ts.mtx.Unlock()

	ts.once.Do(func() { close(ts.done) })
}

func (ts *TestSubscriber[T]) terminatedLocked() bool { return len(ts.errs)+ts.completions > 0 }

func (ts *TestSubscriber[T]) subscription() flow.Subscription {
	defer adt.With(adt.Lock(&ts.mtx))
	return ts.sub
}

// Request forwards demand to the subscription. Request is a noop
// before the subscriber has been subscribed.
func (ts *TestSubscriber[T]) Request(n int64) {
	if sub := ts.subscription(); sub != nil {
		sub.Request(n)
	}
}

// Cancel cancels the subscription, if any.
func (ts *TestSubscriber[T]) Cancel() {
	if sub := ts.subscription(); sub != nil {
		sub.Cancel()
	}
}

// Done returns a channel that is closed after the first terminal
// signal.
func (ts *TestSubscriber[T]) Done() <-chan struct{} { return ts.done }

// Await blocks until the subscriber receives a terminal signal or
// the context expires.
func (ts *TestSubscriber[T]) Await(ctx context.Context) error {
	select {
	case <-ts.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Values returns a copy of the elements received so far.
func (ts *TestSubscriber[T]) Values() []T {
	defer adt.With(adt.Lock(&ts.mtx))
	out := make([]T, len(ts.values))
	copy(out, ts.values)
	return out
}

// Errors returns a copy of the errors received so far.
func (ts *TestSubscriber[T]) Errors() []error {
	defer adt.With(adt.Lock(&ts.mtx))
	out := make([]error, len(ts.errs))
	copy(out, ts.errs)
	return out
}

// Completions returns the number of OnComplete calls received.
func (ts *TestSubscriber[T]) Completions() int {
	defer adt.With(adt.Lock(&ts.mtx))
	return ts.completions
}

// Subscriptions returns the number of OnSubscribe calls received.
func (ts *TestSubscriber[T]) Subscriptions() int {
	defer adt.With(adt.Lock(&ts.mtx))
	return ts.subscriptions
}

// Terminated returns true once a terminal signal was received.
func (ts *TestSubscriber[T]) Terminated() bool {
	defer adt.With(adt.Lock(&ts.mtx))
	return ts.terminatedLocked()
}

// AssertSubscribed fails the test unless OnSubscribe was called
// exactly once.
func (ts *TestSubscriber[T]) AssertSubscribed(t testing.TB) {
	t.Helper()
	if n := ts.Subscriptions(); n != 1 {
		t.Fatalf("expected exactly one subscription, got %d", n)
	}
}

// AssertNoValues fails the test if any element was received.
func (ts *TestSubscriber[T]) AssertNoValues(t testing.TB) {
	t.Helper()
	if vals := ts.Values(); len(vals) != 0 {
		t.Fatalf("expected no values, got %d: %v", len(vals), vals)
	}
}

// AssertValueCount fails the test unless exactly n elements were
// received.
func (ts *TestSubscriber[T]) AssertValueCount(t testing.TB, n int) {
	t.Helper()
	if vals := ts.Values(); len(vals) != n {
		t.Fatalf("expected %d values, got %d: %v", n, len(vals), vals)
	}
}

// AssertError fails the test unless exactly one error was received
// and it matches the target (with errors.Is).
func (ts *TestSubscriber[T]) AssertError(t testing.TB, target error) {
	t.Helper()
	errs := ts.Errors()
	switch {
	case len(errs) == 0:
		t.Fatalf("expected error <%v>, got none", target)
	case len(errs) > 1:
		t.Fatalf("expected one error, got %d: %v", len(errs), errs)
	case !errors.Is(errs[0], target):
		t.Fatalf("error <%v>, is not <%v>", errs[0], target)
	}
}

// AssertNoErrors fails the test if any error was received.
func (ts *TestSubscriber[T]) AssertNoErrors(t testing.TB) {
	t.Helper()
	if errs := ts.Errors(); len(errs) != 0 {
		t.Fatalf("expected no errors, got %d: %v", len(errs), errs)
	}
}

// AssertComplete fails the test unless OnComplete was received
// exactly once.
func (ts *TestSubscriber[T]) AssertComplete(t testing.TB) {
	t.Helper()
	if n := ts.Completions(); n != 1 {
		t.Fatalf("expected exactly one completion, got %d", n)
	}
}

// AssertNotComplete fails the test if OnComplete was received.
func (ts *TestSubscriber[T]) AssertNotComplete(t testing.TB) {
	t.Helper()
	if n := ts.Completions(); n != 0 {
		t.Fatalf("expected no completion, got %d", n)
	}
}

// AssertNotTerminated fails the test if any terminal signal was
// received.
func (ts *TestSubscriber[T]) AssertNotTerminated(t testing.TB) {
	t.Helper()
	if ts.Terminated() {
		t.Fatalf("expected no terminal signal, got %d errors and %d completions",
			len(ts.Errors()), ts.Completions())
	}
}

// AssertProtocol fails the test if the publisher sent any signal
// after its first terminal signal.
func (ts *TestSubscriber[T]) AssertProtocol(t testing.TB) {
	t.Helper()
	defer adt.With(adt.Lock(&ts.mtx))
	if ts.afterTerminal != 0 {
		t.Fatalf("received %d signals after the terminal signal", ts.afterTerminal)
	}
}

// AssertValues fails the test unless the subscriber received exactly
// the expected elements, in order.
func AssertValues[T comparable](t testing.TB, ts *TestSubscriber[T], expected ...T) {
	t.Helper()
	vals := ts.Values()
	if len(vals) != len(expected) {
		t.Fatalf("expected %d values %v, got %d: %v", len(expected), expected, len(vals), vals)
	}
	for idx := range vals {
		if vals[idx] != expected[idx] {
			t.Fatalf("value at index %d [%v vs %v] is not equal", idx, vals[idx], expected[idx])
		}
	}
}
