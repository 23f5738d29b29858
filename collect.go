package flow

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/tychoish/flow/ers"
)

// Factory produces a fresh accumulator. Collect calls the factory
// once per subscription, before subscribing upstream.
type Factory[A any] func() (A, error)

// Fold combines one element into the accumulator, mutating the
// accumulator in place. Accumulators are therefore typically
// pointers, maps, or other reference types.
type Fold[A, T any] func(A, T) error

func (f Factory[A]) call() (A, error) { return ers.WithRecoverDo[A](f) }

func (f Fold[A, T]) call(acc A, item T) (err error) {
	defer func() {
		if perr := ers.ParsePanic(recover()); perr != nil {
			err = perr
		}
	}()
	return f(acc, item)
}

// Collect returns a flowable that folds every element of src into a
// single accumulator and emits it, followed by completion, when src
// completes.
//
// Each subscription calls the factory for a new accumulator, so the
// returned flowable can be subscribed to repeatedly. Collect
// requests unbounded demand from src, and holds the accumulator until
// the downstream subscriber has requested at least one element.
//
// The downstream subscriber observes exactly one terminal outcome:
//
//   - If the factory fails, the subscriber gets the factory's error
//     and src is never subscribed.
//   - If the fold fails, src is canceled and the subscriber gets the
//     fold's error. No partial accumulator is emitted, and elements
//     that src delivers after the failure are dropped.
//   - If src fails first, the subscriber gets src's error.
//
// Any error that arrives after the outcome is decided (e.g. src
// failing after the fold already failed) is passed to
// ReportUndeliverable, and never to the subscriber. Panics in the
// factory or fold are recovered and handled as failures wrapping
// ErrRecoveredPanic.
func Collect[T, A any](src Publisher[T], factory Factory[A], fold Fold[A, T]) *Flowable[A] {
	switch {
	case src == nil:
		panic(ers.NewInvariantViolation("collect source must not be nil"))
	case factory == nil:
		panic(ers.NewInvariantViolation("collect factory must not be nil"))
	case fold == nil:
		panic(ers.NewInvariantViolation("collect fold must not be nil"))
	}

	return MakeFlowable(func(downstream Subscriber[A]) {
		acc, err := factory.call()
		if err != nil {
			// nothing was subscribed, so this error is the
			// only signal the subscriber can ever observe.
			downstream.OnSubscribe(EmptySubscription())
			downstream.OnError(err)
			return
		}

		stage := &collectStage[T, A]{fold: fold, acc: acc}
		stage.out.downstream = downstream
		src.Subscribe(stage)
	})
}

// CollectSlice collects every element of src into a slice.
func CollectSlice[T any](src Publisher[T]) *Flowable[*[]T] {
	return Collect(src,
		func() (*[]T, error) { out := []T{}; return &out, nil },
		func(acc *[]T, item T) error { *acc = append(*acc, item); return nil },
	)
}

// CollectString renders every element of src with fmt and joins them
// with the separator.
func CollectString[T any](src Publisher[T], sep string) *Flowable[*Joiner] {
	return Collect(src,
		func() (*Joiner, error) { return NewJoiner(sep), nil },
		func(j *Joiner, item T) error { return j.Add(item) },
	)
}

// Joiner is a string accumulator that renders values with fmt and
// writes the separator between them. The separator is written before
// every value except the first, even when earlier values rendered as
// empty strings.
type Joiner struct {
	sep     string
	started bool
	buf     strings.Builder
}

// NewJoiner returns an empty Joiner for the separator.
func NewJoiner(sep string) *Joiner { return &Joiner{sep: sep} }

// Add appends the rendered value, preceded by the separator unless it
// is the first value.
func (j *Joiner) Add(item any) error {
	if j.started {
		j.buf.WriteString(j.sep)
	}
	j.started = true
	_, err := fmt.Fprint(&j.buf, item)
	return err
}

// String returns the joined values.
func (j *Joiner) String() string { return j.buf.String() }

type stageState int32

const (
	stageOpen stageState = iota
	stageCompleted
	stageErrored
	stageCancelled
)

func (s stageState) String() string {
	switch s {
	case stageOpen:
		return "open"
	case stageCompleted:
		return "completed"
	case stageErrored:
		return "errored"
	case stageCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("stageState(%d)", int32(s))
	}
}

// collectStage is the per-subscription state of a Collect flowable:
// it subscribes upstream as a Subscriber[T] and is handed downstream
// as the Subscription.
type collectStage[T, A any] struct {
	fold     Fold[A, T]
	acc      A
	upstream Subscription
	state    atomic.Int32
	out      deferredScalar[A]
}

// finish moves the stage from open to a terminal state. Only the
// first caller succeeds; the terminal signal must only be sent after
// finish returns true.
func (c *collectStage[T, A]) finish(to stageState) bool {
	return c.state.CompareAndSwap(int32(stageOpen), int32(to))
}

func (c *collectStage[T, A]) current() stageState { return stageState(c.state.Load()) }

func (c *collectStage[T, A]) release() { var zero A; c.acc = zero }

func (c *collectStage[T, A]) OnSubscribe(up Subscription) {
	if c.upstream != nil {
		up.Cancel()
		ReportUndeliverable(ErrDuplicateSubscription)
		return
	}

	c.upstream = up
	c.out.downstream.OnSubscribe(c)

	if c.current() == stageOpen {
		up.Request(Unbounded)
	}
}

func (c *collectStage[T, A]) OnNext(item T) {
	if c.current() != stageOpen {
		return
	}

	if err := c.fold.call(c.acc, item); err != nil {
		if !c.finish(stageErrored) {
			ReportUndeliverable(err)
			return
		}

		c.upstream.Cancel()
		c.release()
		c.out.downstream.OnError(err)
	}
}

func (c *collectStage[T, A]) OnError(err error) {
	if !c.finish(stageErrored) {
		ReportUndeliverable(err)
		return
	}

	// a fold may still be running on another goroutine, so the
	// accumulator is not cleared here.
	c.out.downstream.OnError(err)
}

func (c *collectStage[T, A]) OnComplete() {
	if !c.finish(stageCompleted) {
		return
	}

	acc := c.acc
	c.release()
	c.out.complete(acc)
}

func (c *collectStage[T, A]) Request(n int64) {
	if validDemand(n) {
		c.out.request()
	}
}

func (c *collectStage[T, A]) Cancel() {
	c.out.cancel()
	if c.finish(stageCancelled) {
		c.upstream.Cancel()
	}
}
