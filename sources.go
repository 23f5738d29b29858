package flow

import (
	"iter"
	"sync"
	"sync/atomic"

	"github.com/tychoish/flow/adt"
)

// Items returns a flowable that emits its arguments in order and then
// completes.
func Items[T any](in ...T) *Flowable[T] { return Slice(in) }

// Slice returns a flowable that emits the elements of the slice in
// order and then completes. The slice is not copied: modifying it
// while a subscription is active is a data race.
func Slice[T any](in []T) *Flowable[T] {
	return MakeFlowable(func(sub Subscriber[T]) {
		idx := 0
		subscribePull(sub, func() (out T, ok bool) {
			if idx >= len(in) {
				return out, false
			}
			out = in[idx]
			idx++
			return out, true
		}, nil)
	})
}

// FromSeq returns a flowable over a native go iterator. Every
// subscription iterates the sequence again; canceling a subscription
// stops the iterator.
func FromSeq[T any](seq iter.Seq[T]) *Flowable[T] {
	return MakeFlowable(func(sub Subscriber[T]) {
		next, stop := iter.Pull(seq)
		subscribePull(sub, next, stop)
	})
}

// Error returns a flowable that fails every subscriber with err.
func Error[T any](err error) *Flowable[T] {
	return MakeFlowable(func(sub Subscriber[T]) {
		sub.OnSubscribe(EmptySubscription())
		sub.OnError(err)
	})
}

// Empty returns a flowable that completes without emitting.
func Empty[T any]() *Flowable[T] {
	return MakeFlowable(func(sub Subscriber[T]) {
		sub.OnSubscribe(EmptySubscription())
		sub.OnComplete()
	})
}

// pullSubscription adapts a pull function to a Subscription: elements
// are pulled and pushed only against outstanding demand. Whichever
// goroutine raises demand from zero runs the drain loop; every other
// Request only adds to the counter. The subscription looks one
// element ahead so that completion is signaled as soon as the last
// element has been delivered, without waiting for more demand.
type pullSubscription[T any] struct {
	downstream Subscriber[T]
	requested  atomic.Int64
	done       atomic.Bool

	mtx       sync.Mutex
	next      func() (T, bool)
	stop      func()
	lookahead T
	buffered  bool
}

func subscribePull[T any](sub Subscriber[T], next func() (T, bool), stop func()) {
	sub.OnSubscribe(&pullSubscription[T]{downstream: sub, next: next, stop: stop})
}

func (ps *pullSubscription[T]) Request(n int64) {
	if !validDemand(n) {
		return
	}
	if addDemand(&ps.requested, n) == 0 {
		ps.drain(n)
	}
}

func (ps *pullSubscription[T]) Cancel() {
	if ps.done.CompareAndSwap(false, true) {
		ps.release()
	}
}

// release calls the stop function, serialized with fill.
func (ps *pullSubscription[T]) release() {
	defer adt.With(adt.Lock(&ps.mtx))
	var zero T
	ps.lookahead, ps.buffered = zero, false
	if ps.stop != nil {
		ps.stop()
		ps.stop = nil
	}
}

// fill pulls into the lookahead slot if it is empty, and reports
// whether an element is available.
func (ps *pullSubscription[T]) fill() bool {
	defer adt.With(adt.Lock(&ps.mtx))
	if !ps.buffered && !ps.done.Load() {
		ps.lookahead, ps.buffered = ps.next()
	}
	return ps.buffered
}

func (ps *pullSubscription[T]) take() (out T, ok bool) {
	if !ps.fill() {
		return out, false
	}

	defer adt.With(adt.Lock(&ps.mtx))
	var zero T
	out, ok = ps.lookahead, ps.buffered
	ps.lookahead, ps.buffered = zero, false
	return out, ok
}

func (ps *pullSubscription[T]) complete() {
	if ps.done.CompareAndSwap(false, true) {
		ps.release()
		ps.downstream.OnComplete()
	}
}

func (ps *pullSubscription[T]) drain(n int64) {
	var emitted int64
	for {
		for emitted != n {
			if ps.done.Load() {
				return
			}

			item, ok := ps.take()
			if !ok {
				ps.complete()
				return
			}

			ps.downstream.OnNext(item)
			emitted++
		}

		if ps.done.Load() {
			return
		}

		if !ps.fill() {
			ps.complete()
			return
		}

		n = ps.requested.Load()
		if n == emitted {
			n = ps.requested.Add(-emitted)
			if n == 0 {
				return
			}
			emitted = 0
		}
	}
}

// addDemand adds n to the requested counter, capping at Unbounded,
// and returns the previous value.
func addDemand(requested *atomic.Int64, n int64) int64 {
	for {
		cur := requested.Load()
		if cur == Unbounded {
			return Unbounded
		}

		next := cur + n
		if next < 0 {
			next = Unbounded
		}

		if requested.CompareAndSwap(cur, next) {
			return cur
		}
	}
}
