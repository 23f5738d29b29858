package flow

import (
	"context"
	"sync"

	"github.com/tychoish/flow/adt"
)

// BlockingLast subscribes to the publisher with unbounded demand and
// blocks until it terminates, returning the last element. It returns
// the publisher's error if the publisher fails, ErrNoElements if it
// completes without elements, and the context's error (after
// canceling the subscription) if the context expires first.
func BlockingLast[T any](ctx context.Context, pub Publisher[T]) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}

	bs := &blockingSubscriber[T]{done: make(chan struct{})}
	pub.Subscribe(bs)

	select {
	case <-bs.done:
		return bs.result()
	case <-ctx.Done():
		// a publisher that finished before the context expired wins.
		select {
		case <-bs.done:
			return bs.result()
		default:
		}
		bs.cancel()
		var zero T
		return zero, ctx.Err()
	}
}

type blockingSubscriber[T any] struct {
	mtx       sync.Mutex
	sub       Subscription
	canceled  bool
	last      T
	hasValue  bool
	err       error
	done      chan struct{}
	closeOnce sync.Once
}

func (bs *blockingSubscriber[T]) OnSubscribe(sub Subscription) {
	bs.mtx.Lock()
	if duplicate := bs.sub != nil; duplicate || bs.canceled {
		bs.mtx.Unlock()
		sub.Cancel()
		if duplicate {
			ReportUndeliverable(ErrDuplicateSubscription)
		}
		return
	}
	bs.sub = sub
	bs.mtx.Unlock()

	sub.Request(Unbounded)
}

func (bs *blockingSubscriber[T]) OnNext(item T) {
	defer adt.With(adt.Lock(&bs.mtx))
	bs.last, bs.hasValue = item, true
}

func (bs *blockingSubscriber[T]) OnError(err error) {
	bs.mtx.Lock()
	bs.err = err
	bs.mtx.Unlock()
	bs.terminate()
}

func (bs *blockingSubscriber[T]) OnComplete() { bs.terminate() }

func (bs *blockingSubscriber[T]) terminate() { bs.closeOnce.Do(func() { close(bs.done) }) }

func (bs *blockingSubscriber[T]) cancel() {
	bs.mtx.Lock()
	bs.canceled = true
	sub := bs.sub
	bs.mtx.Unlock()

	if sub != nil {
		sub.Cancel()
	}
}

func (bs *blockingSubscriber[T]) result() (out T, err error) {
	defer adt.With(adt.Lock(&bs.mtx))
	switch {
	case bs.err != nil:
		return out, bs.err
	case !bs.hasValue:
		return out, ErrNoElements
	default:
		return bs.last, nil
	}
}
