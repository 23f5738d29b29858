package flow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tychoish/flow"
	"github.com/tychoish/flow/assert"
	"github.com/tychoish/flow/flowtest"
	"github.com/tychoish/flow/testt"
)

// neverPublisher subscribes, records cancellation, and never signals.
type neverPublisher struct{ canceled chan struct{} }

func (np *neverPublisher) Subscribe(sub flow.Subscriber[int]) { sub.OnSubscribe(np) }
func (np *neverPublisher) Request(int64)                       {}
func (np *neverPublisher) Cancel()                             { close(np.canceled) }

func TestBlockingLast(t *testing.T) {
	t.Run("LastValue", func(t *testing.T) {
		val, err := flow.BlockingLast(testt.Context(t), flow.Items("a", "b", "c"))
		assert.NotError(t, err)
		assert.Equal(t, val, "c")
	})
	t.Run("NoElements", func(t *testing.T) {
		val, err := flow.BlockingLast(testt.Context(t), flow.Empty[int]())
		assert.ErrorIs(t, err, flow.ErrNoElements)
		assert.Zero(t, val)
	})
	t.Run("Error", func(t *testing.T) {
		expected := errors.New("source")
		val, err := flow.BlockingLast[int](testt.Context(t), flowtest.Burst(1, 2).Error(expected))
		assert.ErrorIs(t, err, expected)
		assert.Zero(t, val)
	})
	t.Run("CanceledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(testt.Context(t))
		cancel()
		src := flowtest.Probe(flow.Items(1))
		_, err := flow.BlockingLast[int](ctx, src)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, src.Subscriptions(), 0)
	})
	t.Run("Timeout", func(t *testing.T) {
		np := &neverPublisher{canceled: make(chan struct{})}
		ctx := testt.ContextWithTimeout(t, 10*time.Millisecond)

		assert.MaxRuntime(t, time.Second, func() {
			_, err := flow.BlockingLast[int](ctx, np)
			assert.ErrorIs(t, err, context.DeadlineExceeded)
		})

		select {
		case <-np.canceled:
		case <-testt.Timer(t, time.Second).C:
			t.Fatal("subscription was not canceled")
		}
	})
	t.Run("CompletedBeforeContextExpired", func(t *testing.T) {
		for range 100 {
			ctx, cancel := context.WithCancel(testt.Context(t))
			pub := flow.MakeFlowable(func(sub flow.Subscriber[int]) {
				sub.OnSubscribe(flow.EmptySubscription())
				sub.OnNext(1)
				cancel()
				sub.OnComplete()
			})
			val, err := flow.BlockingLast(ctx, pub)
			assert.NotError(t, err)
			assert.Equal(t, val, 1)
		}
	})
	t.Run("Async", func(t *testing.T) {
		pub := flow.MakeFlowable(func(sub flow.Subscriber[int]) {
			sub.OnSubscribe(flow.EmptySubscription())
			go func() {
				for i := 0; i < 10; i++ {
					sub.OnNext(i)
				}
				sub.OnComplete()
			}()
		})
		val, err := flow.BlockingLast(testt.Context(t), pub)
		assert.NotError(t, err)
		assert.Equal(t, val, 9)
	})
	t.Run("DuplicateSubscription", func(t *testing.T) {
		sink := flowtest.CaptureUndeliverable(t)
		extra := flowtest.Probe(flow.Items(7))
		pub := flow.MakeFlowable(func(sub flow.Subscriber[int]) {
			sub.OnSubscribe(flow.EmptySubscription())
			extra.Subscribe(sub)
			sub.OnNext(1)
			sub.OnComplete()
		})
		val, err := flow.BlockingLast(testt.Context(t), pub)
		assert.NotError(t, err)
		assert.Equal(t, val, 1)
		assert.Equal(t, extra.Cancellations(), 1)
		assert.ErrorIs(t, sink.Resolve(), flow.ErrDuplicateSubscription)
	})
}
