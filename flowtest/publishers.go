package flowtest

import (
	"sync/atomic"

	"github.com/tychoish/flow"
)

// BurstPublisher is a deliberately non-compliant publisher: on the
// first Request it emits all of its items and then its terminal
// signal in one burst, ignoring the amount requested and ignoring
// cancellation. Use it to check how an operator copes with an
// upstream that keeps signaling after being canceled.
type BurstPublisher[T any] struct {
	items []T
	err   error
	subs  atomic.Int64
}

// Burst returns a publisher that emits the items and then completes.
func Burst[T any](items ...T) *BurstPublisher[T] { return &BurstPublisher[T]{items: items} }

// Error returns a publisher that emits the same items and then fails
// with err instead of completing.
func (bp *BurstPublisher[T]) Error(err error) *BurstPublisher[T] {
	return &BurstPublisher[T]{items: bp.items, err: err}
}

// Subscriptions reports how many times Subscribe was called.
func (bp *BurstPublisher[T]) Subscriptions() int { return int(bp.subs.Load()) }

func (bp *BurstPublisher[T]) Subscribe(sub flow.Subscriber[T]) {
	bp.subs.Add(1)
	sub.OnSubscribe(&burstSubscription[T]{pub: bp, sub: sub})
}

type burstSubscription[T any] struct {
	pub  *BurstPublisher[T]
	sub  flow.Subscriber[T]
	sent atomic.Bool
}

func (bs *burstSubscription[T]) Cancel() {}

func (bs *burstSubscription[T]) Request(int64) {
	if !bs.sent.CompareAndSwap(false, true) {
		return
	}

	for _, item := range bs.pub.items {
		bs.sub.OnNext(item)
	}

	if bs.pub.err != nil {
		bs.sub.OnError(bs.pub.err)
		return
	}
	bs.sub.OnComplete()
}

// ProbePublisher wraps a publisher and counts the subscriptions,
// requests and cancellations that pass through it.
type ProbePublisher[T any] struct {
	src      flow.Publisher[T]
	subs     atomic.Int64
	requests atomic.Int64
	cancels  atomic.Int64
	demand   atomic.Int64
}

// Probe wraps the publisher in a ProbePublisher.
func Probe[T any](src flow.Publisher[T]) *ProbePublisher[T] { return &ProbePublisher[T]{src: src} }

// Subscriptions reports how many times Subscribe was called.
func (pp *ProbePublisher[T]) Subscriptions() int { return int(pp.subs.Load()) }

// Requests reports how many times Request was called.
func (pp *ProbePublisher[T]) Requests() int { return int(pp.requests.Load()) }

// LastDemand reports the argument of the most recent Request call.
func (pp *ProbePublisher[T]) LastDemand() int64 { return pp.demand.Load() }

// Cancellations reports how many times Cancel was called.
func (pp *ProbePublisher[T]) Cancellations() int { return int(pp.cancels.Load()) }

func (pp *ProbePublisher[T]) Subscribe(sub flow.Subscriber[T]) {
	pp.subs.Add(1)
	pp.src.Subscribe(&probeSubscriber[T]{Subscriber: sub, probe: pp})
}

type probeSubscriber[T any] struct {
	flow.Subscriber[T]
	probe *ProbePublisher[T]
}

func (ps *probeSubscriber[T]) OnSubscribe(sub flow.Subscription) {
	ps.Subscriber.OnSubscribe(&probeSubscription[T]{Subscription: sub, probe: ps.probe})
}

type probeSubscription[T any] struct {
	flow.Subscription
	probe *ProbePublisher[T]
}

func (ps *probeSubscription[T]) Request(n int64) {
	ps.probe.requests.Add(1)
	ps.probe.demand.Store(n)
	ps.Subscription.Request(n)
}

func (ps *probeSubscription[T]) Cancel() {
	ps.probe.cancels.Add(1)
	ps.Subscription.Cancel()
}
