package flow

import "sync/atomic"

const (
	scalarNoRequestNoValue int32 = iota
	scalarHasRequestNoValue
	scalarNoRequestHasValue
	scalarHasRequestHasValue
	scalarCancelled
)

// deferredScalar delivers one value followed by completion to a
// subscriber, once both the value is available and the subscriber
// has requested at least one element, whichever happens last.
type deferredScalar[T any] struct {
	downstream Subscriber[T]
	value      T
	state      atomic.Int32
}

func (d *deferredScalar[T]) request() {
	for {
		switch d.state.Load() {
		case scalarNoRequestNoValue:
			if d.state.CompareAndSwap(scalarNoRequestNoValue, scalarHasRequestNoValue) {
				return
			}
		case scalarNoRequestHasValue:
			if d.state.CompareAndSwap(scalarNoRequestHasValue, scalarHasRequestHasValue) {
				d.emit()
				return
			}
		default:
			return
		}
	}
}

// complete must be called at most once.
func (d *deferredScalar[T]) complete(value T) {
	for {
		switch d.state.Load() {
		case scalarNoRequestNoValue:
			d.value = value
			if d.state.CompareAndSwap(scalarNoRequestNoValue, scalarNoRequestHasValue) {
				return
			}
		case scalarHasRequestNoValue:
			if d.state.CompareAndSwap(scalarHasRequestNoValue, scalarHasRequestHasValue) {
				d.value = value
				d.emit()
				return
			}
		default:
			return
		}
	}
}

func (d *deferredScalar[T]) emit() {
	var zero T
	value := d.value
	d.value = zero

	d.downstream.OnNext(value)
	if !d.cancelled() {
		d.downstream.OnComplete()
	}
}

func (d *deferredScalar[T]) cancel() {
	if d.state.Swap(scalarCancelled) == scalarNoRequestHasValue {
		var zero T
		d.value = zero
	}
}

func (d *deferredScalar[T]) cancelled() bool { return d.state.Load() == scalarCancelled }
