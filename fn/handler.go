// Package fn provides the function types used as handlers and
// callbacks across flow, with helpers for making them panic safe,
// composable and synchronized.
package fn

import (
	"sync"

	"github.com/tychoish/flow/ers"
)

// Handler describes a function that operates on a single object, but
// returns no output, and is used primarily for side effects,
// particularly around handling errors. The methods on Handler provide
// panic-safety, composition and synchronization.
type Handler[T any] func(T)

// Safe returns a function that will execute the underlying Handler
// function, only when the function is non-nil.
func (of Handler[T]) Safe() Handler[T] {
	return func(in T) {
		if of != nil {
			of(in)
		}
	}
}

// RecoverPanic runs the handler function with a panic handler and
// converts a possible panic to an error.
func (of Handler[T]) RecoverPanic(in T) error { return ers.WithRecoverCall(func() { of(in) }) }

// WithRecover produces a handler that never panics: a panic in the
// underlying handler is converted to an error and passed to the
// error handler.
func (of Handler[T]) WithRecover(oe Handler[error]) Handler[T] {
	return func(in T) {
		if err := of.RecoverPanic(in); err != nil {
			oe(err)
		}
	}
}

// Join returns a handler that runs the root handler and then next.
// Either may be nil.
func (of Handler[T]) Join(next Handler[T]) Handler[T] {
	return func(in T) { of.Safe()(in); next.Safe()(in) }
}

// Lock returns a handler that is protected by a mutex. All
// executions of the handler are isolated.
func (of Handler[T]) Lock() Handler[T] {
	mtx := &sync.Mutex{}
	return func(in T) {
		mtx.Lock()
		defer mtx.Unlock()
		of(in)
	}
}
