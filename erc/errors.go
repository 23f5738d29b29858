// Package erc provides a concurrency-safe error collector. A
// Collector records errors in the order they arrive and never merges
// or drops them; it is the recording end of error handlers that must
// accept errors from many goroutines at once.
package erc

import (
	"sync"

	"github.com/tychoish/flow/adt"
	"github.com/tychoish/flow/ers"
	"github.com/tychoish/flow/fn"
)

// Collector is an append-only, thread-safe list of errors. The zero
// value is ready to use.
type Collector struct {
	mtx  sync.Mutex
	errs []error
}

// Push collects an error if that error is non-nil.
func (ec *Collector) Push(err error) {
	if err == nil {
		return
	}

	defer adt.With(adt.Lock(&ec.mtx))
	ec.errs = append(ec.errs, err)
}

// Handler exposes Push as an error handler.
func (ec *Collector) Handler() fn.Handler[error] { return ec.Push }

// Len returns the number of errors collected.
func (ec *Collector) Len() int { defer adt.With(adt.Lock(&ec.mtx)); return len(ec.errs) }

// Ok returns true when no errors have been collected.
func (ec *Collector) Ok() bool { return ec.Len() == 0 }

// Errors returns a copy of the collected errors, oldest first.
func (ec *Collector) Errors() []error {
	defer adt.With(adt.Lock(&ec.mtx))
	out := make([]error, len(ec.errs))
	copy(out, ec.errs)
	return out
}

// Resolve returns nil if there are no errors, the error itself when
// exactly one was collected, and otherwise an error that wraps every
// collected error (compatible with errors.Is and errors.As).
func (ec *Collector) Resolve() error { return ers.Join(ec.Errors()...) }
