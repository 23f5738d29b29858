// Package testt (for test tools), provides a couple of helpers for
// common test patterns, as an optional companion to the assert and
// check packages.
package testt

import (
	"context"
	"testing"
	"time"
)

// Context creates a context and attaches its cancellation function to
// the test's Cleanup: the context is canceled *after* the test's
// deferred functions have run.
func Context(t testing.TB) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

// ContextWithTimeout creates a context with the specified timeout,
// and attaches the cancellation to the test's cleanup.
func ContextWithTimeout(t testing.TB, dur time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), dur)
	t.Cleanup(cancel)
	return ctx
}

// Timer creates a new time.Timer with the specified duration, and
// stops the timer during the test's cleanup.
func Timer(t testing.TB, dur time.Duration) *time.Timer {
	timer := time.NewTimer(dur)
	t.Cleanup(func() { timer.Stop() })
	return timer
}
