// Package assert provides fatal forms of the assertions in check: a
// failing assertion reports like its check counterpart and then stops
// the test with t.FailNow.
package assert

import (
	"testing"
	"time"

	"github.com/tychoish/flow/assert/check"
)

func stop(t testing.TB, ok bool) {
	t.Helper()
	if !ok {
		t.FailNow()
	}
}

// True stops the test if the condition is false.
func True(t testing.TB, cond bool) { t.Helper(); stop(t, check.True(t, cond)) }

// Equal stops the test if the values differ.
func Equal[T comparable](t testing.TB, got, want T) { t.Helper(); stop(t, check.Equal(t, got, want)) }

// NotEqual stops the test if the values are the same.
func NotEqual[T comparable](t testing.TB, got, other T) {
	t.Helper()
	stop(t, check.NotEqual(t, got, other))
}

// Zero stops the test unless the value is the zero value.
func Zero[T comparable](t testing.TB, val T) { t.Helper(); stop(t, check.Zero(t, val)) }

// NotZero stops the test if the value is the zero value.
func NotZero[T comparable](t testing.TB, val T) { t.Helper(); stop(t, check.NotZero(t, val)) }

// Nil stops the test unless the value is nil.
func Nil(t testing.TB, val any) { t.Helper(); stop(t, check.Nil(t, val)) }

// NotNil stops the test if the value is nil.
func NotNil(t testing.TB, val any) { t.Helper(); stop(t, check.NotNil(t, val)) }

// Error stops the test if err is nil.
func Error(t testing.TB, err error) { t.Helper(); stop(t, check.Error(t, err)) }

// NotError stops the test if err is not nil.
func NotError(t testing.TB, err error) { t.Helper(); stop(t, check.NotError(t, err)) }

// ErrorIs stops the test unless errors.Is(err, target).
func ErrorIs(t testing.TB, err, target error) { t.Helper(); stop(t, check.ErrorIs(t, err, target)) }

// NotErrorIs stops the test if errors.Is(err, target).
func NotErrorIs(t testing.TB, err, target error) {
	t.Helper()
	stop(t, check.NotErrorIs(t, err, target))
}

// Panic stops the test unless fn panics.
func Panic(t testing.TB, fn func()) { t.Helper(); stop(t, check.Panic(t, fn)) }

// NotPanic stops the test if fn panics.
func NotPanic(t testing.TB, fn func()) { t.Helper(); stop(t, check.NotPanic(t, fn)) }

// Contains stops the test unless item is in slice.
func Contains[T comparable](t testing.TB, slice []T, item T) {
	t.Helper()
	stop(t, check.Contains(t, slice, item))
}

// NotContains stops the test if item is in slice.
func NotContains[T comparable](t testing.TB, slice []T, item T) {
	t.Helper()
	stop(t, check.NotContains(t, slice, item))
}

// EqualItems stops the test unless the slices hold the same elements
// in the same order.
func EqualItems[T comparable](t testing.TB, got, want []T) {
	t.Helper()
	stop(t, check.EqualItems(t, got, want))
}

// Substring stops the test unless substr occurs in str.
func Substring(t testing.TB, str, substr string) { t.Helper(); stop(t, check.Substring(t, str, substr)) }

// MaxRuntime stops the test if op takes longer than dur.
func MaxRuntime(t testing.TB, dur time.Duration, op func()) {
	t.Helper()
	stop(t, check.MaxRuntime(t, dur, op))
}
