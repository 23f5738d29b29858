// Package check provides non-fatal assertions: a failure is reported
// with t.Errorf and the test continues. Every assertion returns
// whether it held, which the fatal assert package builds on.
package check

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func report(t testing.TB, ok bool, format string, args ...any) bool {
	t.Helper()
	if !ok {
		t.Errorf(format, args...)
	}
	return ok
}

// True fails the test if the condition is false.
func True(t testing.TB, cond bool) bool {
	t.Helper()
	return report(t, cond, "condition is false")
}

// Equal fails the test if the values differ. Pointers compare by
// address.
func Equal[T comparable](t testing.TB, got, want T) bool {
	t.Helper()
	return report(t, got == want, "got <%v>, want <%v>", got, want)
}

// NotEqual fails the test if the values are the same.
func NotEqual[T comparable](t testing.TB, got, other T) bool {
	t.Helper()
	return report(t, got != other, "both values are <%v>", got)
}

// Zero fails the test unless the value is the zero value of its type.
func Zero[T comparable](t testing.TB, val T) bool {
	t.Helper()
	var zero T
	return report(t, val == zero, "%T value <%v> is not zero", val, val)
}

// NotZero fails the test if the value is the zero value of its type.
func NotZero[T comparable](t testing.TB, val T) bool {
	t.Helper()
	var zero T
	return report(t, val != zero, "%T value is zero", val)
}

// Nil fails the test unless the value is nil, including typed nil
// pointers, maps, slices, channels and functions held in the
// interface.
func Nil(t testing.TB, val any) bool {
	t.Helper()
	return report(t, isNil(val), "%T value <%v> is not nil", val, val)
}

// NotNil fails the test if Nil would pass.
func NotNil(t testing.TB, val any) bool {
	t.Helper()
	return report(t, !isNil(val), "%T value is nil", val)
}

func isNil(val any) bool {
	if val == nil {
		return true
	}
	switch rv := reflect.ValueOf(val); rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// Error fails the test if err is nil.
func Error(t testing.TB, err error) bool {
	t.Helper()
	return report(t, err != nil, "expected an error")
}

// NotError fails the test if err is not nil.
func NotError(t testing.TB, err error) bool {
	t.Helper()
	return report(t, err == nil, "unexpected error: %v", err)
}

// ErrorIs fails the test unless errors.Is(err, target).
func ErrorIs(t testing.TB, err, target error) bool {
	t.Helper()
	return report(t, errors.Is(err, target), "error <%v> does not match <%v>", err, target)
}

// NotErrorIs fails the test if errors.Is(err, target).
func NotErrorIs(t testing.TB, err, target error) bool {
	t.Helper()
	return report(t, !errors.Is(err, target), "error <%v> matches <%v>", err, target)
}

func panics(fn func()) (val any, panicked bool) {
	defer func() {
		if val = recover(); val != nil {
			panicked = true
		}
	}()
	fn()
	return nil, false
}

// Panic fails the test unless fn panics.
func Panic(t testing.TB, fn func()) bool {
	t.Helper()
	_, ok := panics(fn)
	return report(t, ok, "function did not panic")
}

// NotPanic fails the test if fn panics.
func NotPanic(t testing.TB, fn func()) bool {
	t.Helper()
	val, ok := panics(fn)
	return report(t, !ok, "function panicked: %v", val)
}

// Contains fails the test unless item is an element of slice.
func Contains[T comparable](t testing.TB, slice []T, item T) bool {
	t.Helper()
	return report(t, indexOf(slice, item) >= 0, "<%v> is not in %v", item, slice)
}

// NotContains fails the test if item is an element of slice.
func NotContains[T comparable](t testing.TB, slice []T, item T) bool {
	t.Helper()
	return report(t, indexOf(slice, item) < 0, "<%v> is in %v", item, slice)
}

func indexOf[T comparable](slice []T, item T) int {
	for idx := range slice {
		if slice[idx] == item {
			return idx
		}
	}
	return -1
}

// EqualItems fails the test unless both slices hold equal elements in
// the same order.
func EqualItems[T comparable](t testing.TB, got, want []T) bool {
	t.Helper()
	if len(got) != len(want) {
		return report(t, false, "got %d items %v, want %d items %v", len(got), got, len(want), want)
	}
	for idx := range got {
		if got[idx] != want[idx] {
			return report(t, false, "item %d: got <%v>, want <%v>", idx, got[idx], want[idx])
		}
	}
	return true
}

// Substring fails the test unless substr occurs in str.
func Substring(t testing.TB, str, substr string) bool {
	t.Helper()
	return report(t, strings.Contains(str, substr), "%q does not contain %q", str, substr)
}

// MaxRuntime runs op and fails the test if it takes longer than dur.
func MaxRuntime(t testing.TB, dur time.Duration, op func()) bool {
	t.Helper()
	start := time.Now()
	op()
	took := time.Since(start)
	return report(t, took <= dur, "took %s, limit %s", took, dur)
}
