package ers

import (
	"fmt"
	"strings"
)

// ParsePanic converts the value returned by recover() into an error
// that wraps ErrRecoveredPanic. When the panic value is itself an
// error, it stays reachable with errors.Is and errors.As. ParsePanic
// returns nil when there was no panic.
func ParsePanic(r any) error {
	switch val := r.(type) {
	case nil:
		return nil
	case error:
		return fmt.Errorf("%w: %w", val, ErrRecoveredPanic)
	case string:
		return fmt.Errorf("%w: %w", New(val), ErrRecoveredPanic)
	default:
		return fmt.Errorf("[%T]: %v: %w", val, val, ErrRecoveredPanic)
	}
}

// WithRecoverCall runs a function that does not produce an error
// and, if the function panics, converts the panic into an error.
func WithRecoverCall(fn func()) (err error) {
	defer func() { err = ParsePanic(recover()) }()
	fn()
	return
}

// WithRecoverDo runs a function that returns a value and an error,
// converting a panic into an error. When the function panics the
// zero value is returned.
func WithRecoverDo[T any](fn func() (T, error)) (out T, err error) {
	defer func() {
		if perr := ParsePanic(recover()); perr != nil {
			var zero T
			out, err = zero, perr
		}
	}()
	return fn()
}

// NewInvariantViolation builds the error used as a panic payload
// when an API contract is violated. Error arguments are wrapped, all
// other arguments are rendered into the message.
func NewInvariantViolation(args ...any) error {
	switch len(args) {
	case 0:
		return ErrInvariantViolation
	case 1:
		switch ei := args[0].(type) {
		case error:
			return fmt.Errorf("%w: %w", ei, ErrInvariantViolation)
		case string:
			return fmt.Errorf("%s: %w", ei, ErrInvariantViolation)
		default:
			return fmt.Errorf("%v: %w", ei, ErrInvariantViolation)
		}
	default:
		var errs []error
		var msg []any
		for _, arg := range args {
			if err, ok := arg.(error); ok {
				errs = append(errs, err)
				continue
			}
			msg = append(msg, arg)
		}
		errs = append(errs, ErrInvariantViolation)
		if len(msg) == 0 {
			return Join(errs...)
		}
		return fmt.Errorf("%s: %w", strings.TrimSpace(fmt.Sprintln(msg...)), Join(errs...))
	}
}
