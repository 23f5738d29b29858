// Package ers provides sentinel error constants and the panic
// recovery helpers used throughout flow.
//
// ers has no dependencies outside of the standard library, and is
// safe to import from every other package in the module.
package ers

import (
	"errors"
	"fmt"
)

// Error is a string type for declaring sentinel errors as
// constants. Values compare with errors.Is by value.
type Error string

// New constructs an error object that uses the Error as the
// underlying type.
func New(str string) error { return Error(str) }

// Error implements the error interface.
func (e Error) Error() string { return string(e) }

// Is satisfies the interface used by errors.Is without using
// reflection.
func (e Error) Is(err error) bool {
	switch x := err.(type) {
	case Error:
		return x == e
	default:
		return false
	}
}

// Join merges the non-nil errors. Join returns nil when there are no
// errors, and the error itself (unwrapped) when there is exactly one.
func Join(errs ...error) error {
	out := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}

	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	default:
		return errors.Join(out...)
	}
}

// Wrapf annotates an error with a formatted message, in the style of
// fmt.Errorf("<message>: %w"). Wrapf returns nil for nil errors.
func Wrapf(err error, tmpl string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(tmpl, args...), err)
}
