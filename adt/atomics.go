// Package adt provides "atomic data types": a strongly-typed generic
// wrapper for atomic values, and helpers for holding a mutex in a
// single defer statement.
package adt

import (
	"sync/atomic"
)

// Atomic is a very simple atomic Get/Set operation, providing a
// generic type-safe implementation wrapping sync/atomic.Value.
//
// The zero value is usable, and Get returns the zero value of T until
// the first Set.
type Atomic[T any] struct{ val atomic.Value }

// Set atomically sets the value of the Atomic.
func (a *Atomic[T]) Set(in T) { a.val.Store(box[T]{in}) }

// Get resolves the atomic value, returning the zero value of the type
// T if the value is unset.
func (a *Atomic[T]) Get() T { return a.unbox(a.val.Load()) }

func (*Atomic[T]) unbox(val any) (out T) {
	if b, ok := val.(box[T]); ok {
		return b.val
	}
	return out
}

// box gives atomic.Value a consistent concrete type to store, even
// when T is an interface type and the values stored have different
// dynamic types (or are nil).
type box[T any] struct{ val T }
