package adt

import "sync"

// Lock takes the lock, and then returns it.
//
// This, in combination with With makes it possible to have a single
// statement for managing a mutex in a defer, given the evaluation
// time of defer arguments, as in:
//
//	defer adt.With(adt.Lock(mtx))
func Lock(mtx *sync.Mutex) *sync.Mutex { mtx.Lock(); return mtx }

// With takes a lock as an argument and then releases the lock when it
// executes.
func With(mtx *sync.Mutex) { mtx.Unlock() }
