// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncx

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// SpinLock is mutual exclusion by busy-waiting. It never blocks in the
// scheduler, so it is intended for very short critical sections only;
// anything that can suspend the holder belongs under Mutex instead.
//
// The protected value is owned by the lock and only reachable through a
// guard.
type SpinLock[T any] struct {
	locked atomix.Bool
	value  T
}

// SpinGuard brackets one critical section on a SpinLock.
type SpinGuard[T any] struct {
	lock *SpinLock[T]
}

// NewSpinLock creates a SpinLock protecting value.
func NewSpinLock[T any](value T) *SpinLock[T] {
	return &SpinLock[T]{value: value}
}

// Lock busy-waits until the lock is acquired and returns the guard.
func (l *SpinLock[T]) Lock() *SpinGuard[T] {
	sw := spin.Wait{}
	// Acquire on the winning transition pairs with the release store in
	// Unlock, ordering the previous holder's writes before this section.
	for !l.locked.CompareAndSwapAcqRel(false, true) {
		sw.Once()
	}
	return &SpinGuard[T]{lock: l}
}

// TryLock acquires the lock without spinning.
// Returns (nil, ErrWouldBlock) if the lock is held.
func (l *SpinLock[T]) TryLock() (*SpinGuard[T], error) {
	if !l.locked.CompareAndSwapAcqRel(false, true) {
		return nil, ErrWouldBlock
	}
	return &SpinGuard[T]{lock: l}, nil
}

// Value returns the protected value. Valid until Unlock.
func (g *SpinGuard[T]) Value() *T {
	return &g.lock.value
}

// Unlock releases the lock. The guard must not be used afterwards.
func (g *SpinGuard[T]) Unlock() {
	l := g.lock
	g.lock = nil
	l.locked.StoreRelease(false)
}
