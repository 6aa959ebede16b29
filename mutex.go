// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncx

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"

	"code.hybscloud.com/syncx/internal/futex"
)

// Mutex state word transitions:
//
//	0: unlocked
//	1: locked, no waiters
//	2: locked, waiters may be blocked on the word
//
// An unlock from state 2 wakes exactly one waiter. Waking one is enough:
// the next holder wakes the next waiter in turn, which avoids
// thundering-herd wakeups.
const (
	mutexUnlocked   = 0
	mutexLocked     = 1
	mutexContended  = 2
	mutexSpinBudget = 100
)

// Mutex is blocking mutual exclusion with an adaptive spin before
// suspension. The protected value is owned by the lock and only
// reachable through a guard.
type Mutex[T any] struct {
	state atomix.Int64
	value T
}

// MutexGuard brackets one critical section on a Mutex.
type MutexGuard[T any] struct {
	mutex *Mutex[T]
}

// NewMutex creates a Mutex protecting value.
func NewMutex[T any](value T) *Mutex[T] {
	return &Mutex[T]{value: value}
}

// Lock acquires the mutex, suspending the caller under contention, and
// returns the guard.
func (m *Mutex[T]) Lock() *MutexGuard[T] {
	if !m.state.CompareAndSwapAcqRel(mutexUnlocked, mutexLocked) {
		m.lockContended()
	}
	return &MutexGuard[T]{mutex: m}
}

// TryLock acquires the mutex without spinning or blocking.
// Returns (nil, ErrWouldBlock) if the mutex is held.
func (m *Mutex[T]) TryLock() (*MutexGuard[T], error) {
	if !m.state.CompareAndSwapAcqRel(mutexUnlocked, mutexLocked) {
		return nil, ErrWouldBlock
	}
	return &MutexGuard[T]{mutex: m}, nil
}

func (m *Mutex[T]) lockContended() {
	// Spin while the lock is held without waiters: the holder is likely
	// to release soon, and reclaiming here is much cheaper than a futex
	// round trip.
	sw := spin.Wait{}
	for i := 0; i < mutexSpinBudget && m.state.LoadRelaxed() == mutexLocked; i++ {
		sw.Once()
	}

	if m.state.CompareAndSwapAcqRel(mutexUnlocked, mutexLocked) {
		return
	}

	// Commit to blocking. Acquiring with state 2 is conservative: other
	// waiters may be blocked, so the eventual unlock must wake one.
	for m.state.SwapAcquire(mutexContended) != mutexUnlocked {
		futex.Wait(&m.state, mutexContended)
	}
}

// Value returns the protected value. Valid until Unlock.
func (g *MutexGuard[T]) Value() *T {
	return &g.mutex.value
}

// Unlock releases the mutex, waking one waiter if any are blocked.
// The guard must not be used afterwards.
func (g *MutexGuard[T]) Unlock() {
	m := g.mutex
	g.mutex = nil
	if m.state.SwapRelease(mutexUnlocked) == mutexContended {
		futex.WakeOne(&m.state)
	}
}
