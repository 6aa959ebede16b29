// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncx

import (
	"code.hybscloud.com/atomix"

	"code.hybscloud.com/syncx/internal/futex"
)

// Condvar is a condition variable for use with Mutex.
//
// The generation counter seq is bumped on every notification. A waiter
// snapshots it before releasing the mutex and only blocks while it is
// unchanged, so a notification landing between unlock and block is never
// missed: the counter already differs and the wait returns immediately.
//
// Wakeups may be spurious. Callers re-check their predicate in a loop:
//
//	g := m.Lock()
//	for !ready(g.Value()) {
//	    g = syncx.Wait(cv, g)
//	}
type Condvar struct {
	seq     atomix.Int64
	waiters atomix.Int64
}

// NewCondvar creates a condition variable.
func NewCondvar() *Condvar {
	return &Condvar{}
}

// NotifyOne wakes one waiter, if any are blocked.
func (cv *Condvar) NotifyOne() {
	// Skip the counter bump and the wake when nobody can be blocked;
	// the waiter count is registered before the snapshot, so a
	// concurrent Wait either sees this notification's bump or is
	// already counted here.
	if cv.waiters.Load() > 0 {
		cv.seq.Add(1)
		futex.WakeOne(&cv.seq)
	}
}

// NotifyAll wakes all waiters, if any are blocked.
func (cv *Condvar) NotifyAll() {
	if cv.waiters.Load() > 0 {
		cv.seq.Add(1)
		futex.WakeAll(&cv.seq)
	}
}

// Wait atomically releases the guard's mutex and blocks until notified,
// then reacquires the mutex and returns the new guard. The passed guard
// is consumed.
//
// Wait is a package function because the condition variable itself is
// not generic over the mutex's value type.
func Wait[T any](cv *Condvar, guard *MutexGuard[T]) *MutexGuard[T] {
	cv.waiters.Add(1)

	// Snapshot before unlocking; see the type comment.
	seq := cv.seq.Load()

	m := guard.mutex
	guard.Unlock()

	futex.Wait(&cv.seq, seq)

	cv.waiters.Add(-1)

	return m.Lock()
}
