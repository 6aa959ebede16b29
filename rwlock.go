// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncx

import (
	"math"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"

	"code.hybscloud.com/syncx/internal/futex"
)

// RwLock state word encoding:
//
//	even s: s/2 readers hold the lock, no writer pending
//	odd s:  a writer is pending or holding; new readers must block
//	rwWriteLocked (odd): write locked
//
// writerWake is a separate generation word bumped solely to wake blocked
// writers, so reader-driven wakeups on the state word cannot be confused
// with writer handoffs.
//
// Once a writer is waiting the state is odd, which blocks readers that
// arrive afterwards; this bounds writer starvation while still allowing
// reader concurrency whenever no writer is pending.
const (
	rwWriteLocked = math.MaxInt64
	rwMaxReaders  = (rwWriteLocked - 2) / 2
)

// RwLock is a reader-writer lock with writer-starvation avoidance. The
// protected value is owned by the lock and only reachable through a
// read or write guard.
type RwLock[T any] struct {
	state      atomix.Int64
	writerWake atomix.Int64
	value      T
}

// ReadGuard brackets one shared critical section.
type ReadGuard[T any] struct {
	rw *RwLock[T]
}

// WriteGuard brackets one exclusive critical section.
type WriteGuard[T any] struct {
	rw *RwLock[T]
}

// NewRwLock creates an RwLock protecting value.
func NewRwLock[T any](value T) *RwLock[T] {
	return &RwLock[T]{value: value}
}

// Read acquires the lock shared, blocking while a writer is pending or
// holding. Panics if the reader count would overflow; that is a caller
// contract violation, not a runtime condition.
func (rw *RwLock[T]) Read() *ReadGuard[T] {
	sw := spin.Wait{}
	s := rw.state.LoadRelaxed()
	for {
		if s%2 == 0 {
			if s/2 >= rwMaxReaders {
				panic("syncx: too many readers")
			}
			if rw.state.CompareAndSwapAcqRel(s, s+2) {
				return &ReadGuard[T]{rw: rw}
			}
			s = rw.state.LoadRelaxed()
			sw.Once()
			continue
		}
		futex.Wait(&rw.state, s)
		s = rw.state.LoadRelaxed()
	}
}

// TryRead acquires the lock shared without blocking.
// Returns (nil, ErrWouldBlock) while a writer is pending or holding.
func (rw *RwLock[T]) TryRead() (*ReadGuard[T], error) {
	s := rw.state.LoadRelaxed()
	for s%2 == 0 {
		if s/2 >= rwMaxReaders {
			panic("syncx: too many readers")
		}
		if rw.state.CompareAndSwapAcqRel(s, s+2) {
			return &ReadGuard[T]{rw: rw}, nil
		}
		s = rw.state.LoadRelaxed()
	}
	return nil, ErrWouldBlock
}

// Write acquires the lock exclusive, blocking while readers or another
// writer hold it.
func (rw *RwLock[T]) Write() *WriteGuard[T] {
	s := rw.state.LoadRelaxed()
	for {
		// Unlocked, or only a pending-writer mark left: claim directly.
		if s <= 1 {
			if rw.state.CompareAndSwapAcqRel(s, rwWriteLocked) {
				return &WriteGuard[T]{rw: rw}
			}
			s = rw.state.LoadRelaxed()
			continue
		}
		// Make the state odd so arriving readers block, without
		// claiming the lock.
		if s%2 == 0 {
			if !rw.state.CompareAndSwapRelaxed(s, s+1) {
				s = rw.state.LoadRelaxed()
				continue
			}
		}
		// Block on the writer word, keyed to its current generation.
		// The last departing reader bumps it before waking, so a bump
		// between these two loads makes the wait return immediately.
		w := rw.writerWake.LoadAcquire()
		s = rw.state.LoadRelaxed()
		if s >= 2 {
			futex.Wait(&rw.writerWake, w)
			s = rw.state.LoadRelaxed()
		}
	}
}

// TryWrite acquires the lock exclusive without blocking and without
// marking a pending writer. Returns (nil, ErrWouldBlock) if the lock is
// held in any mode.
func (rw *RwLock[T]) TryWrite() (*WriteGuard[T], error) {
	s := rw.state.LoadRelaxed()
	for s <= 1 {
		if rw.state.CompareAndSwapAcqRel(s, rwWriteLocked) {
			return &WriteGuard[T]{rw: rw}, nil
		}
		s = rw.state.LoadRelaxed()
	}
	return nil, ErrWouldBlock
}

// Value returns the protected value for shared reading. Valid until
// Unlock; the caller must not mutate through it.
func (g *ReadGuard[T]) Value() *T {
	return &g.rw.value
}

// Unlock releases the shared lock. If this was the last reader and a
// writer is pending, exactly one writer is woken. The guard must not be
// used afterwards.
func (g *ReadGuard[T]) Unlock() {
	rw := g.rw
	g.rw = nil
	// 3 -> 1: last reader departing with a writer pending.
	if rw.state.AddAcqRel(-2) == 1 {
		rw.writerWake.AddAcqRel(1)
		futex.WakeOne(&rw.writerWake)
	}
}

// Value returns the protected value for exclusive access. Valid until
// Unlock.
func (g *WriteGuard[T]) Value() *T {
	return &g.rw.value
}

// Unlock releases the exclusive lock, waking one pending writer and all
// blocked readers. The guard must not be used afterwards.
func (g *WriteGuard[T]) Unlock() {
	rw := g.rw
	g.rw = nil
	rw.state.StoreRelease(0)
	// Undo the pending bump so a writer that blocked while we held the
	// lock re-evaluates against the fresh generation.
	rw.writerWake.AddAcqRel(-1)
	futex.WakeOne(&rw.writerWake)
	futex.WakeAll(&rw.state)
}
