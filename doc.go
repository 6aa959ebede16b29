// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package syncx provides shared-memory concurrency primitives built from
// scratch on atomic words and a futex-style wait/wake service.
//
// The package offers the following primitives:
//
//   - Arc / Weak: atomically reference-counted shared ownership
//   - SpinLock: busy-waiting mutual exclusion for very short sections
//   - Mutex: blocking mutual exclusion with adaptive spin
//   - Condvar: wait/notify on top of Mutex
//   - RwLock: shared/exclusive locking with writer-starvation avoidance
//   - Unbounded: multi-producer single-consumer FIFO channel
//   - Oneshot: exactly-once single-value transfer
//
// None of these delegate to the runtime's sync package. Each primitive is a
// small state machine over one or two atomic words; blocking goes through
// the futex service in internal/futex.
//
// # Quick Start
//
//	m := syncx.NewMutex(0)
//
//	g := m.Lock()
//	*g.Value()++
//	g.Unlock()
//
// # Locks and Guards
//
// Mutex, SpinLock and RwLock own their protected value. The only access
// path is a guard returned by the lock operation; unlocking the guard is
// the only way the lock is released:
//
//	rw := syncx.NewRwLock([]int{1, 2, 3})
//
//	r := rw.Read()
//	n := len(*r.Value())
//	r.Unlock()
//
//	w := rw.Write()
//	*w.Value() = append(*w.Value(), n)
//	w.Unlock()
//
// A guard must be unlocked on every exit path. Pair Lock with a deferred
// Unlock when the critical section spans early returns:
//
//	g := m.Lock()
//	defer g.Unlock()
//
// Using a guard after Unlock panics.
//
// # Condition Variables
//
// Condvar waits are always coupled to a predicate re-checked in a loop,
// because wakeups may be spurious:
//
//	m := syncx.NewMutex([]item(nil))
//	cv := syncx.NewCondvar()
//
//	// Consumer
//	g := m.Lock()
//	for len(*g.Value()) == 0 {
//	    g = syncx.Wait(cv, g)
//	}
//	item := (*g.Value())[0]
//	g.Unlock()
//
//	// Producer
//	g := m.Lock()
//	*g.Value() = append(*g.Value(), it)
//	g.Unlock()
//	cv.NotifyOne()
//
// # Reference Counting
//
// Arc provides shared ownership with strong and weak handles. Go has no
// destructors, so a handle is released explicitly with Drop:
//
//	a := syncx.NewArc(42)
//	b := a.Clone()
//	w := a.Downgrade()
//
//	a.Drop()
//	b.Drop() // payload destroyed here
//
//	if _, ok := w.Upgrade(); !ok {
//	    // all strong handles gone
//	}
//	w.Drop()
//
// NewArcFunc attaches a destructor that runs exactly once, when the last
// strong handle drops. GetMut grants an exclusive view only when the caller
// holds the sole strong handle and no weak handles exist.
//
// # Channels
//
// Unbounded creates a multi-producer single-consumer channel. Send never
// blocks; Recv blocks while the queue is empty and senders remain alive:
//
//	s, r := syncx.Unbounded[int]()
//
//	go func() {
//	    s2 := s.Clone()
//	    defer s2.Close()
//	    s2.Send(1)
//	}()
//
//	v, err := r.Recv()
//	if syncx.IsClosed(err) {
//	    // all senders gone and queue drained
//	}
//
// Closing the last sender wakes all blocked receivers so they observe
// closure instead of blocking forever. Send after the receiver closed
// reports ErrNoReceiver; Recv after the last sender closed and the queue
// drained reports ErrNoSender. Both match IsClosed.
//
// Oneshot transfers a single value exactly once. Two shapes are provided:
//
//	// Shared-ownership pair: each half keeps the channel alive on its
//	// own; the receiver polls readiness before receiving.
//	s, r := syncx.NewOneshot[string]()
//	s.Send("hi")
//	if r.IsReady() {
//	    v := r.Receive()
//	}
//
//	// Split pair tied to one channel value: the receiver blocks by
//	// parking until the sender publishes.
//	ch := syncx.NewOneshotChannel[string]()
//	s, r := ch.Split()
//	go s.Send("hi")
//	v := r.Receive()
//
// Sending twice on the same oneshot panics, as does Receive before
// readiness on the polling pair. These are caller contract violations,
// not runtime conditions.
//
// # Error Handling
//
// Blocking operations do not fail; they return when the condition holds.
// The non-blocking try-variants (TryLock, TryRead, TryWrite, TryRecv)
// return [ErrWouldBlock], sourced from [code.hybscloud.com/iox] for
// ecosystem consistency:
//
//	backoff := iox.Backoff{}
//	for {
//	    g, err := m.TryLock()
//	    if err == nil {
//	        break
//	    }
//	    backoff.Wait()
//	}
//
// Channel end-of-life states are reportable conditions ([ErrNoReceiver],
// [ErrNoSender]); contract violations panic; reference-count overflow
// aborts the process, because continuing would silently corrupt the
// counting invariant.
//
// Locks never poison. A guard is always eventually obtainable regardless
// of how prior holders exited.
//
// # Memory Ordering
//
// Every release-side transition that lets a waiter proceed is paired with
// an acquire-side observation before the waiter touches protected data.
// Atomic words come from [code.hybscloud.com/atomix], which keeps each
// ordering choice (relaxed/acquire/release) explicit at the call site
// instead of inferred.
//
// # Thread Safety
//
// All primitives are safe for concurrent use from any number of
// goroutines, with two access-pattern constraints:
//
//   - Unbounded's Receiver is single-consumer; its dequeue cache is
//     not synchronized
//   - a oneshot half is owned by one goroutine at a time
//
// Violating these constraints causes undefined behavior including data
// corruption and races.
//
// # Race Detection
//
// Go's race detector tracks its own synchronization primitives and cannot
// observe happens-before edges established through atomic memory orderings
// on separate words. The primitives here are correct under acquire-release
// reasoning, but stress tests that hammer them are excluded from race
// builds via //go:build !race, following the RaceEnabled toggle.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit
// memory ordering, and [code.hybscloud.com/spin] for CPU pause
// instructions.
package syncx
