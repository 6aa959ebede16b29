// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncx

import (
	"code.hybscloud.com/atomix"
)

// mpscShared is the state block behind one unbounded channel.
type mpscShared[T any] struct {
	queue     *Mutex[[]T]
	available *Condvar
	senders   atomix.Int64
	receivers atomix.Int64
}

// Sender is the producing half of an unbounded channel.
//
// A Sender is owned by one goroutine at a time; Clone creates an
// independent Sender for another producer. Each Sender is closed exactly
// once.
type Sender[T any] struct {
	shared *mpscShared[T]
	closed bool
}

// Receiver is the consuming half of an unbounded channel.
//
// Single-consumer: the dequeue cache is not synchronized, so exactly one
// goroutine may call Recv/TryRecv. Allowing multiple receivers would
// require revisiting the cache swap below.
type Receiver[T any] struct {
	shared *mpscShared[T]
	cached []T
	closed bool
}

// Unbounded creates a multi-producer single-consumer FIFO channel and
// returns its two halves.
func Unbounded[T any]() (*Sender[T], *Receiver[T]) {
	shared := &mpscShared[T]{
		queue:     NewMutex([]T(nil)),
		available: NewCondvar(),
	}
	shared.senders.Store(1)
	shared.receivers.Store(1)
	return &Sender[T]{shared: shared}, &Receiver[T]{shared: shared}
}

// Send appends item to the channel. Never blocks.
// Returns ErrNoReceiver once every receiver has closed.
func (s *Sender[T]) Send(item T) error {
	if s.shared.receivers.Load() == 0 {
		return ErrNoReceiver
	}

	g := s.shared.queue.Lock()
	q := g.Value()
	wasEmpty := len(*q) == 0
	*q = append(*q, item)
	g.Unlock()

	// Only the transition from empty can have a blocked receiver; while
	// a backlog exists the receiver is draining, and notifying again is
	// a wasted wakeup.
	if wasEmpty {
		s.shared.available.NotifyOne()
	}
	return nil
}

// Clone creates another Sender on the same channel.
func (s *Sender[T]) Clone() *Sender[T] {
	s.shared.senders.Add(1)
	return &Sender[T]{shared: s.shared}
}

// Close releases the Sender. Closing the last Sender wakes all blocked
// receivers so they observe closure instead of blocking forever.
// Close is idempotent per Sender.
func (s *Sender[T]) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if s.shared.senders.AddAcqRel(-1) == 0 {
		s.shared.available.NotifyAll()
	}
}

// TotalReceivers returns the number of live receivers.
func (s *Sender[T]) TotalReceivers() int {
	return int(s.shared.receivers.Load())
}

// TotalQueuedItems returns the number of items in the shared queue. It
// does not count items already moved into the receiver's cache.
func (s *Sender[T]) TotalQueuedItems() int {
	g := s.shared.queue.Lock()
	n := len(*g.Value())
	g.Unlock()
	return n
}

// Recv removes and returns the oldest item, blocking while the channel
// is empty and senders remain. Returns ErrNoSender once every sender has
// closed and the queue is drained.
func (r *Receiver[T]) Recv() (T, error) {
	// Fast path: a previous Recv moved a burst into the local cache;
	// popping it takes no lock.
	if len(r.cached) > 0 {
		return r.popCached(), nil
	}

	g := r.shared.queue.Lock()
	for {
		q := g.Value()
		if len(*q) > 0 {
			item := r.drainLocked(q)
			g.Unlock()
			return item, nil
		}
		if r.shared.senders.Load() == 0 {
			g.Unlock()
			var zero T
			return zero, ErrNoSender
		}
		g = Wait(r.shared.available, g)
	}
}

// TryRecv removes and returns the oldest item without blocking.
// Returns ErrWouldBlock while the channel is empty with live senders,
// and ErrNoSender once every sender has closed and the queue is drained.
func (r *Receiver[T]) TryRecv() (T, error) {
	if len(r.cached) > 0 {
		return r.popCached(), nil
	}

	g := r.shared.queue.Lock()
	q := g.Value()
	if len(*q) > 0 {
		item := r.drainLocked(q)
		g.Unlock()
		return item, nil
	}
	noSenders := r.shared.senders.Load() == 0
	g.Unlock()

	var zero T
	if noSenders {
		return zero, ErrNoSender
	}
	return zero, ErrWouldBlock
}

func (r *Receiver[T]) popCached() T {
	item := r.cached[0]
	var zero T
	r.cached[0] = zero
	r.cached = r.cached[1:]
	return item
}

// drainLocked pops the front of the shared queue and, if a backlog
// remains, swaps the whole remainder into the local cache in one move,
// amortizing the lock cost across the burst. Caller holds the queue lock.
func (r *Receiver[T]) drainLocked(q *[]T) T {
	item := (*q)[0]
	var zero T
	(*q)[0] = zero
	rest := (*q)[1:]
	if len(rest) > 0 {
		r.cached = rest
		*q = nil
	} else {
		*q = (*q)[:0]
	}
	return item
}

// Close releases the Receiver. Subsequent Send calls report
// ErrNoReceiver; items already queued are discarded with the channel.
// Close is idempotent.
func (r *Receiver[T]) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.shared.receivers.AddAcqRel(-1)
}

// TotalSenders returns the number of live senders.
func (r *Receiver[T]) TotalSenders() int {
	return int(r.shared.senders.Load())
}
