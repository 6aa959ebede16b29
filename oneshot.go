// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncx

import (
	"code.hybscloud.com/atomix"
)

// Two oneshot shapes are provided.
//
// OneshotChannel/Split ties both halves to one channel value: the
// receiver blocks by parking its goroutine and the sender unparks it.
//
// NewOneshot returns independent halves that each hold a strong Arc
// handle on the channel block, so either side may outlive the other;
// the receiver polls readiness instead of parking.

// OneshotChannel is a single-value channel. Split hands out the sending
// and receiving halves; the channel may be split again after a transfer
// completes to reuse the storage.
type OneshotChannel[T any] struct {
	slot   cell[T]
	ready  atomix.Bool
	parker chan struct{}
	drop   func(*T)
}

// SplitSender is the sending half of a split OneshotChannel.
// Single-use: it is consumed by Send.
type SplitSender[T any] struct {
	ch *OneshotChannel[T]
}

// SplitReceiver is the receiving half of a split OneshotChannel.
// Single-use: it is consumed by Receive.
type SplitReceiver[T any] struct {
	ch *OneshotChannel[T]
}

// NewOneshotChannel creates an unsplit oneshot channel.
func NewOneshotChannel[T any]() *OneshotChannel[T] {
	return NewOneshotChannelFunc[T](nil)
}

// NewOneshotChannelFunc creates an unsplit oneshot channel with a
// destructor for a value that is sent but never received.
func NewOneshotChannelFunc[T any](drop func(*T)) *OneshotChannel[T] {
	return &OneshotChannel[T]{drop: drop}
}

// Split resets the channel and returns fresh sending and receiving
// halves. A value sent through a previous split but never received is
// destroyed first. The caller must not split while a transfer is in
// flight.
func (c *OneshotChannel[T]) Split() (*SplitSender[T], *SplitReceiver[T]) {
	c.slot.destroy(c.drop)
	c.ready.Store(false)
	// Capacity one so an unpark that lands before the park is not lost.
	c.parker = make(chan struct{}, 1)
	return &SplitSender[T]{ch: c}, &SplitReceiver[T]{ch: c}
}

// Drop tears the channel down, destroying the stored value only if it
// was written but never read.
func (c *OneshotChannel[T]) Drop() {
	c.slot.destroy(c.drop)
}

// Send writes the value, publishes readiness and unparks the receiver.
// Consumes the sender; a second Send panics.
func (s *SplitSender[T]) Send(value T) {
	ch := s.ch
	if ch == nil {
		panic("syncx: send on used oneshot sender")
	}
	s.ch = nil

	ch.slot.set(value)
	// Release publishes the slot write before readiness.
	ch.ready.StoreRelease(true)
	select {
	case ch.parker <- struct{}{}:
	default:
	}
}

// IsReady reports whether a value has been sent. Advisory only; it is
// not a synchronization point.
func (r *SplitReceiver[T]) IsReady() bool {
	return r.ch.ready.LoadRelaxed()
}

// Receive blocks by parking until a value is ready, then takes it.
// Consumes the receiver; a second Receive panics.
func (r *SplitReceiver[T]) Receive() T {
	ch := r.ch
	if ch == nil {
		panic("syncx: receive on used oneshot receiver")
	}
	r.ch = nil

	// Acquire pairs with Send's release publish; parking tolerates
	// spurious unparks by re-checking.
	for !ch.ready.LoadAcquire() {
		<-ch.parker
	}
	return ch.slot.take()
}

// oneshotBlock is the state behind a shared-ownership oneshot pair.
type oneshotBlock[T any] struct {
	slot  cell[T]
	ready atomix.Bool
	inUse atomix.Bool
	drop  func(*T)
}

// OneshotSender is the sending half of a shared-ownership oneshot.
type OneshotSender[T any] struct {
	state *Arc[oneshotBlock[T]]
}

// OneshotReceiver is the receiving half of a shared-ownership oneshot.
// The receiver polls IsReady; Receive before readiness panics.
type OneshotReceiver[T any] struct {
	state    *Arc[oneshotBlock[T]]
	received bool
}

// NewOneshot creates a shared-ownership oneshot pair. Each half holds
// its own strong handle on the channel block, so send and receive work
// from independent lifetimes.
func NewOneshot[T any]() (*OneshotSender[T], *OneshotReceiver[T]) {
	return NewOneshotFunc[T](nil)
}

// NewOneshotFunc creates a shared-ownership oneshot pair with a
// destructor for a value that is sent but never received. The
// destructor runs at teardown, when the last half closes.
func NewOneshotFunc[T any](drop func(*T)) (*OneshotSender[T], *OneshotReceiver[T]) {
	arc := NewArcFunc(oneshotBlock[T]{drop: drop}, func(b *oneshotBlock[T]) {
		b.slot.destroy(b.drop)
	})
	return &OneshotSender[T]{state: arc}, &OneshotReceiver[T]{state: arc.Clone()}
}

// Send writes the value and publishes readiness.
// A second Send on the same channel panics: the in-use flag is claimed
// atomically on the first call.
func (s *OneshotSender[T]) Send(value T) {
	b := s.state.Get()
	if !b.inUse.CompareAndSwapAcqRel(false, true) {
		panic("syncx: send on oneshot twice")
	}
	b.slot.set(value)
	b.ready.StoreRelease(true)
}

// Close releases the sender's handle on the channel block. Idempotent.
func (s *OneshotSender[T]) Close() {
	if s.state == nil {
		return
	}
	s.state.Drop()
	s.state = nil
}

// IsReady reports whether a value has been sent. Advisory only; it is
// not a synchronization point.
func (r *OneshotReceiver[T]) IsReady() bool {
	return r.state.Get().ready.LoadRelaxed()
}

// Receive takes the value. Panics if no value is ready — polling first
// is the caller's responsibility — or if the value was already received.
func (r *OneshotReceiver[T]) Receive() T {
	if r.received {
		panic("syncx: receive on oneshot twice")
	}
	b := r.state.Get()
	if !b.ready.LoadAcquire() {
		panic("syncx: receive on oneshot before ready")
	}
	r.received = true
	return b.slot.take()
}

// Close releases the receiver's handle on the channel block. When both
// halves have closed, a sent-but-unreceived value is destroyed.
// Idempotent.
func (r *OneshotReceiver[T]) Close() {
	if r.state == nil {
		return
	}
	r.state.Drop()
	r.state = nil
}
