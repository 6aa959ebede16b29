// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package futex provides a futex-style wait/wake service keyed on atomic
// words.
//
// The service emulates the kernel interface in user space: waiters hash
// the word's address into a fixed set of buckets, each holding a FIFO
// list of parked waiters. A waiter parks on its own channel; wakers
// unpark by closing it.
//
// Contract:
//
//   - Wait blocks the caller while the word still holds the expected
//     value, and returns once a wake targets the word or the value is
//     observed to differ. Returns may be spurious; callers re-check
//     their condition in a loop.
//   - WakeOne unparks at most one waiter on the word.
//   - WakeAll unparks every waiter currently parked on the word.
//
// Lost-wakeup freedom: Wait re-reads the word under the bucket lock
// before parking, and wakers take the same bucket lock after mutating
// the word. A value change that races with parking is therefore always
// observed either by the re-read or by the wake.
package futex

import (
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

const numBuckets = 512

var buckets [numBuckets]bucket

// waiter is one parked caller. Single-use: unparked by closing done.
type waiter struct {
	key  uintptr
	done chan struct{}
	next *waiter
}

// bucket is a spin-locked FIFO list of waiters whose keys hash here.
type bucket struct {
	mu   spin.Lock
	head *waiter
	tail *waiter
	_    [40]byte // Pad to cache line
}

func (b *bucket) push(w *waiter) {
	if b.tail == nil {
		b.head = w
	} else {
		b.tail.next = w
	}
	b.tail = w
}

// popMatch removes and returns the oldest waiter with the given key,
// or nil if none is parked here.
func (b *bucket) popMatch(key uintptr) *waiter {
	var prev *waiter
	for w := b.head; w != nil; prev, w = w, w.next {
		if w.key != key {
			continue
		}
		if prev == nil {
			b.head = w.next
		} else {
			prev.next = w.next
		}
		if b.tail == w {
			b.tail = prev
		}
		w.next = nil
		return w
	}
	return nil
}

// hash mixes the word address into a bucket index.
// Thomas Wang's 64-bit integer hash.
func hash(addr uintptr) uint64 {
	h := uint64(addr)
	h = (^h) + (h << 21)
	h = h ^ (h >> 24)
	h = h + (h << 3) + (h << 8)
	h = h ^ (h >> 14)
	h = h + (h << 2) + (h << 4)
	h = h ^ (h >> 28)
	h = h + (h << 31)
	return h
}

func bucketOf(key uintptr) *bucket {
	return &buckets[hash(key)%numBuckets]
}

// Wait blocks the caller while *w == expected.
//
// The caller must treat returns as possibly spurious and re-check its
// condition.
func Wait(w *atomix.Int64, expected int64) {
	key := uintptr(unsafe.Pointer(w))
	b := bucketOf(key)

	b.mu.Lock()
	// Re-check under the bucket lock. A waker mutates the word before
	// taking this lock, so a stale expected value is caught here.
	if w.Load() != expected {
		b.mu.Unlock()
		return
	}
	node := &waiter{key: key, done: make(chan struct{})}
	b.push(node)
	b.mu.Unlock()

	<-node.done
}

// WakeOne unparks at most one waiter parked on w.
func WakeOne(w *atomix.Int64) {
	key := uintptr(unsafe.Pointer(w))
	b := bucketOf(key)

	b.mu.Lock()
	node := b.popMatch(key)
	b.mu.Unlock()

	if node != nil {
		close(node.done)
	}
}

// WakeAll unparks every waiter parked on w.
func WakeAll(w *atomix.Int64) {
	key := uintptr(unsafe.Pointer(w))
	b := bucketOf(key)

	b.mu.Lock()
	var woken *waiter
	for {
		node := b.popMatch(key)
		if node == nil {
			break
		}
		node.next = woken
		woken = node
	}
	b.mu.Unlock()

	for n := woken; n != nil; n = n.next {
		close(n.done)
	}
}
