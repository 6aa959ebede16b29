// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncx

import (
	"fmt"
	"math"
	"os"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// refCountSentinel marks allocRefs as locked for the exclusive-access
// check in GetMut. Downgrade spins while it observes the sentinel.
const refCountSentinel = math.MaxInt64

// maxRefCount is the clone limit. Exceeding half the representable range
// means the counting invariant is already unrecoverable.
const maxRefCount = math.MaxInt64 / 2

// arcInner is the shared allocation behind a family of Arc and Weak
// handles.
//
// Count invariants:
//
//   - dataRefs is the number of strong handles. The payload is destroyed
//     exactly when dataRefs hits zero.
//   - allocRefs is the number of weak handles, plus one while any strong
//     handle exists. The allocation is released exactly when allocRefs
//     hits zero.
type arcInner[T any] struct {
	dataRefs  atomix.Int64
	allocRefs atomix.Int64
	data      cell[T]
	drop      func(*T)
}

// Arc is a strong handle to a shared value. Strong handles keep the
// payload alive.
//
// Each handle is owned by one goroutine at a time and released exactly
// once with Drop. Distinct handles to the same value may be used
// concurrently.
type Arc[T any] struct {
	inner *arcInner[T]
}

// Weak is a weak handle: it keeps the allocation alive but not the
// payload, and becomes non-upgradable once all strong handles are gone.
type Weak[T any] struct {
	inner *arcInner[T]
}

// NewArc creates a shared value with one strong handle.
func NewArc[T any](value T) *Arc[T] {
	return NewArcFunc(value, nil)
}

// NewArcFunc creates a shared value with one strong handle and a
// destructor that runs exactly once, when the last strong handle drops.
func NewArcFunc[T any](value T, drop func(*T)) *Arc[T] {
	inner := &arcInner[T]{drop: drop}
	inner.dataRefs.Store(1)
	inner.allocRefs.Store(1)
	inner.data.set(value)
	return &Arc[T]{inner: inner}
}

// abort terminates the process. Reference-count overflow is corruption,
// not a reportable error; returning would silently break the counting
// invariant.
func abort(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(2)
}

// Get returns a shared view of the value. Valid while the handle is
// live; the caller must not mutate through it concurrently with other
// handles.
func (a *Arc[T]) Get() *T {
	return a.inner.data.get()
}

// Clone creates another strong handle to the same value.
func (a *Arc[T]) Clone() *Arc[T] {
	if a.inner.dataRefs.Add(1)-1 > maxRefCount {
		abort("syncx: Arc strong count overflow")
	}
	return &Arc[T]{inner: a.inner}
}

// Downgrade creates a weak handle to the same allocation.
func (a *Arc[T]) Downgrade() *Weak[T] {
	sw := spin.Wait{}
	for {
		n := a.inner.allocRefs.LoadRelaxed()
		if n == refCountSentinel {
			// GetMut holds the count locked; back off until released.
			sw.Once()
			continue
		}
		if n > maxRefCount {
			abort("syncx: Arc weak count overflow")
		}
		// Acquire pairs with GetMut's release restore of allocRefs, so
		// the uniqueness decision there is ordered before this handle
		// exists.
		if a.inner.allocRefs.CompareAndSwapAcqRel(n, n+1) {
			return &Weak[T]{inner: a.inner}
		}
		sw.Once()
	}
}

// GetMut returns an exclusive view of the value, or false when other
// handles exist. Exclusive means exactly one strong handle and zero weak
// handles at call time.
func (a *Arc[T]) GetMut() (*T, bool) {
	// Lock allocRefs at 1 -> sentinel. Only succeeds with no weak
	// handles; holding the sentinel keeps Downgrade from racing the
	// uniqueness check below.
	if !a.inner.allocRefs.CompareAndSwapAcqRel(1, refCountSentinel) {
		return nil, false
	}
	unique := a.inner.dataRefs.Load() == 1
	a.inner.allocRefs.StoreRelease(1)
	if !unique {
		return nil, false
	}
	// The AcqRel decrements in Drop order every other handle's last
	// access before the load above observed 1, so the exclusive view
	// cannot race a dying handle.
	return a.inner.data.get(), true
}

// Drop releases the strong handle. When the last strong handle drops,
// the payload is destroyed and the implicit weak unit shared by all
// strong handles is released. The handle must not be used afterwards.
func (a *Arc[T]) Drop() {
	inner := a.inner
	a.inner = nil
	// AcqRel: release publishes this handle's accesses; acquire makes
	// every other handle's accesses visible to the destructor below.
	if inner.dataRefs.AddAcqRel(-1) == 0 {
		inner.data.destroy(inner.drop)
		w := Weak[T]{inner: inner}
		w.Drop()
	}
}

// Upgrade attempts to create a strong handle. Returns false once the
// strong count has reached zero; a true zero is final, so no further
// synchronization is needed.
func (w *Weak[T]) Upgrade() (*Arc[T], bool) {
	for {
		n := w.inner.dataRefs.LoadRelaxed()
		if n == 0 {
			return nil, false
		}
		if n > maxRefCount {
			abort("syncx: Arc strong count overflow")
		}
		if w.inner.dataRefs.CompareAndSwapRelaxed(n, n+1) {
			return &Arc[T]{inner: w.inner}, true
		}
	}
}

// Clone creates another weak handle to the same allocation.
func (w *Weak[T]) Clone() *Weak[T] {
	if w.inner.allocRefs.Add(1)-1 > maxRefCount {
		abort("syncx: Arc weak count overflow")
	}
	return &Weak[T]{inner: w.inner}
}

// Drop releases the weak handle. When the last weak unit drops, the
// allocation is released. The handle must not be used afterwards.
func (w *Weak[T]) Drop() {
	inner := w.inner
	w.inner = nil
	if inner.allocRefs.AddAcqRel(-1) == 0 {
		// Last reference of any kind; detach the destructor and let the
		// allocation be collected.
		inner.drop = nil
	}
}
