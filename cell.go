// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncx

// cell is a maybe-initialized storage slot. The validity flag gates both
// access and destruction: the value is readable only while full, and is
// destroyed at most once.
//
// cell performs no synchronization of its own. Callers serialize access
// externally (Arc through its reference counts, oneshot through its
// readiness protocol).
type cell[T any] struct {
	value T
	full  bool
}

func (c *cell[T]) set(v T) {
	c.value = v
	c.full = true
}

func (c *cell[T]) get() *T {
	return &c.value
}

// take moves the value out, leaving the cell empty.
func (c *cell[T]) take() T {
	v := c.value
	var zero T
	c.value = zero
	c.full = false
	return v
}

// destroy runs drop (if any) on a full cell and empties it.
// No-op on an empty cell, so destruction cannot double-run.
func (c *cell[T]) destroy(drop func(*T)) {
	if !c.full {
		return
	}
	if drop != nil {
		drop(&c.value)
	}
	var zero T
	c.value = zero
	c.full = false
}
