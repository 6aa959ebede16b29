// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncx

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the operation cannot proceed immediately.
//
// Returned by the non-blocking try-variants: TryLock on SpinLock and
// Mutex, TryRead/TryWrite on RwLock, and TryRecv on Receiver.
//
// ErrWouldBlock is a control flow signal, not a failure. The caller should
// retry later (with backoff or yield), or fall back to the blocking
// operation, rather than propagating the error.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

// ErrClosed indicates a channel endpoint has no live peer.
//
// ErrClosed is never returned directly; it is matched via errors.Is on
// [ErrNoReceiver] and [ErrNoSender]. Closure is an expected end-of-life
// state, not a fault.
var ErrClosed = errors.New("syncx: channel closed")

// ErrNoReceiver is returned by Send when every receiver has closed.
// Matches [ErrClosed].
var ErrNoReceiver = fmt.Errorf("%w: no receiver", ErrClosed)

// ErrNoSender is returned by Recv when every sender has closed and the
// queue has been drained. Matches [ErrClosed].
var ErrNoSender = fmt.Errorf("%w: no sender", ErrClosed)

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsClosed reports whether err indicates channel closure
// (ErrNoReceiver or ErrNoSender).
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Closure sentinels count as semantic; everything else delegates to
// [iox.IsSemantic].
func IsSemantic(err error) bool {
	return IsClosed(err) || iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil, ErrWouldBlock, and the closure sentinels.
func IsNonFailure(err error) bool {
	return err == nil || IsClosed(err) || iox.IsNonFailure(err)
}
