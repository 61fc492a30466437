// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfc

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the operation cannot proceed immediately.
//
// For Offer: the queue is full (backpressure)
// For Poll and Peek: the queue is empty (no data available)
//
// ErrWouldBlock is a control flow signal, not a failure. The caller decides
// whether to retry (with backoff or yield) or drop.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
//
// Example:
//
//	backoff := iox.Backoff{}
//	for {
//	    err := q.Offer(&item)
//	    if err == nil {
//	        backoff.Reset()
//	        break
//	    }
//	    if lfc.IsWouldBlock(err) {
//	        backoff.Wait()
//	        continue
//	    }
//	    return err
//	}
var ErrWouldBlock = iox.ErrWouldBlock

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}

// DefaultSpinLimit is the number of spin iterations after which a stalled
// wait is declared a starvation failure.
const DefaultSpinLimit = 1_000_000_000

var (
	// ErrStarvation is wrapped by every StarvationError.
	ErrStarvation = errors.New("lfc: spin limit exceeded")

	// ErrProtocolViolation reports a slot holding the stamp of a sequence
	// other than the one the waiter owns. It is raised as a panic.
	ErrProtocolViolation = errors.New("lfc: slot protocol violation")
)

// StarvationError is the panic value raised when a spin-wait exceeds its
// limit: a claimed slot never became visible, a slot never emptied, or a
// writer waited forever for readers to leave.
//
// It indicates a crashed participant or a broken invariant, never a
// transient condition. Callers must not recover and retry.
type StarvationError struct {
	Op       string // operation that stalled
	Cursor   uint64 // sequence the waiter expected
	Producer uint64 // producer cursor observed when the wait began
	Stamp    uint64 // last stamp (or reader count) observed
	Spins    uint64
}

func (e *StarvationError) Error() string {
	return fmt.Sprintf("lfc: %s stalled after %d spins (cursor=%d producer=%d stamp=%d)",
		e.Op, e.Spins, e.Cursor, e.Producer, e.Stamp)
}

func (e *StarvationError) Unwrap() error {
	return ErrStarvation
}
