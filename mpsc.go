// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfc

import (
	"code.hybscloud.com/lfc/internal/stall"
	"code.hybscloud.com/spin"
)

// MPSC is a CAS-based multi-producer single-consumer bounded ring queue.
//
// Producers race on the shared producer cursor with compare-and-swap; the
// winner of sequence p owns slot p&mask, writes the payload and publishes
// the stamp. The consumer side is identical to SPSC. Elements are
// delivered in the order the CAS operations succeeded, which across racing
// producers need not match the order Offer was called.
//
// Thread safety: Offer is safe from any number of goroutines; Poll, Peek
// and Drain from one goroutine at a time.
//
// Memory: O(capacity), one cache line per slot
type MPSC[T any] struct {
	ring[T]
}

// NewMPSC creates a new MPSC queue.
// Capacity rounds up to the next power of 2. Panics if capacity < 0.
func NewMPSC[T any](capacity int) *MPSC[T] {
	return BuildMPSC[T](New(capacity))
}

// Offer adds an element to the queue (multiple producers safe).
// Returns ErrWouldBlock if the queue is full.
//
// Losing a CAS race is progress by another producer and is retried freely.
// Waiting on a claimable sequence whose slot the consumer has not cleared
// counts against the spin limit; Offer panics with *StarvationError once
// it is exceeded.
func (q *MPSC[T]) Offer(elem *T) error {
	sw := spin.Wait{}
	var g stall.Guard
	var last uint64
	for {
		p := q.producer.Load()
		if q.full(p) {
			return ErrWouldBlock
		}
		if p != last {
			g = stall.New(q.spinLimit)
			last = p
		}

		s := &q.slots[p&q.mask]
		stamp := s.stamp.LoadAcquire()
		if stamp == 0 {
			if q.producer.CompareAndSwap(p, p+1) {
				s.value = *elem
				s.stamp.StoreRelease(p)
				return nil
			}
			sw.Once()
			continue
		}
		if !g.Pause() {
			panic(&StarvationError{Op: "offer", Cursor: p, Producer: p, Stamp: stamp, Spins: g.Spins()})
		}
	}
}
