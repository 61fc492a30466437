// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfc

import (
	"fmt"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/lfc/internal/pow2"
	"code.hybscloud.com/lfc/internal/stall"
)

// ring holds the slot array, both cursors and the single-consumer side
// shared by SPSC and MPSC.
//
// Slot protocol:
//   - stamp == 0: the slot is empty and may be claimed by the producer
//     holding sequence s with s&mask == index.
//   - stamp == s: the payload for sequence s is published. The consumer
//     reads it only after observing the stamp with an acquire load.
//
// The producer owns a slot from its claim until the release store of the
// stamp. The consumer owns it from validating the stamp until it clears
// the stamp back to 0. Cursors start at 1 so that 0 is never a live stamp.
type ring[T any] struct {
	producer       Sequence
	consumer       Sequence
	cachedProducer uint64 // Consumer's cached view of producer
	_              padShort
	slots          []slot[T]
	mask           uint64
	capacity       uint64
	spinLimit      uint64
}

type slot[T any] struct {
	stamp atomix.Uint64
	value T
	_     padShort
}

func (r *ring[T]) init(capacity int, spinLimit uint64) {
	if capacity < 0 {
		panic("lfc: capacity must be >= 0")
	}
	n := uint64(pow2.Round(capacity))
	r.slots = make([]slot[T], n)
	r.mask = n - 1
	r.capacity = n
	r.spinLimit = spinLimit
	r.producer.StoreRelaxed(1)
	r.consumer.StoreRelaxed(1)
	r.cachedProducer = 1
}

// ready returns the producer cursor if sequence c has been claimed,
// or 0 if the queue is empty.
func (r *ring[T]) ready(c uint64) uint64 {
	if c < r.cachedProducer {
		return r.cachedProducer
	}
	r.cachedProducer = r.producer.Load()
	if c < r.cachedProducer {
		return r.cachedProducer
	}
	return 0
}

// Poll removes and returns the oldest element (consumer only).
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
//
// If the oldest slot has been claimed but not yet published, Poll spins
// until it is. Panics with *StarvationError if the spin limit is exceeded.
func (r *ring[T]) Poll() (T, error) {
	var zero T
	c := r.consumer.LoadRelaxed()
	p := r.ready(c)
	if p == 0 {
		return zero, ErrWouldBlock
	}

	s := &r.slots[c&r.mask]
	r.awaitStamp(s, c, p, "poll")
	elem := s.value
	s.value = zero
	s.stamp.StoreRelease(0)
	r.consumer.Store(c + 1)
	return elem, nil
}

// Peek returns a copy of the oldest element without removing it
// (consumer only). Returns (zero-value, ErrWouldBlock) if the queue is
// empty or the oldest slot is not yet published. Peek never spins.
func (r *ring[T]) Peek() (T, error) {
	var zero T
	c := r.consumer.LoadRelaxed()
	if r.ready(c) == 0 {
		return zero, ErrWouldBlock
	}

	s := &r.slots[c&r.mask]
	if s.stamp.LoadAcquire() != c {
		return zero, ErrWouldBlock
	}
	return s.value, nil
}

// Drain removes up to limit elements and calls fn with each in FIFO order
// (consumer only). Returns the number of elements removed.
//
// The batch is sized from one snapshot of the producer cursor. Each slot
// in the batch is awaited in turn, so a producer still writing a claimed
// slot delays Drain but does not shorten the batch. The consumer cursor
// advances once, after the batch; producers see the freed capacity all at
// once. If fn panics, the elements already handed to fn are consumed.
func (r *ring[T]) Drain(fn func(T), limit int) int {
	if limit < 1 {
		return 0
	}
	c := r.consumer.LoadRelaxed()
	p := r.ready(c)
	if p == 0 {
		return 0
	}
	n := min(p-c, uint64(limit))

	var done uint64
	defer func() {
		r.consumer.Store(c + done)
	}()

	var zero T
	for done < n {
		seq := c + done
		s := &r.slots[seq&r.mask]
		r.awaitStamp(s, seq, p, "drain")
		elem := s.value
		s.value = zero
		s.stamp.StoreRelease(0)
		done++
		fn(elem)
	}
	return int(n)
}

// Cap returns the queue capacity.
func (r *ring[T]) Cap() int {
	return int(r.capacity)
}

// full reports whether sequence p cannot be claimed yet.
func (r *ring[T]) full(p uint64) bool {
	return p >= r.consumer.Load()+r.capacity
}

// awaitStamp spins until slot s publishes sequence seq.
func (r *ring[T]) awaitStamp(s *slot[T], seq, producer uint64, op string) {
	stamp := s.stamp.LoadAcquire()
	if stamp == seq {
		return
	}
	g := stall.New(r.spinLimit)
	for stamp != seq {
		if stamp != 0 {
			panic(fmt.Errorf("%w: %s expected stamp %d, found %d", ErrProtocolViolation, op, seq, stamp))
		}
		if !g.Pause() {
			panic(&StarvationError{Op: op, Cursor: seq, Producer: producer, Stamp: stamp, Spins: g.Spins()})
		}
		stamp = s.stamp.LoadAcquire()
	}
}

// awaitEmpty spins until slot s has been released by the consumer.
func (r *ring[T]) awaitEmpty(s *slot[T], seq uint64, op string) {
	stamp := s.stamp.LoadAcquire()
	if stamp == 0 {
		return
	}
	g := stall.New(r.spinLimit)
	for stamp != 0 {
		if !g.Pause() {
			panic(&StarvationError{Op: op, Cursor: seq, Producer: seq, Stamp: stamp, Spins: g.Spins()})
		}
		stamp = s.stamp.LoadAcquire()
	}
}
