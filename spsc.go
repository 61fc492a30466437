// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfc

// SPSC is a single-producer single-consumer bounded ring queue.
//
// Slots carry a stamp naming the sequence that owns the payload, so the
// consumer never reads a payload before the producer has published it.
// There is one producer, so claiming a slot needs no arbitration. The
// producer caches the consumer's cursor, and vice versa, reducing
// cross-core cache line traffic.
//
// Thread safety: Offer may be called from one goroutine at a time; Poll,
// Peek and Drain from one (other) goroutine at a time. Safety rests on
// each cursor having exactly one writer.
//
// Memory: O(capacity), one cache line per slot
type SPSC[T any] struct {
	ring[T]
	cachedConsumer uint64 // Producer's cached view of consumer
	_              padShort
}

// NewSPSC creates a new SPSC queue.
// Capacity rounds up to the next power of 2. Panics if capacity < 0.
func NewSPSC[T any](capacity int) *SPSC[T] {
	return BuildSPSC[T](New(capacity).SingleProducer())
}

// Offer adds an element to the queue (producer only).
// Returns ErrWouldBlock if the queue is full.
//
// The slot is normally empty when its sequence comes round; if the consumer
// has not yet cleared it Offer spins. Panics with *StarvationError if the
// spin limit is exceeded.
func (q *SPSC[T]) Offer(elem *T) error {
	p := q.producer.LoadRelaxed()
	if p >= q.cachedConsumer+q.capacity {
		q.cachedConsumer = q.consumer.Load()
		if p >= q.cachedConsumer+q.capacity {
			return ErrWouldBlock
		}
	}

	s := &q.slots[p&q.mask]
	q.awaitEmpty(s, p, "offer")
	s.value = *elem
	q.producer.Store(p + 1)
	s.stamp.StoreRelease(p)
	return nil
}
