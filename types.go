// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfc

// Queue is the combined producer-consumer interface for a ring queue.
//
// Offer and Poll are non-blocking. Both return ErrWouldBlock when they
// cannot proceed (queue full or empty).
//
// The interface intentionally excludes length because accurate counts in
// lock-free algorithms require expensive cross-core synchronization.
// Track counts in application logic when needed.
//
// Example:
//
//	q := lfc.NewMPSC[int](1024)
//
//	// Offer
//	val := 42
//	if err := q.Offer(&val); err != nil {
//	    // Handle full queue
//	}
//
//	// Poll
//	elem, err := q.Poll()
//	if err == nil {
//	    fmt.Println(elem)
//	}
type Queue[T any] interface {
	Producer[T]
	Consumer[T]
	Cap() int
}

// Producer is the interface for offering elements.
type Producer[T any] interface {
	// Offer adds an element to the queue (non-blocking).
	// The element is copied into the queue's slot, so the original can be
	// modified after Offer returns.
	// Returns nil on success, ErrWouldBlock if the queue is full.
	//
	// Thread safety depends on queue type:
	//   - SPSC: single producer only
	//   - MPSC: multiple producers safe
	Offer(elem *T) error
}

// Consumer is the interface for taking elements.
//
// All queues in this package have a single consumer: Consumer methods must
// be called from one goroutine at a time.
type Consumer[T any] interface {
	// Poll removes and returns the oldest element.
	// Returns (zero-value, ErrWouldBlock) if the queue is empty.
	Poll() (T, error)

	// Peek returns a copy of the oldest element without removing it.
	// Returns (zero-value, ErrWouldBlock) if no element is ready.
	Peek() (T, error)

	// Drain removes up to limit elements, calling fn with each in order.
	// Returns the number of elements removed; 0 if the queue is empty.
	Drain(fn func(T), limit int) int
}
