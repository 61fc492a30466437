// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package lfc provides lock-free communication primitives for staging data
// between goroutines: bounded ring queues with a single consumer and the
// padded cursors they are built from.
//
// The package offers two queue variants:
//
//   - SPSC: Single-Producer Single-Consumer
//   - MPSC: Multi-Producer Single-Consumer
//
// Related primitives live in sub-packages:
//
//   - [code.hybscloud.com/lfc/buffer]: fixed-capacity byte buffer with
//     big-endian and volatile (ordered) accessors
//   - [code.hybscloud.com/lfc/mrsw]: multi-reader single-writer
//     double-buffered map with event replay
//
// # Quick Start
//
// Direct constructors (recommended for most cases):
//
//	q := lfc.NewSPSC[Event](1024)
//	q := lfc.NewMPSC[*Request](4096)
//
// Builder API selects the algorithm from constraints:
//
//	q := lfc.Build[Event](lfc.New(1024).SingleProducer())  // → SPSC
//	q := lfc.Build[Event](lfc.New(1024))                   // → MPSC
//
// # Basic Usage
//
//	q := lfc.NewMPSC[int](1024)
//
//	// Producers (any goroutine)
//	v := 42
//	if err := q.Offer(&v); lfc.IsWouldBlock(err) {
//	    // Queue full - retry later or drop
//	}
//
//	// Consumer (one goroutine)
//	elem, err := q.Poll()
//	if lfc.IsWouldBlock(err) {
//	    // Queue empty - nothing to do
//	}
//
//	// Batch consumption
//	n := q.Drain(func(v int) { sum += v }, 256)
//
// # Slot Protocol
//
// Both queues share one ring layout. Each slot holds a stamp and a payload.
// A stamp of 0 marks an empty slot; otherwise it names the sequence whose
// payload the slot holds. Producer and consumer cursors start at 1 and only
// grow.
//
//	Offer: claim sequence p → write payload → release-store stamp = p
//	Poll:  acquire-load stamp == c → take payload → release-store stamp = 0
//
// SPSC claims sequences by position alone. MPSC producers race with
// compare-and-swap on the producer cursor; only the winner touches the slot.
// The queue is full when producer >= consumer + capacity and empty when
// producer <= consumer.
//
// # Ordering
//
// Elements are delivered exactly once, in the order their sequences were
// claimed. For MPSC this is the order in which CAS operations succeeded,
// which need not match the order producers called Offer.
//
// # Liveness
//
// Operations never block indefinitely. Where the protocol requires waiting
// (a claimed slot whose payload is still being written, a slot the consumer
// has not yet released) the caller spins with [spin.Wait], yielding the
// processor. The wait is bounded by a spin limit, DefaultSpinLimit unless
// configured with Builder.SpinLimit. Exceeding it means a participant
// crashed mid-protocol or an invariant was broken, and the queue panics
// with a *StarvationError. That panic is a fail-fast guard, not an error to
// recover from. Observing a stamp from a different round panics with
// ErrProtocolViolation.
//
// # Error Handling
//
// Offer, Poll and Peek return ErrWouldBlock when the queue is full or empty.
// This is a control flow signal, not a failure:
//
//	backoff := iox.Backoff{}
//	for {
//	    err := q.Offer(&item)
//	    if err == nil {
//	        break
//	    }
//	    if !lfc.IsWouldBlock(err) {
//	        return err
//	    }
//	    backoff.Wait()
//	}
//
// # Thread Safety
//
// SPSC: Offer from one goroutine, Poll/Peek/Drain from one goroutine.
// MPSC: Offer from any goroutine, Poll/Peek/Drain from one goroutine.
// Violating these constraints corrupts the queue; no internal lock guards
// against it.
//
// # Race Detection
//
// Go's race detector does not model the acquire-release orderings that
// atomix provides, so the cross-goroutine payload hand-off is reported as a
// race. Concurrent tests check RaceEnabled and skip.
//
// # Dependencies
//
// This package uses:
//   - [code.hybscloud.com/atomix] for atomic operations with explicit memory ordering
//   - [code.hybscloud.com/spin] for spin-wait primitives
//   - [code.hybscloud.com/iox] for semantic errors (ErrWouldBlock)
package lfc
