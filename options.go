// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfc

// Options configures queue creation and algorithm selection.
type Options struct {
	// Producer constraint (determines queue type)
	singleProducer bool

	// Liveness bound for spin-waits; 0 means unbounded
	spinLimit uint64

	// Capacity (rounds up to next power of 2)
	capacity int
}

// Builder creates queues with fluent configuration.
//
// Every queue in this package has a single consumer. The builder selects
// the producer side from the declared constraints.
//
// Example:
//
//	// SPSC queue (one producer goroutine)
//	q := lfc.BuildSPSC[Event](lfc.New(1024).SingleProducer())
//
//	// MPSC queue (any number of producers)
//	q := lfc.BuildMPSC[Request](lfc.New(4096))
//
//	// Fail fast if a claimed slot stays unpublished for 1M spins
//	q := lfc.Build[Record](lfc.New(8192).SpinLimit(1_000_000))
type Builder struct {
	opts Options
}

// New creates a queue builder with the given capacity.
//
// Capacity rounds up to the next power of 2.
// For example, capacity=4 results in actual capacity=4, capacity=1000 results
// in actual capacity=1024.
//
// Panics if capacity < 0.
func New(capacity int) *Builder {
	if capacity < 0 {
		panic("lfc: capacity must be >= 0")
	}
	return &Builder{opts: Options{capacity: capacity, spinLimit: DefaultSpinLimit}}
}

// SingleProducer declares that only one goroutine will offer.
// Selects the SPSC algorithm, which needs no producer arbitration.
func (b *Builder) SingleProducer() *Builder {
	b.opts.singleProducer = true
	return b
}

// SpinLimit sets how many spin iterations a stalled wait may take before
// the queue panics with *StarvationError. A limit of 0 disables the bound.
// Defaults to DefaultSpinLimit.
func (b *Builder) SpinLimit(n uint64) *Builder {
	b.opts.spinLimit = n
	return b
}

// Build creates a Queue[T] with automatic algorithm selection.
//
// Algorithm selection:
//
//	SingleProducer → SPSC (stamped ring, no arbitration)
//	Default        → MPSC (stamped ring, CAS-claimed slots)
//
// For type-safe returns with concrete types, use:
//   - BuildSPSC[T](b) → *SPSC[T]
//   - BuildMPSC[T](b) → *MPSC[T]
func Build[T any](b *Builder) Queue[T] {
	if b.opts.singleProducer {
		return BuildSPSC[T](b)
	}
	return BuildMPSC[T](b)
}

// BuildSPSC creates an SPSC queue with compile-time type safety.
// Panics if builder is not configured with SingleProducer().
func BuildSPSC[T any](b *Builder) *SPSC[T] {
	if !b.opts.singleProducer {
		panic("lfc: BuildSPSC requires SingleProducer()")
	}
	q := &SPSC[T]{}
	q.init(b.opts.capacity, b.opts.spinLimit)
	q.cachedConsumer = 1
	return q
}

// BuildMPSC creates an MPSC queue with compile-time type safety.
// Panics if builder is configured with SingleProducer().
func BuildMPSC[T any](b *Builder) *MPSC[T] {
	if b.opts.singleProducer {
		panic("lfc: BuildMPSC requires no SingleProducer()")
	}
	q := &MPSC[T]{}
	q.init(b.opts.capacity, b.opts.spinLimit)
	return q
}
