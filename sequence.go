// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfc

import "code.hybscloud.com/atomix"

// Sequence is a cache-line padded monotonic cursor.
//
// Ring queues keep the producer and consumer cursors in separate Sequences
// so that a store by one side does not invalidate the cache line the other
// side is spinning on.
//
// The zero value is a cursor at 0. Sequence must not be copied after use.
type Sequence struct {
	_     pad
	value atomix.Uint64
	_     padShort
}

// NewSequence creates a cursor starting at initial.
func NewSequence(initial uint64) *Sequence {
	s := &Sequence{}
	s.value.StoreRelaxed(initial)
	return s
}

// Load returns the cursor with acquire ordering.
func (s *Sequence) Load() uint64 {
	return s.value.LoadAcquire()
}

// LoadRelaxed returns the cursor without ordering.
// Only the cursor's owner may rely on the result being current.
func (s *Sequence) LoadRelaxed() uint64 {
	return s.value.LoadRelaxed()
}

// Store sets the cursor with release ordering.
func (s *Sequence) Store(v uint64) {
	s.value.StoreRelease(v)
}

// StoreRelaxed sets the cursor without ordering.
func (s *Sequence) StoreRelaxed(v uint64) {
	s.value.StoreRelaxed(v)
}

// CompareAndSwap sets the cursor to new if it equals old.
func (s *Sequence) CompareAndSwap(old, new uint64) bool {
	return s.value.CompareAndSwapAcqRel(old, new)
}

// Add adds delta and returns the new value.
func (s *Sequence) Add(delta uint64) uint64 {
	return s.value.AddAcqRel(delta)
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill cache line after 8-byte field.
type padShort [64 - 8]byte
