// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package buffer provides a fixed-capacity byte buffer with big-endian
// accessors and volatile (ordered) variants.
//
// Buffer is raw storage addressed by byte offset. It does not arbitrate
// which goroutine writes where; that discipline belongs to its clients
// (queues, maps, record layouts laid over the buffer).
//
// # Volatile Access
//
// Volatile accessors return the same values as their ordinary counterparts.
// They additionally order memory:
//
//   - PutXxxVolatile: writes before the call are visible to a goroutine
//     that observes the stored value through a volatile load.
//   - XxxVolatile: reads after the call observe writes published before
//     the value that was loaded.
//
// Naturally aligned 32-bit and 64-bit offsets, and 16-bit values that fit
// inside one aligned 32-bit word, are accessed with single-copy atomic word
// operations and cannot tear. Any other offset is accessed with ordinary
// loads and stores paired with an acquire or release barrier, which orders
// the access but does not make it atomic.
//
// # Offsets
//
// Offsets are caller-supplied. The caller guarantees pos+width <= Capacity().
// An out-of-range offset panics.
//
// Example:
//
//	b := buffer.New(4096)
//
//	// Writer: fill the record, then publish its length
//	b.PutUint64(16, term)
//	b.WriteBytes(24, payload)
//	b.PutUint32Volatile(8, uint32(len(payload)))
//
//	// Reader: observe the length, then read the record
//	if n := b.Uint32Volatile(8); n != 0 {
//	    term := b.Uint64(16)
//	    body := b.Bytes(24, int(n))
//	}
package buffer

import (
	"encoding/binary"
	"unsafe"

	"code.hybscloud.com/lfc/internal/pow2"
)

// Direct is raw offset-addressed storage with big-endian integer accessors.
type Direct interface {
	// Capacity returns the buffer size in bytes (a power of 2).
	Capacity() int
	// MaxMessageSize returns the largest record a client should lay out
	// in the buffer: Capacity() / 8.
	MaxMessageSize() int

	Uint16(pos int) uint16
	PutUint16(pos int, v uint16)
	Int16(pos int) int16
	PutInt16(pos int, v int16)
	Uint32(pos int) uint32
	PutUint32(pos int, v uint32)
	Int32(pos int) int32
	PutInt32(pos int, v int32)
	Uint64(pos int) uint64
	PutUint64(pos int, v uint64)
	Int64(pos int) int64
	PutInt64(pos int, v int64)

	// Bytes returns the n bytes at pos. The slice aliases the buffer.
	Bytes(pos, n int) []byte
	// ReadBytes copies len(dst) bytes at pos into dst.
	ReadBytes(pos int, dst []byte) int
	// WriteBytes copies src into the buffer at pos.
	WriteBytes(pos int, src []byte)
	// SetBytes fills n bytes at pos with v.
	SetBytes(pos, n int, v byte)
}

// Volatile is a Direct buffer with ordered accessors.
type Volatile interface {
	Direct

	Uint16Volatile(pos int) uint16
	PutUint16Volatile(pos int, v uint16)
	Int16Volatile(pos int) int16
	PutInt16Volatile(pos int, v int16)
	Uint32Volatile(pos int) uint32
	PutUint32Volatile(pos int, v uint32)
	Int32Volatile(pos int) int32
	PutInt32Volatile(pos int, v int32)
	Uint64Volatile(pos int) uint64
	PutUint64Volatile(pos int, v uint64)
	Int64Volatile(pos int) int64
	PutInt64Volatile(pos int, v int64)
}

var (
	_ Direct   = (*Buffer)(nil)
	_ Volatile = (*Buffer)(nil)
)

// Buffer is a fixed-capacity byte buffer.
//
// Storage is 8-byte aligned and zero-filled. The buffer never grows.
type Buffer struct {
	data           []byte
	capacity       int
	maxMessageSize int
}

// New creates a buffer of at least size bytes.
// Capacity rounds up to the next power of 2. Panics if size is negative.
func New(size int) *Buffer {
	n := pow2.Round(size)
	// Backed by words so that aligned offsets are atomically addressable.
	words := make([]uint64, (n+7)/8)
	data := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), n)
	return &Buffer{
		data:           data,
		capacity:       n,
		maxMessageSize: n >> 3,
	}
}

// Capacity returns the buffer size in bytes.
func (b *Buffer) Capacity() int {
	return b.capacity
}

// MaxMessageSize returns Capacity() / 8.
func (b *Buffer) MaxMessageSize() int {
	return b.maxMessageSize
}

// Uint16 reads a big-endian uint16 at pos.
func (b *Buffer) Uint16(pos int) uint16 {
	return binary.BigEndian.Uint16(b.data[pos : pos+2])
}

// PutUint16 writes a big-endian uint16 at pos.
func (b *Buffer) PutUint16(pos int, v uint16) {
	binary.BigEndian.PutUint16(b.data[pos:pos+2], v)
}

// Int16 reads a big-endian int16 at pos.
func (b *Buffer) Int16(pos int) int16 {
	return int16(b.Uint16(pos))
}

// PutInt16 writes a big-endian int16 at pos.
func (b *Buffer) PutInt16(pos int, v int16) {
	b.PutUint16(pos, uint16(v))
}

// Uint32 reads a big-endian uint32 at pos.
func (b *Buffer) Uint32(pos int) uint32 {
	return binary.BigEndian.Uint32(b.data[pos : pos+4])
}

// PutUint32 writes a big-endian uint32 at pos.
func (b *Buffer) PutUint32(pos int, v uint32) {
	binary.BigEndian.PutUint32(b.data[pos:pos+4], v)
}

// Int32 reads a big-endian int32 at pos.
func (b *Buffer) Int32(pos int) int32 {
	return int32(b.Uint32(pos))
}

// PutInt32 writes a big-endian int32 at pos.
func (b *Buffer) PutInt32(pos int, v int32) {
	b.PutUint32(pos, uint32(v))
}

// Uint64 reads a big-endian uint64 at pos.
func (b *Buffer) Uint64(pos int) uint64 {
	return binary.BigEndian.Uint64(b.data[pos : pos+8])
}

// PutUint64 writes a big-endian uint64 at pos.
func (b *Buffer) PutUint64(pos int, v uint64) {
	binary.BigEndian.PutUint64(b.data[pos:pos+8], v)
}

// Int64 reads a big-endian int64 at pos.
func (b *Buffer) Int64(pos int) int64 {
	return int64(b.Uint64(pos))
}

// PutInt64 writes a big-endian int64 at pos.
func (b *Buffer) PutInt64(pos int, v int64) {
	b.PutUint64(pos, uint64(v))
}

// Bytes returns the n bytes at pos. The returned slice aliases the buffer
// and has no spare capacity.
func (b *Buffer) Bytes(pos, n int) []byte {
	return b.data[pos : pos+n : pos+n]
}

// ReadBytes copies len(dst) bytes at pos into dst and returns len(dst).
func (b *Buffer) ReadBytes(pos int, dst []byte) int {
	return copy(dst, b.data[pos:pos+len(dst)])
}

// WriteBytes copies src into the buffer at pos.
func (b *Buffer) WriteBytes(pos int, src []byte) {
	copy(b.data[pos:pos+len(src)], src)
}

// SetBytes fills n bytes at pos with v.
func (b *Buffer) SetBytes(pos, n int, v byte) {
	s := b.data[pos : pos+n]
	for i := range s {
		s[i] = v
	}
}
