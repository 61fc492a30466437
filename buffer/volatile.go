// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package buffer

import (
	"encoding/binary"
	"math/bits"
	"unsafe"

	"code.hybscloud.com/atomix"
)

// hostBigEndian reports whether native word layout matches big-endian.
var hostBigEndian = binary.NativeEndian.Uint16([]byte{0x01, 0x02}) == 0x0102

// wire64 converts between a value and the native word whose memory bytes
// hold its big-endian encoding. The conversion is its own inverse.
func wire64(v uint64) uint64 {
	if hostBigEndian {
		return v
	}
	return bits.ReverseBytes64(v)
}

func wire32(v uint32) uint32 {
	if hostBigEndian {
		return v
	}
	return bits.ReverseBytes32(v)
}

// word64 returns the aligned word at pos. pos must be a multiple of 8.
func (b *Buffer) word64(pos int) *uint64 {
	_ = b.data[pos+7]
	return (*uint64)(unsafe.Pointer(&b.data[pos]))
}

// word32 returns the aligned word at pos. pos must be a multiple of 4.
func (b *Buffer) word32(pos int) *uint32 {
	_ = b.data[pos+3]
	return (*uint32)(unsafe.Pointer(&b.data[pos]))
}

// word32Fits reports whether the aligned 32-bit word at base lies inside
// the buffer.
func (b *Buffer) word32Fits(base int) bool {
	return base+4 <= b.capacity
}

// Uint64Volatile reads a big-endian uint64 at pos with acquire ordering.
func (b *Buffer) Uint64Volatile(pos int) uint64 {
	if pos&7 == 0 {
		return wire64(atomix.Acquire.LoadUint64(b.word64(pos)))
	}
	v := b.Uint64(pos)
	atomix.BarrierAcquire()
	return v
}

// PutUint64Volatile writes a big-endian uint64 at pos with release ordering.
func (b *Buffer) PutUint64Volatile(pos int, v uint64) {
	if pos&7 == 0 {
		atomix.Release.StoreUint64(b.word64(pos), wire64(v))
		return
	}
	atomix.BarrierRelease()
	b.PutUint64(pos, v)
}

// Int64Volatile reads a big-endian int64 at pos with acquire ordering.
func (b *Buffer) Int64Volatile(pos int) int64 {
	return int64(b.Uint64Volatile(pos))
}

// PutInt64Volatile writes a big-endian int64 at pos with release ordering.
func (b *Buffer) PutInt64Volatile(pos int, v int64) {
	b.PutUint64Volatile(pos, uint64(v))
}

// Uint32Volatile reads a big-endian uint32 at pos with acquire ordering.
func (b *Buffer) Uint32Volatile(pos int) uint32 {
	if pos&3 == 0 {
		return wire32(atomix.Acquire.LoadUint32(b.word32(pos)))
	}
	v := b.Uint32(pos)
	atomix.BarrierAcquire()
	return v
}

// PutUint32Volatile writes a big-endian uint32 at pos with release ordering.
func (b *Buffer) PutUint32Volatile(pos int, v uint32) {
	if pos&3 == 0 {
		atomix.Release.StoreUint32(b.word32(pos), wire32(v))
		return
	}
	atomix.BarrierRelease()
	b.PutUint32(pos, v)
}

// Int32Volatile reads a big-endian int32 at pos with acquire ordering.
func (b *Buffer) Int32Volatile(pos int) int32 {
	return int32(b.Uint32Volatile(pos))
}

// PutInt32Volatile writes a big-endian int32 at pos with release ordering.
func (b *Buffer) PutInt32Volatile(pos int, v int32) {
	b.PutUint32Volatile(pos, uint32(v))
}

// Uint16Volatile reads a big-endian uint16 at pos with acquire ordering.
//
// A value inside one aligned 32-bit word is extracted from an atomic load
// of that word. Buffers smaller than a word use the barrier path.
func (b *Buffer) Uint16Volatile(pos int) uint16 {
	if base := pos &^ 3; pos&3 != 3 && b.word32Fits(base) {
		_ = b.data[pos+1]
		word := wire32(atomix.Acquire.LoadUint32(b.word32(base)))
		return uint16(word >> shift16(pos-base))
	}
	v := b.Uint16(pos)
	atomix.BarrierAcquire()
	return v
}

// PutUint16Volatile writes a big-endian uint16 at pos with release ordering.
//
// A value inside one aligned 32-bit word is merged into that word with
// compare-and-swap, leaving the neighbouring bytes untouched.
func (b *Buffer) PutUint16Volatile(pos int, v uint16) {
	if base := pos &^ 3; pos&3 != 3 && b.word32Fits(base) {
		_ = b.data[pos+1]
		shift := shift16(pos - base)
		p := b.word32(base)
		for {
			old := atomix.Relaxed.LoadUint32(p)
			word := wire32(old)
			word = word&^(0xffff<<shift) | uint32(v)<<shift
			if atomix.AcqRel.CompareAndSwapUint32(p, old, wire32(word)) {
				return
			}
		}
	}
	atomix.BarrierRelease()
	b.PutUint16(pos, v)
}

// Int16Volatile reads a big-endian int16 at pos with acquire ordering.
func (b *Buffer) Int16Volatile(pos int) int16 {
	return int16(b.Uint16Volatile(pos))
}

// PutInt16Volatile writes a big-endian int16 at pos with release ordering.
func (b *Buffer) PutInt16Volatile(pos int, v int16) {
	b.PutUint16Volatile(pos, uint16(v))
}

// shift16 returns the right shift that extracts the 16-bit value at byte
// offset k (0, 1 or 2) from a big-endian 32-bit word.
func shift16(k int) uint {
	return uint(16 - 8*k)
}
