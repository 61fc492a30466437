// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pow2 rounds sizes to powers of two.
package pow2

// Round returns the smallest power of 2 that is >= n.
// Round(0) and Round(1) return 1. Panics if n is negative.
func Round(n int) int {
	if n < 0 {
		panic("pow2: negative size")
	}
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// Is reports whether n is a power of 2.
func Is(n int) bool {
	return n > 0 && n&(n-1) == 0
}
