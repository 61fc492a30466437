// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package stall bounds spin-wait loops.
//
// A Guard wraps [spin.Wait] with an iteration ceiling. Callers spin while
// Pause reports true and treat a false result as a liveness failure.
package stall

import "code.hybscloud.com/spin"

// Guard counts spin iterations against a limit.
// The zero value has no limit. A Guard must not be shared between goroutines.
type Guard struct {
	sw    spin.Wait
	spins uint64
	limit uint64
}

// New returns a Guard that allows limit iterations.
// A limit of 0 means unbounded.
func New(limit uint64) Guard {
	return Guard{limit: limit}
}

// Pause spins or yields once.
// Returns false without pausing once the limit has been reached.
func (g *Guard) Pause() bool {
	if g.limit != 0 && g.spins >= g.limit {
		return false
	}
	g.spins++
	g.sw.Once()
	return true
}

// Spins returns the number of completed pauses.
func (g *Guard) Spins() uint64 {
	return g.spins
}
