// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mrsw

const defaultPendingCapacity = 1024

// Option configures a Map.
type Option func(*options)

type options struct {
	spinLimit       uint64
	pendingCapacity int
}

// WithSpinLimit bounds how long Commit spins waiting for readers to leave
// the retired copy before it panics with *lfc.StarvationError.
// A limit of 0 disables the bound. Defaults to lfc.DefaultSpinLimit.
func WithSpinLimit(n uint64) Option {
	return func(o *options) {
		o.spinLimit = n
	}
}

// WithPendingCapacity presizes the replay queue of each copy.
// Defaults to 1024 events.
func WithPendingCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pendingCapacity = n
		}
	}
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill cache line after 8-byte field.
type padShort [64 - 8]byte
