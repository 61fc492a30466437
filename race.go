// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package lfc

// RaceEnabled is true when the race detector is active.
//
// Slot payloads, map containers and buffer fences are ordered through
// atomix operations, which the detector does not model. Tests use this to
// skip cross-goroutine stress runs that would report false positives.
const RaceEnabled = true
