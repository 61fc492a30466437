// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mrsw provides a multi-reader single-writer map built by double
// buffering.
//
// A Map keeps two copies of the same key/value state. One copy is tagged
// READER and is the only one readers can enter; the other is tagged WRITER
// and is mutated by the writer. The writer feeds an event stream:
//
//	m := mrsw.New(map[uint64]string{}, map[uint64]string{}, apply)
//
//	// Writer goroutine
//	m.AddEvent(Add{Key: 1, Value: "Hi"})
//	m.Commit()
//
//	// Any goroutine
//	v, ok := m.Load(1)
//
// AddEvent applies the event to the WRITER copy at once and queues it for
// the READER copy. Commit swaps the tags, republishes the caught-up copy
// to readers, waits for readers to leave the retired copy and replays the
// queued events on it. Reads are therefore at most one commit stale and
// never observe a partially applied event.
//
// Readers never wait for the writer. The writer waits in Commit only for
// readers already inside the retired copy.
package mrsw
