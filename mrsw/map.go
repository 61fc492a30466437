// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mrsw

import (
	"reflect"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/lfc"
	"code.hybscloud.com/lfc/internal/stall"
)

// Role is the tag of one of the two copies held by a Map.
type Role int32

const (
	// RoleReader marks the copy readers are directed to.
	RoleReader Role = 1
	// RoleWriter marks the copy AddEvent mutates.
	RoleWriter Role = 2
)

func (r Role) String() string {
	switch r {
	case RoleReader:
		return "reader"
	case RoleWriter:
		return "writer"
	default:
		return "unknown"
	}
}

// ApplyFunc applies one event to a map in place.
//
// The same event is applied once to each of the two copies, so ApplyFunc
// must be deterministic and must not retain m.
type ApplyFunc[K comparable, V any, E any] func(m map[K]V, event E)

// Reader is the read side of a Map. Safe for any number of goroutines.
type Reader[K comparable, V any] interface {
	Read(key K, fn func(v V, ok bool))
	Load(key K) (V, bool)
	Range(fn func(key K, v V) bool)
	Len() int
}

// Writer is the write side of a Map. Must be used from one goroutine.
type Writer[E any] interface {
	AddEvent(event E)
	Commit()
	Pending() int
}

var (
	_ Reader[int, int] = (*Map[int, int, int])(nil)
	_ Writer[int]      = (*Map[int, int, int])(nil)
)

// Map is a multi-reader single-writer double-buffered map.
//
// Thread safety: AddEvent, Commit, Pending and Roles belong to a single
// writer goroutine; there is no internal lock between writers. Read, Get,
// Load, Range and Len may be called from any number of goroutines and
// never block. Safety rests on the writer mutating only the container that
// no reader can enter, and on Commit waiting out readers before touching
// a container they could have entered.
type Map[K comparable, V any, E any] struct {
	_          pad
	current    atomix.Int32 // index of the READER container
	_          padShort
	containers [2]container[K, V, E]
	apply      ApplyFunc[K, V, E]
	spinLimit  uint64
}

type container[K comparable, V any, E any] struct {
	readers atomix.Int64
	_       padShort
	role    atomix.Int32
	data    map[K]V
	pending []E // events the container still has to replay, FIFO
}

// New creates a map from two copies of the same initial content.
//
// first starts as the READER copy, second as the WRITER copy. The caller
// hands both maps over and must not use them afterwards. Nil maps are
// replaced with empty ones.
//
// Panics if apply is nil or if first and second are the same map.
func New[K comparable, V any, E any](first, second map[K]V, apply ApplyFunc[K, V, E], opts ...Option) *Map[K, V, E] {
	if apply == nil {
		panic("mrsw: apply must not be nil")
	}
	if first == nil {
		first = make(map[K]V)
	}
	if second == nil {
		second = make(map[K]V)
	}
	if reflect.ValueOf(first).UnsafePointer() == reflect.ValueOf(second).UnsafePointer() {
		panic("mrsw: first and second must be distinct maps")
	}

	o := options{
		spinLimit:       lfc.DefaultSpinLimit,
		pendingCapacity: defaultPendingCapacity,
	}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Map[K, V, E]{
		apply:     apply,
		spinLimit: o.spinLimit,
	}
	m.containers[0].data = first
	m.containers[0].pending = make([]E, 0, o.pendingCapacity)
	m.containers[0].role.StoreRelaxed(int32(RoleReader))
	m.containers[1].data = second
	m.containers[1].pending = make([]E, 0, o.pendingCapacity)
	m.containers[1].role.StoreRelaxed(int32(RoleWriter))
	m.current.StoreRelaxed(0)
	return m
}

// AddEvent applies event to the WRITER copy and queues it for the READER
// copy to replay on the next Commit (writer only).
//
// Readers do not see the event until Commit. AddEvent never blocks; the
// replay queue grows until the next Commit drains it.
func (m *Map[K, V, E]) AddEvent(event E) {
	w, r := m.roles()
	m.apply(w.data, event)
	r.pending = append(r.pending, event)
}

// Commit publishes every event added since the previous Commit (writer only).
//
// Commit swaps the roles, publishes the caught-up copy to readers with a
// release store followed by a full barrier, waits until no reader remains in the
// retired copy and then replays the retired copy's queued events in FIFO
// order. When Commit returns, reads reflect every event added before it and
// the retired copy is ready to take writes.
//
// Panics with *lfc.StarvationError if readers keep the retired copy pinned
// beyond the spin limit.
func (m *Map[K, V, E]) Commit() {
	w, r := m.roles()
	w.role.StoreRelaxed(int32(RoleReader))
	r.role.StoreRelaxed(int32(RoleWriter))
	m.current.StoreRelease(m.index(w))
	// StoreLoad: the new index must be visible before the reader count of
	// the retired copy is sampled.
	atomix.BarrierAcqRel()

	if n := r.readers.LoadAcquire(); n != 0 {
		g := stall.New(m.spinLimit)
		for n != 0 {
			if !g.Pause() {
				panic(&lfc.StarvationError{Op: "commit", Cursor: uint64(m.index(w)), Stamp: uint64(n), Spins: g.Spins()})
			}
			n = r.readers.LoadAcquire()
		}
	}

	var zero E
	for i, event := range r.pending {
		m.apply(r.data, event)
		r.pending[i] = zero
	}
	r.pending = r.pending[:0]
}

// Pending returns the number of events waiting to be replayed on the
// READER copy (writer only).
func (m *Map[K, V, E]) Pending() int {
	_, r := m.roles()
	return len(r.pending)
}

// Roles returns the current role of each copy, in construction order
// (writer only).
func (m *Map[K, V, E]) Roles() [2]Role {
	return [2]Role{
		Role(m.containers[0].role.LoadRelaxed()),
		Role(m.containers[1].role.LoadRelaxed()),
	}
}

// Read calls fn with the value for key in the current READER copy.
// ok reports whether the key was present.
//
// fn runs while the copy is pinned: Commit waits for it to return before
// mutating that copy. fn must not retain v if V aliases map-internal
// state the writer later mutates, and must not call Commit.
func (m *Map[K, V, E]) Read(key K, fn func(v V, ok bool)) {
	c := m.enter()
	defer c.readers.AddRelease(-1)
	v, ok := c.data[key]
	fn(v, ok)
}

// Load returns a copy of the value for key.
func (m *Map[K, V, E]) Load(key K) (V, bool) {
	c := m.enter()
	defer c.readers.AddRelease(-1)
	v, ok := c.data[key]
	return v, ok
}

// Range calls fn for each entry of the current READER copy until fn
// returns false. Iteration order is unspecified.
func (m *Map[K, V, E]) Range(fn func(key K, v V) bool) {
	c := m.enter()
	defer c.readers.AddRelease(-1)
	for k, v := range c.data {
		if !fn(k, v) {
			return
		}
	}
}

// Len returns the number of entries in the current READER copy.
func (m *Map[K, V, E]) Len() int {
	c := m.enter()
	defer c.readers.AddRelease(-1)
	return len(c.data)
}

// Reader returns the read side of m.
func (m *Map[K, V, E]) Reader() Reader[K, V] {
	return m
}

// Writer returns the write side of m.
func (m *Map[K, V, E]) Writer() Writer[E] {
	return m
}

// Get calls fn with the value for key and returns its result.
//
//	name := mrsw.Get(m, id, func(u User, ok bool) string { return u.Name })
func Get[R any, K comparable, V any, E any](m *Map[K, V, E], key K, fn func(v V, ok bool) R) R {
	var result R
	m.Read(key, func(v V, ok bool) {
		result = fn(v, ok)
	})
	return result
}

// enter pins the current READER copy and returns it.
//
// The reader count is raised before the current index is re-checked, and
// Commit publishes the index before checking the count. Each side has a
// full barrier between its store and its load, so either Commit sees the
// reader or the reader sees the new index and moves to it.
func (m *Map[K, V, E]) enter() *container[K, V, E] {
	for {
		i := m.current.LoadAcquire()
		c := &m.containers[i]
		c.readers.AddAcqRel(1)
		atomix.BarrierAcqRel()
		if m.current.LoadAcquire() == i {
			return c
		}
		c.readers.AddAcqRel(-1)
	}
}

// roles returns the WRITER and READER copies.
func (m *Map[K, V, E]) roles() (w, r *container[K, V, E]) {
	if Role(m.containers[0].role.LoadRelaxed()) == RoleWriter {
		return &m.containers[0], &m.containers[1]
	}
	return &m.containers[1], &m.containers[0]
}

func (m *Map[K, V, E]) index(c *container[K, V, E]) int32 {
	if c == &m.containers[0] {
		return 0
	}
	return 1
}
