// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mrsw_test

import (
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfc"
	"code.hybscloud.com/lfc/mrsw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastrand"
)

type event struct {
	op    string // "add" or "del"
	key   uint64
	value string
}

func apply(m map[uint64]string, e event) {
	switch e.op {
	case "add":
		m[e.key] = e.value
	case "del":
		delete(m, e.key)
	}
}

func newMap(opts ...mrsw.Option) *mrsw.Map[uint64, string, event] {
	return mrsw.New(make(map[uint64]string, 10), make(map[uint64]string, 10), apply, opts...)
}

func identity(v string, ok bool) string {
	if !ok {
		return ""
	}
	return v
}

// =============================================================================
// Basic Operations
// =============================================================================

func TestAddCommitGet(t *testing.T) {
	m := newMap()

	m.AddEvent(event{op: "add", key: 1, value: "Hi"})
	m.Commit()

	assert.Equal(t, "Hi", mrsw.Get(m, 1, identity))
}

func TestEventsInvisibleUntilCommit(t *testing.T) {
	m := newMap()

	m.AddEvent(event{op: "add", key: 1, value: "a"})
	_, ok := m.Load(1)
	assert.False(t, ok, "event visible before Commit")
	assert.Equal(t, 1, m.Pending())

	m.Commit()
	v, ok := m.Load(1)
	require.True(t, ok)
	assert.Equal(t, "a", v)
	assert.Equal(t, 0, m.Pending())
}

// TestBothCopiesConverge commits several rounds and checks that whichever
// copy is current holds every event committed so far.
func TestBothCopiesConverge(t *testing.T) {
	m := newMap()
	want := make(map[uint64]string)

	for round := range 10 {
		for i := range 20 {
			key := uint64(fastrand.Uint32n(32))
			var e event
			if i%5 == 4 {
				e = event{op: "del", key: key}
			} else {
				e = event{op: "add", key: key, value: string(rune('a' + round))}
			}
			m.AddEvent(e)
			apply(want, e)
		}
		m.Commit()

		got := make(map[uint64]string)
		m.Range(func(k uint64, v string) bool {
			got[k] = v
			return true
		})
		require.Equal(t, want, got, "round %d", round)
		require.Equal(t, len(want), m.Len(), "round %d", round)
	}
}

func TestCommitTogglesRoles(t *testing.T) {
	m := newMap()
	assert.Equal(t, [2]mrsw.Role{mrsw.RoleReader, mrsw.RoleWriter}, m.Roles())

	m.Commit()
	assert.Equal(t, [2]mrsw.Role{mrsw.RoleWriter, mrsw.RoleReader}, m.Roles())

	m.Commit()
	assert.Equal(t, [2]mrsw.Role{mrsw.RoleReader, mrsw.RoleWriter}, m.Roles())

	assert.Equal(t, "reader", mrsw.RoleReader.String())
	assert.Equal(t, "writer", mrsw.RoleWriter.String())
}

func TestReadMissingKey(t *testing.T) {
	m := newMap()
	called := false
	m.Read(7, func(v string, ok bool) {
		called = true
		assert.False(t, ok)
		assert.Empty(t, v)
	})
	assert.True(t, called)
}

func TestGetCapturesState(t *testing.T) {
	m := newMap()
	for k := range uint64(4) {
		m.AddEvent(event{op: "add", key: k, value: "v"})
	}
	m.Commit()

	hits := 0
	for k := range uint64(8) {
		if mrsw.Get(m, k, func(_ string, ok bool) bool { return ok }) {
			hits++
		}
	}
	assert.Equal(t, 4, hits)
}

func TestInitialContent(t *testing.T) {
	first := map[uint64]string{1: "one"}
	second := map[uint64]string{1: "one"}
	m := mrsw.New(first, second, apply)

	assert.Equal(t, "one", mrsw.Get(m, 1, identity))

	m.AddEvent(event{op: "add", key: 2, value: "two"})
	m.Commit()
	m.AddEvent(event{op: "del", key: 1})
	m.Commit()

	_, ok := m.Load(1)
	assert.False(t, ok)
	assert.Equal(t, "two", mrsw.Get(m, 2, identity))
}

func TestNilMapsReplaced(t *testing.T) {
	m := mrsw.New[uint64, string, event](nil, nil, apply)
	m.AddEvent(event{op: "add", key: 1, value: "x"})
	m.Commit()
	assert.Equal(t, "x", mrsw.Get(m, 1, identity))
}

func TestNewPanics(t *testing.T) {
	assert.Panics(t, func() {
		mrsw.New[uint64, string, event](nil, nil, nil)
	}, "nil apply")

	shared := make(map[uint64]string)
	assert.Panics(t, func() {
		mrsw.New(shared, shared, apply)
	}, "aliased maps")
}

func TestReaderWriterViews(t *testing.T) {
	m := newMap(mrsw.WithPendingCapacity(4))
	var w mrsw.Writer[event] = m.Writer()
	var r mrsw.Reader[uint64, string] = m.Reader()

	for k := range uint64(10) {
		w.AddEvent(event{op: "add", key: k, value: "v"})
	}
	assert.Equal(t, 10, w.Pending())
	w.Commit()
	assert.Equal(t, 10, r.Len())
}

// =============================================================================
// Reader Pinning
// =============================================================================

// TestCommitWaitsForReaders pins the current copy inside Read and checks
// that Commit does not return until the reader leaves.
func TestCommitWaitsForReaders(t *testing.T) {
	if lfc.RaceEnabled {
		t.Skip("skip: reader pinning is ordered through atomix")
	}
	m := newMap()
	m.AddEvent(event{op: "add", key: 1, value: "old"})
	m.Commit()

	entered := make(chan struct{})
	release := make(chan struct{})
	readDone := make(chan string)
	go func() {
		m.Read(1, func(v string, ok bool) {
			close(entered)
			<-release
			readDone <- v
		})
	}()
	<-entered

	// The next commit retires the pinned copy and must wait.
	m.AddEvent(event{op: "add", key: 1, value: "newer"})
	commitDone := make(chan struct{})
	go func() {
		m.Commit()
		close(commitDone)
	}()

	select {
	case <-commitDone:
		t.Fatal("Commit returned while a reader was pinned in the retired copy")
	case <-time.After(50 * time.Millisecond):
	}

	// The pinned reader still sees the value of its copy.
	close(release)
	assert.Equal(t, "old", <-readDone)

	select {
	case <-commitDone:
	case <-time.After(5 * time.Second):
		t.Fatal("Commit did not return after the reader left")
	}
	assert.Equal(t, "newer", mrsw.Get(m, 1, identity))
}

// TestCommitStarvation checks that a reader that never leaves turns into a
// StarvationError once the spin limit is exceeded.
func TestCommitStarvation(t *testing.T) {
	m := newMap(mrsw.WithSpinLimit(100))

	entered := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.Read(1, func(string, bool) {
			close(entered)
			<-release
		})
	}()
	<-entered
	defer func() {
		close(release)
		wg.Wait()
	}()

	defer func() {
		r := recover()
		require.NotNil(t, r, "expected starvation panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		var se *lfc.StarvationError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, "commit", se.Op)
		assert.Equal(t, uint64(1), se.Stamp)
		assert.ErrorIs(t, err, lfc.ErrStarvation)
	}()
	m.AddEvent(event{op: "add", key: 1, value: "x"})
	m.Commit() // retires the pinned READER copy
}

// =============================================================================
// Concurrent Readers
// =============================================================================

// TestConcurrentReadersSeeWholeCommits has the writer set every key to the
// round number in one commit. Readers must never observe two different
// rounds in a single Range.
func TestConcurrentReadersSeeWholeCommits(t *testing.T) {
	if lfc.RaceEnabled {
		t.Skip("skip: container hand-off is ordered through atomix")
	}

	const (
		numKeys    = 64
		numReaders = 8
		rounds     = 2000
	)
	type set struct {
		key, round uint64
	}
	m := mrsw.New(make(map[uint64]uint64), make(map[uint64]uint64), func(m map[uint64]uint64, e set) {
		m[e.key] = e.round
	})

	var stop atomix.Bool
	var torn, reads atomix.Int64
	var wg sync.WaitGroup
	for range numReaders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var lastRound uint64
			for !stop.Load() {
				var first uint64
				seen := 0
				m.Range(func(_ uint64, round uint64) bool {
					if seen == 0 {
						first = round
					} else if round != first {
						torn.Add(1)
					}
					seen++
					return true
				})
				if seen != 0 && seen != numKeys {
					torn.Add(1)
				}
				if seen != 0 && first < lastRound {
					torn.Add(1) // went back in time
				}
				lastRound = first
				reads.Add(1)
				runtime.Gosched()
			}
		}()
	}

	// Start writing only once the readers are running.
	deadline := time.Now().Add(5 * time.Second)
	backoff := iox.Backoff{}
	for reads.Load() < numReaders {
		require.False(t, time.Now().After(deadline), "readers did not start")
		backoff.Wait()
	}

	start := reads.Load()
	for round := uint64(1); round <= rounds; round++ {
		for k := range uint64(numKeys) {
			m.AddEvent(set{key: k, round: round})
		}
		m.Commit()
		runtime.Gosched()
	}
	stop.Store(true)
	wg.Wait()

	assert.Zero(t, torn.Load(), "readers observed partially applied commits")
	assert.Greater(t, reads.Load(), start, "no reads interleaved with commits")
	assert.Equal(t, uint64(rounds), mrsw.Get(m, 0, func(v uint64, _ bool) uint64 { return v }))
}
