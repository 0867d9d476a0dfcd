package benchmark

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSnapshotter struct {
	snapshots []Snapshot
	beginErr  error
	snapErr   error
	events    *[]string
	ended     bool
}

func (f *fakeSnapshotter) Begin() error {
	*f.events = append(*f.events, "begin")
	return f.beginErr
}

func (f *fakeSnapshotter) Snapshot() (Snapshot, error) {
	*f.events = append(*f.events, "snapshot")
	if f.snapErr != nil {
		return nil, f.snapErr
	}
	s := f.snapshots[0]
	f.snapshots = f.snapshots[1:]
	return s, nil
}

func (f *fakeSnapshotter) End() {
	*f.events = append(*f.events, "end")
	f.ended = true
}

func newFakeProfiler(f *fakeSnapshotter) *MemoryProfiler {
	p := NewMemoryProfiler(f)
	p.collect = func() { *f.events = append(*f.events, "gc") }
	return p
}

func TestDiffSnapshots(t *testing.T) {
	before := Snapshot{"a": 100, "b": 500, "c": 50}
	after := Snapshot{"a": 300, "b": 200, "d": 1000}

	total, peak := DiffSnapshots(before, after)

	assert.Equal(t, int64(1200), total, "only growth sites count")
	assert.Equal(t, int64(1000), peak)
}

func TestDiffSnapshots_NoGrowth(t *testing.T) {
	total, peak := DiffSnapshots(Snapshot{"a": 10}, Snapshot{"a": 5})
	assert.Zero(t, total)
	assert.Zero(t, peak)
}

func TestMemoryProfiler_Profile(t *testing.T) {
	var events []string
	f := &fakeSnapshotter{
		events: &events,
		snapshots: []Snapshot{
			{"loader.go:10": 0, "cache.go:3": 4096},
			{"loader.go:10": 2048, "loader.go:12": 1024, "cache.go:3": 0},
		},
	}
	calls := 0
	op := func() (any, error) {
		events = append(events, "op")
		calls++
		return make([]byte, 16), nil
	}

	rec, err := newFakeProfiler(f).Profile(op)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"begin", "gc", "snapshot", "op", "gc", "snapshot", "end"}, events)
	assert.Equal(t, int64(3072), rec.AllocBytes)
	assert.Equal(t, int64(2048), rec.PeakAllocBytes)
	assert.Equal(t, "3KB", rec.Alloc)
	assert.Equal(t, "2KB", rec.PeakAlloc)
	assert.False(t, rec.Degraded)
	assert.LessOrEqual(t, rec.PeakAllocBytes, rec.AllocBytes)
}

func TestMemoryProfiler_OperationError(t *testing.T) {
	var events []string
	f := &fakeSnapshotter{events: &events, snapshots: []Snapshot{{}, {}}}
	boom := errors.New("parse error")

	rec, err := newFakeProfiler(f).Profile(func() (any, error) { return nil, boom })

	assert.ErrorIs(t, err, boom)
	assert.Nil(t, rec)
	assert.True(t, f.ended, "snapshotter is released on failure")
}

func TestMemoryProfiler_Degraded(t *testing.T) {
	t.Run("Begin unavailable", func(t *testing.T) {
		var events []string
		f := &fakeSnapshotter{events: &events, beginErr: ErrProfilingUnavailable}
		calls := 0

		rec, err := newFakeProfiler(f).Profile(func() (any, error) { calls++; return nil, nil })
		require.NoError(t, err)

		assert.Equal(t, 1, calls)
		assert.True(t, rec.Degraded)
		assert.Equal(t, "0B", rec.Alloc)
		assert.Equal(t, "0B", rec.PeakAlloc)
	})

	t.Run("Snapshot unavailable", func(t *testing.T) {
		var events []string
		f := &fakeSnapshotter{events: &events, snapErr: ErrProfilingUnavailable}
		calls := 0

		rec, err := newFakeProfiler(f).Profile(func() (any, error) { calls++; return nil, nil })
		require.NoError(t, err)

		assert.Equal(t, 1, calls)
		assert.True(t, rec.Degraded)
		assert.Equal(t, "0B", rec.Alloc)
	})

	t.Run("Other snapshot errors fail", func(t *testing.T) {
		var events []string
		f := &fakeSnapshotter{events: &events, snapErr: assert.AnError}

		_, err := newFakeProfiler(f).Profile(func() (any, error) { return nil, nil })
		assert.ErrorIs(t, err, assert.AnError)
	})
}

var retained [][]byte

func TestMemoryProfiler_HeapSnapshotter(t *testing.T) {
	const size = 64 * 1024
	prevRate := runtime.MemProfileRate

	rec, err := NewMemoryProfiler(nil).Profile(func() (any, error) {
		return make([]byte, size), nil
	})
	require.NoError(t, err)

	assert.Equal(t, prevRate, runtime.MemProfileRate, "profile rate is restored")
	assert.False(t, rec.Degraded)
	assert.GreaterOrEqual(t, rec.AllocBytes, int64(size))
	assert.InDelta(t, size, rec.PeakAllocBytes, 8192)
	assert.LessOrEqual(t, rec.PeakAllocBytes, rec.AllocBytes)
}

func TestMemoryProfiler_HeapSnapshotterExcludesFreed(t *testing.T) {
	// Memory allocated before the baseline and released by the operation
	// must not produce a negative or positive contribution.
	retained = append(retained, make([]byte, 256*1024))

	rec, err := NewMemoryProfiler(nil).Profile(func() (any, error) {
		retained = nil
		return nil, nil
	})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, rec.AllocBytes, int64(0))
	assert.Less(t, rec.AllocBytes, int64(64*1024))
}

func TestHeapSnapshotter_Disabled(t *testing.T) {
	prevRate := runtime.MemProfileRate
	runtime.MemProfileRate = 0
	defer func() { runtime.MemProfileRate = prevRate }()

	h := &HeapSnapshotter{}
	err := h.Begin()
	assert.ErrorIs(t, err, ErrProfilingUnavailable)
	h.End()
	assert.Equal(t, 0, runtime.MemProfileRate)

	_, err = h.Snapshot()
	assert.ErrorIs(t, err, ErrProfilingUnavailable)
}
