package benchmark

import (
	"errors"
	"runtime"
)

// ErrProfilingUnavailable is returned by a Snapshotter when the process cannot
// attribute allocations to sites.
var ErrProfilingUnavailable = errors.New("allocation profiling unavailable")

// Snapshot maps an allocation site to the bytes live at that site.
type Snapshot map[string]int64

// Snapshotter takes allocation snapshots. Begin is called before the baseline
// snapshot and End after the final one.
type Snapshotter interface {
	Begin() error
	Snapshot() (Snapshot, error)
	End()
}

// MemoryProfiler attributes allocations to a single call of an operation by
// diffing allocation snapshots taken around it.
type MemoryProfiler struct {
	snapshotter Snapshotter
	collect     func()
}

// NewMemoryProfiler creates a profiler backed by s. A nil s uses the runtime
// heap profile.
func NewMemoryProfiler(s Snapshotter) *MemoryProfiler {
	if s == nil {
		s = NewHeapSnapshotter()
	}
	return &MemoryProfiler{snapshotter: s, collect: runtime.GC}
}

// Profile runs op exactly once between two snapshots. Only sites that grew
// count: the total is the sum of their growth and the peak is the largest
// single growth. When no snapshots can be taken the record reports zero and
// is marked Degraded; errors from op are returned unchanged.
func (p *MemoryProfiler) Profile(op Operation) (*MemoryRecord, error) {
	err := p.snapshotter.Begin()
	defer p.snapshotter.End()
	if err != nil {
		if errors.Is(err, ErrProfilingUnavailable) {
			return p.degraded(op)
		}
		return nil, err
	}

	p.collect()
	before, err := p.snapshotter.Snapshot()
	if err != nil {
		if errors.Is(err, ErrProfilingUnavailable) {
			return p.degraded(op)
		}
		return nil, err
	}

	result, err := op()
	if err != nil {
		return nil, err
	}

	p.collect()
	after, err := p.snapshotter.Snapshot()
	if err != nil {
		if errors.Is(err, ErrProfilingUnavailable) {
			runtime.KeepAlive(result)
			return NewMemoryRecord(0, 0, true), nil
		}
		return nil, err
	}

	total, peak := DiffSnapshots(before, after)
	// result must stay reachable until the post snapshot has been diffed.
	runtime.KeepAlive(result)

	return NewMemoryRecord(total, peak, false), nil
}

func (p *MemoryProfiler) degraded(op Operation) (*MemoryRecord, error) {
	result, err := op()
	if err != nil {
		return nil, err
	}
	runtime.KeepAlive(result)
	return NewMemoryRecord(0, 0, true), nil
}

// DiffSnapshots compares after against before per site and returns the sum
// and the maximum of the positive deltas. Sites that shrank are ignored.
func DiffSnapshots(before, after Snapshot) (total, peak int64) {
	for site, size := range after {
		delta := size - before[site]
		if delta <= 0 {
			continue
		}
		total += delta
		if delta > peak {
			peak = delta
		}
	}
	return total, peak
}

// NewMemoryRecord formats raw byte counts into a record.
func NewMemoryRecord(total, peak int64, degraded bool) *MemoryRecord {
	return &MemoryRecord{
		Alloc:          FormatBytes(total),
		PeakAlloc:      FormatBytes(peak),
		AllocBytes:     total,
		PeakAllocBytes: peak,
		Degraded:       degraded,
	}
}
