package benchmark

import (
	"fmt"
	"runtime"
	"strings"
)

const ownFrameMarker = ".(*HeapSnapshotter)."

// HeapSnapshotter reads allocation sites from the runtime heap profile. Each
// site is the first non-runtime frame of an allocation stack and its value is
// the bytes still in use there.
type HeapSnapshotter struct {
	// Rate is the runtime.MemProfileRate used between Begin and End. 1
	// records every allocation; 0 keeps the process setting.
	Rate int

	prevRate int
}

// NewHeapSnapshotter creates a HeapSnapshotter that records every allocation.
func NewHeapSnapshotter() *HeapSnapshotter {
	return &HeapSnapshotter{Rate: 1}
}

func (h *HeapSnapshotter) Begin() error {
	h.prevRate = runtime.MemProfileRate
	if h.Rate > 0 {
		runtime.MemProfileRate = h.Rate
	}
	if runtime.MemProfileRate <= 0 {
		return ErrProfilingUnavailable
	}
	return nil
}

func (h *HeapSnapshotter) End() {
	runtime.MemProfileRate = h.prevRate
}

// Snapshot returns the live bytes per allocation site. Allocations made by the
// snapshotter itself are left out.
func (h *HeapSnapshotter) Snapshot() (Snapshot, error) {
	if runtime.MemProfileRate <= 0 {
		return nil, ErrProfilingUnavailable
	}

	n, _ := runtime.MemProfile(nil, false)
	var records []runtime.MemProfileRecord
	for {
		records = make([]runtime.MemProfileRecord, n+64)
		var ok bool
		n, ok = runtime.MemProfile(records, false)
		if ok {
			records = records[:n]
			break
		}
	}

	snap := make(Snapshot, len(records))
	for i := range records {
		site, own := allocationSite(records[i].Stack())
		if own {
			continue
		}
		snap[site] += records[i].InUseBytes()
	}
	return snap, nil
}

func allocationSite(stack []uintptr) (site string, own bool) {
	frames := runtime.CallersFrames(stack)
	for {
		frame, more := frames.Next()
		if strings.Contains(frame.Function, ownFrameMarker) {
			return "", true
		}
		if site == "" && !strings.HasPrefix(frame.Function, "runtime.") {
			site = fmt.Sprintf("%s %s:%d", frame.Function, frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
	if site == "" {
		site = "runtime"
	}
	return site, false
}
