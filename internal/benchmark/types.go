package benchmark

import "time"

// Operation is a zero-argument unit of work under measurement.
type Operation func() (any, error)

// Loader loads the dataset stored at path. It is called once per timing
// repetition plus once for memory profiling, so it must tolerate repeated calls.
type Loader func(path string) (any, error)

// Bind fixes the dataset location of a loader, yielding an Operation.
func (l Loader) Bind(path string) Operation {
	return func() (any, error) {
		return l(path)
	}
}

// TimingStats holds the raw timing statistics, in seconds.
type TimingStats struct {
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	Mean   float64 `json:"mean"`
	Max    float64 `json:"max"`
	SD     float64 `json:"sd"`
	CI95   float64 `json:"ci95"`
}

// TimingRecord is the formatted summary of a timing pass.
type TimingRecord struct {
	Min    string `json:"min"`
	Median string `json:"median"`
	Mean   string `json:"mean"`
	Max    string `json:"max"`
	SD     string `json:"sd"`
	CI95   string `json:"ci95"`

	Samples []float64   `json:"-"`
	Stats   TimingStats `json:"-"`
}

// MemoryRecord is the formatted allocation summary of a single call.
type MemoryRecord struct {
	Alloc     string `json:"mem_alloc"`
	PeakAlloc string `json:"peak_mem_alloc"`

	AllocBytes     int64 `json:"-"`
	PeakAllocBytes int64 `json:"-"`
	// Degraded is set when no allocation tracking was available.
	Degraded bool `json:"-"`
}

// Row is the result for one dataset size. Timing or Memory is nil when that
// measurement was not configured.
type Row struct {
	DatasetSize int           `json:"dataset_size"`
	Timing      *TimingRecord `json:"timing,omitempty"`
	Memory      *MemoryRecord `json:"memory,omitempty"`
}

// Table is the ordered set of rows produced by a sweep.
type Table struct {
	Rows []Row
}

// Run describes a completed or aborted sweep as recorded in history.
type Run struct {
	ID         int64     `json:"id"`
	Label      string    `json:"label"`
	Loader     string    `json:"loader"`
	Iterations int       `json:"iterations"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Rows       []Row     `json:"rows"`
}

// Run statuses.
const (
	StatusRunning = "running"
	StatusDone    = "done"
	StatusAborted = "aborted"
)
