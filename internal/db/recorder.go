package db

import (
	"time"

	"vdjbench/internal/benchmark"
	"vdjbench/internal/telemetry"
)

// Recorder is a sweep observer that archives each completed row. History
// failures are logged and never interrupt the sweep.
type Recorder struct {
	store Store
	run   benchmark.Run
	runID int64
	now   func() time.Time
}

// NewRecorder returns a Recorder writing a run with the given metadata.
func NewRecorder(store Store, label, loaderName string, iterations int) *Recorder {
	return &Recorder{
		store: store,
		run:   benchmark.Run{Label: label, Loader: loaderName, Iterations: iterations},
		now:   time.Now,
	}
}

// RunID returns the ID of the run being recorded, or 0 before the sweep starts.
func (r *Recorder) RunID() int64 {
	return r.runID
}

func (r *Recorder) SweepStarted(datasets []benchmark.Dataset) {
	run := r.run
	run.StartedAt = r.now()
	run.Status = benchmark.StatusRunning
	id, err := r.store.StartRun(&run)
	if err != nil {
		telemetry.LogError("Failed to record run start", err)
		return
	}
	r.runID = id
	telemetry.LogDebug("Recording sweep history", "run_id", id, "datasets", len(datasets))
}

func (r *Recorder) RowCompleted(row benchmark.Row) {
	if r.runID == 0 {
		return
	}
	if err := r.store.AppendRow(r.runID, row); err != nil {
		telemetry.LogError("Failed to record row", err, "run_id", r.runID, "dataset_size", row.DatasetSize)
	}
}

func (r *Recorder) SweepFinished(_ *benchmark.Table, err error) {
	if r.runID == 0 {
		return
	}
	status := benchmark.StatusDone
	if err != nil {
		status = benchmark.StatusAborted
	}
	if ferr := r.store.FinishRun(r.runID, status, r.now()); ferr != nil {
		telemetry.LogError("Failed to record run completion", ferr, "run_id", r.runID)
	}
}
