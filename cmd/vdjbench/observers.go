package main

import (
	"fmt"
	"io"

	"vdjbench/internal/benchmark"
	"vdjbench/internal/telemetry"
)

// metricsObserver feeds sweep progress into Prometheus.
type metricsObserver struct {
	m *telemetry.SweepMetrics
}

func (o *metricsObserver) SweepStarted(datasets []benchmark.Dataset) {
	o.m.DatasetsTotal.Set(float64(len(datasets)))
}

func (o *metricsObserver) RowCompleted(row benchmark.Row) {
	if row.Timing != nil {
		o.m.ObserveTiming(row.DatasetSize, row.Timing.Samples, row.Timing.Stats.Mean)
	}
	if row.Memory != nil {
		o.m.ObserveMemory(row.DatasetSize, row.Memory.AllocBytes, row.Memory.PeakAllocBytes)
	}
	o.m.Completed(row.DatasetSize)
}

func (o *metricsObserver) SweepFinished(_ *benchmark.Table, err error) {
	if err != nil {
		o.m.Finished(benchmark.StatusAborted)
		return
	}
	o.m.Finished(benchmark.StatusDone)
}

// progressObserver prints one status line per completed dataset size.
type progressObserver struct {
	w     io.Writer
	total int
	done  int
}

func (o *progressObserver) SweepStarted(datasets []benchmark.Dataset) {
	o.total = len(datasets)
	fmt.Fprintln(o.w, headerStyle.Render(fmt.Sprintf("Benchmarking %d dataset sizes", o.total)))
}

func (o *progressObserver) RowCompleted(row benchmark.Row) {
	o.done++
	line := fmt.Sprintf("✔ [%d/%d] size %d", o.done, o.total, row.DatasetSize)
	if row.Timing != nil {
		line += fmt.Sprintf("  mean %s ± %s", row.Timing.Mean, row.Timing.CI95)
	}
	if row.Memory != nil {
		line += fmt.Sprintf("  mem_alloc %s", row.Memory.Alloc)
		if row.Memory.Degraded {
			line += mutedStyle.Render(" (untracked)")
		}
	}
	fmt.Fprintln(o.w, okStyle.Render(line))
}

func (o *progressObserver) SweepFinished(*benchmark.Table, error) {}
