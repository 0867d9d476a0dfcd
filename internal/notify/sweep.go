package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vdjbench/internal/benchmark"
	"vdjbench/internal/telemetry"
)

// SweepObserver reports the end of a sweep through a Notifier.
type SweepObserver struct {
	notifier Notifier
	label    string
	total    int
	timeout  time.Duration
}

// NewSweepObserver returns an observer that posts one message per sweep.
func NewSweepObserver(n Notifier, label string) *SweepObserver {
	return &SweepObserver{notifier: n, label: label, timeout: 10 * time.Second}
}

func (o *SweepObserver) SweepStarted(datasets []benchmark.Dataset) {
	o.total = len(datasets)
}

func (o *SweepObserver) RowCompleted(benchmark.Row) {}

func (o *SweepObserver) SweepFinished(table *benchmark.Table, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	if nerr := o.notifier.Notify(ctx, SweepMessage(o.label, o.total, table, err)); nerr != nil {
		telemetry.LogError("Failed to send sweep notification", nerr)
	}
}

// SweepMessage summarises a finished sweep in one or two lines.
func SweepMessage(label string, total int, table *benchmark.Table, err error) string {
	var rows []benchmark.Row
	if table != nil {
		rows = table.Rows
	}

	var b strings.Builder
	if err != nil {
		fmt.Fprintf(&b, ":x: vdjbench sweep %q aborted after %d/%d dataset sizes: %v", label, len(rows), total, err)
	} else {
		fmt.Fprintf(&b, ":white_check_mark: vdjbench sweep %q finished %d dataset sizes", label, len(rows))
	}
	if len(rows) == 0 {
		return b.String()
	}

	last := rows[len(rows)-1]
	fmt.Fprintf(&b, "\nlargest completed size %d:", last.DatasetSize)
	if last.Timing != nil {
		fmt.Fprintf(&b, " mean %s ± %s", last.Timing.Mean, last.Timing.CI95)
	}
	if last.Memory != nil {
		fmt.Fprintf(&b, " mem_alloc %s", last.Memory.Alloc)
	}
	return b.String()
}
