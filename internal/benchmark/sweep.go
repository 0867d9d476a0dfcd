package benchmark

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	apperrors "vdjbench/internal/errors"
	"vdjbench/internal/telemetry"
)

// MemoryMode selects when the memory profiler runs.
type MemoryMode string

const (
	// MemoryAlways profiles every dataset size.
	MemoryAlways MemoryMode = "always"
	// MemoryUntimed profiles only when timing is disabled (Iterations == 0).
	MemoryUntimed MemoryMode = "untimed"
)

// ParseMemoryMode validates a memory mode name.
func ParseMemoryMode(s string) (MemoryMode, error) {
	switch m := MemoryMode(s); m {
	case MemoryAlways, MemoryUntimed:
		return m, nil
	case "":
		return MemoryAlways, nil
	}
	return "", apperrors.NewConfigurationError("memory_mode", fmt.Sprintf("unknown mode %q (want always or untimed)", s), nil)
}

// Dataset is one subdirectory of the dataset root.
type Dataset struct {
	Size int
	Path string
}

// Observer is notified as a sweep progresses. Observers must not block for
// long; they run on the sweep goroutine between measurements.
type Observer interface {
	SweepStarted(datasets []Dataset)
	RowCompleted(row Row)
	SweepFinished(table *Table, err error)
}

// SweepConfig configures a Sweeper.
type SweepConfig struct {
	Root       string
	Iterations int
	MemoryMode MemoryMode
	Loader     Loader
	Store      Store
	Profiler   *MemoryProfiler
	Observers  []Observer
}

// Sweeper measures a loader against every dataset size under a root
// directory, one size at a time in ascending order.
type Sweeper struct {
	cfg   SweepConfig
	table *Table

	warnedDegraded bool
}

// NewSweeper validates cfg and returns a Sweeper.
func NewSweeper(cfg SweepConfig) (*Sweeper, error) {
	if cfg.Iterations < 0 {
		return nil, apperrors.NewConfigurationError("iterations", fmt.Sprintf("must be >= 0, got %d", cfg.Iterations), nil)
	}
	if cfg.Loader == nil {
		return nil, apperrors.NewConfigurationError("loader", "no loader configured", nil)
	}
	if cfg.Store == nil {
		return nil, apperrors.NewConfigurationError("output_path", "no output store configured", nil)
	}
	mode, err := ParseMemoryMode(string(cfg.MemoryMode))
	if err != nil {
		return nil, err
	}
	cfg.MemoryMode = mode
	if cfg.Profiler == nil {
		cfg.Profiler = NewMemoryProfiler(nil)
	}
	return &Sweeper{cfg: cfg, table: &Table{}}, nil
}

// Timed reports whether rows carry timing statistics.
func (s *Sweeper) Timed() bool {
	return s.cfg.Iterations > 0
}

// Profiled reports whether rows carry memory statistics.
func (s *Sweeper) Profiled() bool {
	return s.cfg.MemoryMode == MemoryAlways || s.cfg.Iterations == 0
}

// Columns returns the artifact header for this sweep.
func (s *Sweeper) Columns() []string {
	return Columns(s.Timed(), s.Profiled())
}

// Table returns the rows completed so far.
func (s *Sweeper) Table() *Table {
	return s.table
}

// Run executes the sweep. The table is persisted after every dataset size,
// so when Run fails the store holds exactly the sizes that completed. ctx is
// only checked between sizes; a running measurement is never interrupted.
func (s *Sweeper) Run(ctx context.Context) (_ *Table, err error) {
	s.table = &Table{}
	s.warnedDegraded = false

	defer func() {
		for _, o := range s.cfg.Observers {
			o.SweepFinished(s.table, err)
		}
	}()

	datasets, err := ListDatasets(s.cfg.Root)
	if err != nil {
		return s.table, err
	}
	for _, o := range s.cfg.Observers {
		o.SweepStarted(datasets)
	}

	// Supersede the previous run's artifact before measuring anything.
	if err := s.cfg.Store.Save(s.Columns(), s.table); err != nil {
		return s.table, fmt.Errorf("failed to initialise output: %w", err)
	}

	for _, ds := range datasets {
		if err := ctx.Err(); err != nil {
			return s.table, fmt.Errorf("sweep interrupted before dataset size %d: %w", ds.Size, err)
		}

		telemetry.LogInfo("Processing dataset", "dataset_size", ds.Size, "path", ds.Path)
		start := time.Now()

		row, err := s.measure(ds)
		if err != nil {
			telemetry.LogError("Dataset failed", err, "dataset_size", ds.Size)
			return s.table, err
		}

		s.table.Rows = append(s.table.Rows, *row)
		if err := s.cfg.Store.Save(s.Columns(), s.table); err != nil {
			return s.table, fmt.Errorf("failed to checkpoint after dataset size %d: %w", ds.Size, err)
		}
		for _, o := range s.cfg.Observers {
			o.RowCompleted(*row)
		}

		telemetry.LogInfo("Dataset processed", "dataset_size", ds.Size, "elapsed", time.Since(start).String())
	}

	return s.table, nil
}

func (s *Sweeper) measure(ds Dataset) (*Row, error) {
	op := s.cfg.Loader.Bind(ds.Path)
	row := &Row{DatasetSize: ds.Size}

	if s.Timed() {
		rec, err := NewTimingEngine(s.cfg.Iterations).Measure(op)
		if err != nil {
			return nil, apperrors.NewMeasurementError(ds.Size, apperrors.PhaseTiming, err)
		}
		row.Timing = rec
	}

	if s.Profiled() {
		rec, err := s.cfg.Profiler.Profile(op)
		if err != nil {
			return nil, apperrors.NewMeasurementError(ds.Size, apperrors.PhaseMemory, err)
		}
		if rec.Degraded && !s.warnedDegraded {
			telemetry.LogWarn("Allocation profiling unavailable, reporting zero memory", "dataset_size", ds.Size)
			s.warnedDegraded = true
		}
		row.Memory = rec
	}

	return row, nil
}

// ListDatasets returns the subdirectories of root sorted by the integer
// encoded in their names. Every subdirectory name must be a non-negative
// decimal integer naming a distinct size; regular files are ignored.
func ListDatasets(root string) ([]Dataset, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, apperrors.NewConfigurationError("dataset_root", fmt.Sprintf("cannot list %s", root), err)
	}

	var datasets []Dataset
	seen := make(map[int]string)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		size, err := strconv.Atoi(e.Name())
		if err != nil || size < 0 {
			return nil, apperrors.NewConfigurationError("dataset_root",
				fmt.Sprintf("subdirectory %q is not a non-negative integer dataset size", e.Name()), err)
		}
		if prev, ok := seen[size]; ok {
			return nil, apperrors.NewConfigurationError("dataset_root",
				fmt.Sprintf("subdirectories %q and %q both name dataset size %d", prev, e.Name(), size), nil)
		}
		seen[size] = e.Name()
		datasets = append(datasets, Dataset{Size: size, Path: filepath.Join(root, e.Name())})
	}

	sort.SliceStable(datasets, func(i, j int) bool {
		return datasets[i].Size < datasets[j].Size
	})
	return datasets, nil
}
