package benchmark

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Column names of the output artifact.
const (
	ColDatasetSize  = "dataset_size"
	ColMin          = "min"
	ColMedian       = "median"
	ColMean         = "mean"
	ColMax          = "max"
	ColSD           = "sd"
	ColCI95         = "ci95"
	ColMemAlloc     = "mem_alloc"
	ColPeakMemAlloc = "peak_mem_alloc"
)

var (
	timingColumns = []string{ColMin, ColMedian, ColMean, ColMax, ColSD, ColCI95}
	memoryColumns = []string{ColMemAlloc, ColPeakMemAlloc}
)

// Columns returns the artifact header for the given measurement selection.
func Columns(timed, profiled bool) []string {
	cols := []string{ColDatasetSize}
	if timed {
		cols = append(cols, timingColumns...)
	}
	if profiled {
		cols = append(cols, memoryColumns...)
	}
	return cols
}

// Store persists the benchmark table.
type Store interface {
	// Save replaces the stored table with table.
	Save(columns []string, table *Table) error
}

// FileStore implements Store as a CSV file that is rewritten in full on
// every Save.
type FileStore struct {
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the artifact location.
func (s *FileStore) Path() string {
	return s.path
}

// Save writes the table to a temporary file next to the artifact and renames
// it into place, so a crash mid-write leaves the previous checkpoint intact.
func (s *FileStore) Save(columns []string, table *Table) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set checkpoint permissions: %w", err)
	}

	w := csv.NewWriter(tmp)
	if err := w.Write(columns); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range table.Rows {
		if err := w.Write(row.Record(columns)); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write row for dataset size %d: %w", row.DatasetSize, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close checkpoint file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

// Record renders the row as CSV fields in column order. Columns the row has
// no data for are left empty.
func (r Row) Record(columns []string) []string {
	fields := make([]string, len(columns))
	for i, col := range columns {
		fields[i] = r.field(col)
	}
	return fields
}

func (r Row) field(col string) string {
	if col == ColDatasetSize {
		return strconv.Itoa(r.DatasetSize)
	}
	if t := r.Timing; t != nil {
		switch col {
		case ColMin:
			return t.Min
		case ColMedian:
			return t.Median
		case ColMean:
			return t.Mean
		case ColMax:
			return t.Max
		case ColSD:
			return t.SD
		case ColCI95:
			return t.CI95
		}
	}
	if m := r.Memory; m != nil {
		switch col {
		case ColMemAlloc:
			return m.Alloc
		case ColPeakMemAlloc:
			return m.PeakAlloc
		}
	}
	return ""
}

// ReadCSV loads a checkpoint file, returning its header and data rows.
func ReadCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s is empty", path)
	}
	return records[0], records[1:], nil
}
