package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vdjbench/internal/benchmark"
)

type failingStore struct {
	Store
	appends int
}

func (f *failingStore) StartRun(run *benchmark.Run) (int64, error) { return 7, nil }

func (f *failingStore) AppendRow(int64, benchmark.Row) error {
	f.appends++
	return errors.New("disk full")
}

func (f *failingStore) FinishRun(int64, string, time.Time) error { return nil }

func TestRecorder_Sweep(t *testing.T) {
	store := newTestStore(t)
	root := t.TempDir()
	for _, name := range []string{"1", "2"} {
		require.NoError(t, os.Mkdir(filepath.Join(root, name), 0755))
	}
	fs, err := benchmark.NewFileStore(filepath.Join(t.TempDir(), "out.csv"))
	require.NoError(t, err)

	rec := NewRecorder(store, "nightly", "tenx-csv", 2)
	s, err := benchmark.NewSweeper(benchmark.SweepConfig{
		Root:       root,
		Iterations: 2,
		MemoryMode: benchmark.MemoryAlways,
		Loader:     func(string) (any, error) { return make([]byte, 2048), nil },
		Store:      fs,
		Observers:  []benchmark.Observer{rec},
	})
	require.NoError(t, err)

	_, err = s.Run(context.Background())
	require.NoError(t, err)
	require.NotZero(t, rec.RunID())

	run, err := store.LoadRun(rec.RunID())
	require.NoError(t, err)
	assert.Equal(t, "nightly", run.Label)
	assert.Equal(t, 2, run.Iterations)
	assert.Equal(t, benchmark.StatusDone, run.Status)
	require.Len(t, run.Rows, 2)
	assert.Equal(t, 1, run.Rows[0].DatasetSize)
	assert.NotNil(t, run.Rows[0].Timing)
	assert.NotNil(t, run.Rows[0].Memory)
}

func TestRecorder_AbortedSweep(t *testing.T) {
	store := newTestStore(t)
	rec := NewRecorder(store, "broken", "tenx-csv", 1)

	rec.SweepStarted(nil)
	rec.RowCompleted(timedRow(1, 0.1, 100))
	rec.SweepFinished(nil, errors.New("loader failed"))

	run, err := store.LoadRun(rec.RunID())
	require.NoError(t, err)
	assert.Equal(t, benchmark.StatusAborted, run.Status)
	assert.Len(t, run.Rows, 1)
}

func TestRecorder_StoreErrorsDoNotPanic(t *testing.T) {
	fs := &failingStore{}
	rec := NewRecorder(fs, "x", "tenx-csv", 1)

	rec.SweepStarted(nil)
	assert.Equal(t, int64(7), rec.RunID())
	rec.RowCompleted(timedRow(1, 0.1, 100))
	rec.SweepFinished(nil, nil)
	assert.Equal(t, 1, fs.appends)
}

func TestRecorder_NotStarted(t *testing.T) {
	fs := &failingStore{}
	rec := NewRecorder(fs, "x", "tenx-csv", 1)

	rec.RowCompleted(timedRow(1, 0.1, 100))
	rec.SweepFinished(nil, nil)
	assert.Zero(t, fs.appends, "rows before SweepStarted are dropped")
}
