package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vdjbench/internal/benchmark"
	"vdjbench/internal/db"
)

func TestLoadersCommand(t *testing.T) {
	out, err := executeCommand(rootCmd, "loaders")
	require.NoError(t, err)
	assert.Contains(t, out, "tenx-csv")
	assert.Contains(t, out, "airr-tsv")
	assert.Contains(t, out, "filtered_contig_annotations.csv")
}

func TestSweepCommand(t *testing.T) {
	root := makeTenXRoot(t, 1, 5, 20)
	output := filepath.Join(t.TempDir(), "results.csv")

	out, err := executeCommand(rootCmd, "sweep", "--root", root, "--output", output, "-n", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Benchmarking 3 dataset sizes")
	assert.Contains(t, out, "3 dataset sizes written to "+output)

	header, rows, err := benchmark.ReadCSV(output)
	require.NoError(t, err)
	assert.Equal(t, benchmark.Columns(true, true), header)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"1", "5", "20"}, []string{rows[0][0], rows[1][0], rows[2][0]})

	t.Run("Show", func(t *testing.T) {
		out, err := executeCommand(rootCmd, "show", output)
		require.NoError(t, err)
		assert.Contains(t, out, "dataset_size")
		assert.Contains(t, out, "peak_mem_alloc")
		assert.Contains(t, out, rows[2][7])
	})
}

func TestSweepCommand_MemoryOnly(t *testing.T) {
	root := makeTenXRoot(t, 2)
	output := filepath.Join(t.TempDir(), "results.csv")

	_, err := executeCommand(rootCmd, "sweep", "--root", root, "--output", output, "--iterations", "0", "--memory-mode", "untimed")
	require.NoError(t, err)

	header, rows, err := benchmark.ReadCSV(output)
	require.NoError(t, err)
	assert.Equal(t, benchmark.Columns(false, true), header)
	assert.Len(t, rows, 1)
}

func TestSweepCommand_LoaderFailureAborts(t *testing.T) {
	root := makeTenXRoot(t, 1, 2)
	require.NoError(t, os.Mkdir(filepath.Join(root, "3"), 0755)) // no annotation file
	output := filepath.Join(t.TempDir(), "results.csv")

	out, err := executeCommand(rootCmd, "sweep", "--root", root, "--output", output, "-n", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset size 3")
	assert.Contains(t, out, "Sweep aborted after 2 dataset sizes")

	_, rows, err := benchmark.ReadCSV(output)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestSweepCommand_InvalidConfig(t *testing.T) {
	_, err := executeCommand(rootCmd, "sweep", "--loader", "scanpy")
	require.Error(t, err)
	assert.Equal(t, "exit-1", err.Error())
}

func TestHistoryAndCompare(t *testing.T) {
	root := makeTenXRoot(t, 1, 4)
	output := filepath.Join(t.TempDir(), "results.csv")
	historyDB := filepath.Join(t.TempDir(), "history.db")

	out, err := executeCommand(rootCmd, "sweep", "--root", root, "--output", output, "-n", "2", "--history-db", historyDB, "--label", "baseline")
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded as run #1")

	_, err = executeCommand(rootCmd, "sweep", "--root", root, "--output", output, "-n", "2", "--history-db", historyDB)
	require.NoError(t, err)

	t.Run("List", func(t *testing.T) {
		out, err := executeCommand(rootCmd, "history", "--history-db", historyDB)
		require.NoError(t, err)
		assert.Contains(t, out, "baseline")
		assert.Contains(t, out, "tenx-csv")
		assert.Contains(t, out, benchmark.StatusDone)
	})

	t.Run("Show Run", func(t *testing.T) {
		out, err := executeCommand(rootCmd, "history", "1", "--history-db", historyDB)
		require.NoError(t, err)
		assert.Contains(t, out, "Run #1 baseline")
		assert.Contains(t, out, "mem_alloc")
	})

	t.Run("Compare", func(t *testing.T) {
		out, err := executeCommand(rootCmd, "compare", "1", "2", "--history-db", historyDB, "--threshold", "1000000")
		require.NoError(t, err)
		assert.Contains(t, out, "Δ mean")
		assert.Contains(t, out, "No regressions detected.")
	})

	t.Run("Unknown Run", func(t *testing.T) {
		_, err := executeCommand(rootCmd, "history", "99", "--history-db", historyDB)
		assert.ErrorIs(t, err, db.ErrRunNotFound)
	})
}

func TestHistoryCommand_Errors(t *testing.T) {
	t.Run("No Database", func(t *testing.T) {
		_, err := executeCommand(rootCmd, "history")
		assert.ErrorContains(t, err, "no history database configured")
	})

	t.Run("Invalid Run ID", func(t *testing.T) {
		_, err := executeCommand(rootCmd, "compare", "one", "2", "--history-db", filepath.Join(t.TempDir(), "h.db"))
		assert.ErrorContains(t, err, `invalid run ID "one"`)
	})

	t.Run("Open Failure", func(t *testing.T) {
		old := newHistoryStore
		newHistoryStore = func(string) (db.Store, error) { return nil, errors.New("locked") }
		defer func() { newHistoryStore = old }()

		_, err := executeCommand(rootCmd, "history", "--history-db", "x.db")
		assert.ErrorContains(t, err, "locked")
	})
}

func TestShowCommand_MissingFile(t *testing.T) {
	_, err := executeCommand(rootCmd, "show", filepath.Join(t.TempDir(), "absent.csv"))
	assert.ErrorContains(t, err, "failed to read results")
}

func TestSweepCommand_MetricsAddrHelp(t *testing.T) {
	flag := sweepCmd.Flags().Lookup("metrics-addr")
	require.NotNil(t, flag)
	assert.Contains(t, flag.Usage, "inflates mem_alloc")
}
