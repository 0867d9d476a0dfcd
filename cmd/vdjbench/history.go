package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vdjbench/internal/benchmark"
	"vdjbench/internal/db"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List recorded sweeps, or show the rows of one",
	Long: `Lists the sweeps recorded in the history database (--history-db), newest
first. With a run ID, prints that run's results table.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list")
}

func openHistory() (db.Store, error) {
	path := viper.GetString("history_db")
	if path == "" {
		return nil, fmt.Errorf("no history database configured (set --history-db or VDJBENCH_HISTORY_DB)")
	}
	store, err := newHistoryStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return store, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 1 {
		id, err := parseRunID(args[0])
		if err != nil {
			return err
		}
		run, err := store.LoadRun(id)
		if err != nil {
			return err
		}
		return displayRun(cmd, run)
	}

	runs, err := store.ListRuns(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No sweeps recorded.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.Label,
			r.Loader,
			strconv.Itoa(r.Iterations),
			r.Status,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			runDuration(r),
		})
	}
	renderTable(cmd.OutOrStdout(), []string{"id", "label", "loader", "iterations", "status", "started", "duration"}, rows)
	return nil
}

func displayRun(cmd *cobra.Command, run *benchmark.Run) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Run #%d %s (%s, %s)", run.ID, run.Label, run.Loader, run.Status)))
	if len(run.Rows) == 0 {
		fmt.Fprintln(out, "No completed dataset sizes.")
		return nil
	}

	var timed, profiled bool
	for _, r := range run.Rows {
		timed = timed || r.Timing != nil
		profiled = profiled || r.Memory != nil
	}
	columns := benchmark.Columns(timed, profiled)
	rows := make([][]string, 0, len(run.Rows))
	for _, r := range run.Rows {
		rows = append(rows, r.Record(columns))
	}
	renderTable(out, columns, rows)
	return nil
}

func runDuration(r benchmark.Run) string {
	if r.FinishedAt.IsZero() {
		return "-"
	}
	return benchmark.FormatDuration(r.FinishedAt.Sub(r.StartedAt))
}

func parseRunID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid run ID %q", s)
	}
	return id, nil
}

