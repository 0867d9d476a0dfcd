package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vdjbench/internal/benchmark"
	"vdjbench/internal/config"
	"vdjbench/internal/db"
	"vdjbench/internal/loader"
	"vdjbench/internal/notify"
	"vdjbench/internal/telemetry"
)

// Factories allow mocking in tests.
var (
	newHistoryStore = func(path string) (db.Store, error) {
		return db.NewSQLiteStore(path)
	}
	startMetricsServer = telemetry.StartMetricsServer
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Benchmark a loader on every dataset size under the root",
	Long: `Runs the configured loader against each integer-named subdirectory of the
dataset root in ascending size order. Each size is timed over --iterations
repetitions and profiled once for memory; the results table is rewritten after
every size so an interrupted sweep keeps the sizes that completed.

With --iterations 0 only memory is measured.`,
	Args: cobra.NoArgs,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	f := sweepCmd.Flags()
	f.IntP("iterations", "n", config.DefaultIterations, "Timing repetitions per dataset size (0 = memory only)")
	f.String("root", config.DefaultDatasetRoot, "Directory holding one subdirectory per dataset size")
	f.StringP("output", "o", config.DefaultOutputPath, "CSV results file")
	f.String("loader", config.DefaultLoader, "Loader to benchmark (see 'vdjbench loaders')")
	f.String("memory-mode", config.DefaultMemoryMode, "When to profile memory: always or untimed")
	f.String("label", "", "Run label recorded in history (default is the loader name)")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address during the sweep (scrapes allocate, which inflates mem_alloc)")

	viper.BindPFlag("iterations", f.Lookup("iterations"))
	viper.BindPFlag("dataset_root", f.Lookup("root"))
	viper.BindPFlag("output_path", f.Lookup("output"))
	viper.BindPFlag("loader", f.Lookup("loader"))
	viper.BindPFlag("memory_mode", f.Lookup("memory-mode"))
	viper.BindPFlag("label", f.Lookup("label"))
	viper.BindPFlag("metrics_addr", f.Lookup("metrics-addr"))
}

func runSweep(cmd *cobra.Command, args []string) error {
	s := config.Current()
	out := cmd.OutOrStdout()

	load, err := loader.Lookup(s.Loader, loader.Options{Filename: s.LoaderFilename})
	if err != nil {
		return err
	}
	mode, err := benchmark.ParseMemoryMode(s.MemoryMode)
	if err != nil {
		return err
	}
	store, err := benchmark.NewFileStore(s.OutputPath)
	if err != nil {
		return err
	}

	metrics := telemetry.NewSweepMetrics()
	observers := []benchmark.Observer{&metricsObserver{m: metrics}}
	if s.MetricsAddr != "" {
		go func() {
			if err := startMetricsServer(s.MetricsAddr, metrics); err != nil {
				telemetry.LogError("Metrics server stopped", err, "addr", s.MetricsAddr)
			}
		}()
	}

	var recorder *db.Recorder
	if s.HistoryDB != "" {
		history, err := newHistoryStore(s.HistoryDB)
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer history.Close()
		recorder = db.NewRecorder(history, s.Label, s.Loader, s.Iterations)
		observers = append(observers, recorder)
	}
	if s.SlackWebhookURL != "" {
		observers = append(observers, notify.NewSweepObserver(notify.NewSlackNotifier(s.SlackWebhookURL), s.Label))
	}
	observers = append(observers, &progressObserver{w: out})

	sweeper, err := benchmark.NewSweeper(benchmark.SweepConfig{
		Root:       s.DatasetRoot,
		Iterations: s.Iterations,
		MemoryMode: mode,
		Loader:     load,
		Store:      store,
		Observers:  observers,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telemetry.LogInfo("Starting sweep", "root", s.DatasetRoot, "loader", s.Loader, "iterations", s.Iterations, "memory_mode", string(mode))
	table, runErr := sweeper.Run(ctx)

	if len(table.Rows) > 0 {
		rows := make([][]string, 0, len(table.Rows))
		for _, r := range table.Rows {
			rows = append(rows, r.Record(sweeper.Columns()))
		}
		renderTable(out, sweeper.Columns(), rows)
	}

	if runErr != nil {
		fmt.Fprintln(out, failStyle.Render(fmt.Sprintf("✘ Sweep aborted after %d dataset sizes; %s holds the completed rows", len(table.Rows), store.Path())))
		return runErr
	}

	fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("✔ %d dataset sizes written to %s", len(table.Rows), store.Path())))
	if recorder != nil && recorder.RunID() != 0 {
		fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("Recorded as run #%d", recorder.RunID())))
	}
	return nil
}
