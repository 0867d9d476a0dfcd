package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"vdjbench/internal/benchmark"
)

var compareThreshold float64

var compareCmd = &cobra.Command{
	Use:   "compare <base-run-id> <run-id>",
	Short: "Compare two recorded sweeps size by size",
	Long: `Compares the mean load time and memory of two runs from the history
database for every dataset size they share. Changes larger than --threshold
percent are flagged.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().Float64Var(&compareThreshold, "threshold", 10.0, "Percentage change flagged as a regression")
}

func runCompare(cmd *cobra.Command, args []string) error {
	baseID, err := parseRunID(args[0])
	if err != nil {
		return err
	}
	currID, err := parseRunID(args[1])
	if err != nil {
		return err
	}

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	base, err := store.LoadRun(baseID)
	if err != nil {
		return err
	}
	curr, err := store.LoadRun(currID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	comparisons := benchmark.Compare(*base, *curr)
	if len(comparisons) == 0 {
		fmt.Fprintf(out, "Runs #%d and #%d share no dataset sizes.\n", base.ID, curr.ID)
		return nil
	}

	var regressions int
	rows := make([][]string, 0, len(comparisons))
	for _, c := range comparisons {
		rows = append(rows, []string{
			strconv.Itoa(c.DatasetSize),
			meanOf(c.Prev), meanOf(c.Curr), percent(c.MeanDiff),
			allocOf(c.Prev), allocOf(c.Curr), percent(c.AllocDiff),
		})
		if c.MeanDiff > compareThreshold || c.AllocDiff > compareThreshold {
			regressions++
		}
	}
	renderTable(out, []string{"dataset_size", "mean (base)", "mean", "Δ mean", "mem_alloc (base)", "mem_alloc", "Δ mem_alloc"}, rows)

	if regressions > 0 {
		fmt.Fprintln(out, failStyle.Render(fmt.Sprintf("⚠ %d dataset sizes regressed by more than %.1f%%", regressions, compareThreshold)))
	} else {
		fmt.Fprintln(out, okStyle.Render("No regressions detected."))
	}
	return nil
}

func meanOf(r benchmark.Row) string {
	if r.Timing == nil {
		return "-"
	}
	return r.Timing.Mean
}

func allocOf(r benchmark.Row) string {
	if r.Memory == nil {
		return "-"
	}
	return r.Memory.Alloc
}

func percent(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}
