package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vdjbench/internal/benchmark"
)

var showCmd = &cobra.Command{
	Use:   "show [results.csv]",
	Short: "Render a results CSV as a table",
	Long:  `Renders a results CSV written by 'vdjbench sweep'. Defaults to the configured output path.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := viper.GetString("output_path")
		if len(args) == 1 {
			path = args[0]
		}

		header, rows, err := benchmark.ReadCSV(path)
		if err != nil {
			return fmt.Errorf("failed to read results: %w", err)
		}
		if len(rows) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s has no completed dataset sizes.\n", path)
			return nil
		}
		renderTable(cmd.OutOrStdout(), header, rows)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
