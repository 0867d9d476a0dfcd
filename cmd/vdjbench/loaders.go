package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vdjbench/internal/loader"
)

var loadersCmd = &cobra.Command{
	Use:   "loaders",
	Short: "List the available repertoire loaders",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range loader.Names() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", name, loader.Describe(name))
		}
	},
}

func init() {
	rootCmd.AddCommand(loadersCmd)
}
