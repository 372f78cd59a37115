package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/cerebro/internal/observability"
	"github.com/jonathan/cerebro/internal/selectors"
)

var resolveCommand = &cobra.Command{
	Use:   "resolve <url>",
	Short: "Show the selector pattern a listing URL resolves to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pattern, recognized := selectors.Resolve(args[0])
		observability.NewPrinter(cmd.OutOrStdout()).PrintPattern(args[0], pattern, recognized)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCommand)
}
