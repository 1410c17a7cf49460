// Package main is the entry point for the quarry CLI.
package main

import (
	"fmt"
	"os"

	"github.com/girardinsamuel/quarry/cmd/quarry/commands"
	"github.com/girardinsamuel/quarry/internal/debug"
	"github.com/spf13/cobra"
)

// Version information (set by build).
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "quarry",
		Short:   "Fluent SQL query builder for Go",
		Long:    "Quarry compiles fluent query chains into dialect-correct SQL with bound parameters",
		Version: fmt.Sprintf("%s (commit: %s)", Version, Commit),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			debug.Init(verbose)
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "path to quarry.yaml")

	rootCmd.AddCommand(commands.NewConnectionsCommand())
	rootCmd.AddCommand(commands.NewPingCommand())
	rootCmd.AddCommand(commands.NewExecCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd.Execute()
}
