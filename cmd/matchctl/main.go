// Command matchctl is the CLI entry point for the matching engine: a
// batch CSV driver (run), a TCP driver (serve), and a throughput
// benchmark (bench).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "matchctl",
		Short: "Drive the fenrir limit-order matching engine",
	}
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable structured trace logging")

	cmd.AddCommand(newRunCmd(&verbose))
	cmd.AddCommand(newServeCmd(&verbose))
	cmd.AddCommand(newBenchCmd(&verbose))
	return cmd
}
