package main

import (
	"fmt"
	"os"

	"fenrir/internal/csv"
	"fenrir/internal/engine"
	"fenrir/internal/logging"

	"github.com/spf13/cobra"
)

// newRunCmd builds the batch CSV driver: read every order from the input
// file in order, feed the engine, write every result row, then print
// accumulated parse errors as a summary block after the matching loop —
// not interleaved with it.
func newRunCmd(verbose *bool) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Replay a CSV order stream through the engine and write execution reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(input, output, *verbose)
		},
	}
	cmd.Flags().StringVar(&input, "input", "data/input.csv", "input CSV path")
	cmd.Flags().StringVar(&output, "output", "data/output.csv", "output CSV path")
	return cmd
}

func runBatch(inputPath, outputPath string, verbose bool) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("opening output: %w", err)
	}
	defer out.Close()

	reader, err := csv.NewReader(in)
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	writer, err := csv.NewWriter(out)
	if err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	log := logging.Nop()
	if verbose {
		log = logging.New(os.Stderr, true)
	}
	eng := engine.New(log)

	for {
		order, err := reader.Next()
		if err != nil {
			return fmt.Errorf("reading order: %w", err)
		}
		if order == nil {
			break
		}

		results, err := eng.Process(*order)
		if err != nil {
			fmt.Fprintf(os.Stderr, "order %d: %v\n", order.OrderID, err)
			continue
		}
		if err := writer.WriteResults(results); err != nil {
			return fmt.Errorf("writing results: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Err(); err != nil {
		return fmt.Errorf("flushing output: %w", err)
	}

	if errs := reader.Errors(); len(errs) > 0 {
		fmt.Fprintf(os.Stderr, "\n=== parse errors (%d) ===\n", len(errs))
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "line %d: %s\n  -> %q\n", e.Line, e.Message, e.Raw)
		}
	}
	return nil
}
