package main

import (
	"fmt"
	"math/rand"
	"time"

	"fenrir/internal/common"
	"fenrir/internal/engine"
	"fenrir/internal/logging"

	"github.com/spf13/cobra"
)

func newBenchCmd(verbose *bool) *cobra.Command {
	var orders int
	var instruments int

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure order throughput against an in-memory engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(orders, instruments, *verbose)
		},
	}
	cmd.Flags().IntVar(&orders, "orders", 1_000_000, "number of synthetic orders to process")
	cmd.Flags().IntVar(&instruments, "instruments", 4, "number of distinct instruments to spread orders across")
	return cmd
}

func runBench(count, instrumentCount int, verbose bool) error {
	log := logging.Nop()
	if verbose {
		log = logging.New(nil, true)
	}
	eng := engine.New(log)

	instruments := make([]string, instrumentCount)
	for i := range instruments {
		instruments[i] = fmt.Sprintf("INSTR-%d", i)
	}

	rng := rand.New(rand.NewSource(1))
	orders := make([]common.Order, count)
	for i := range orders {
		side := common.Buy
		if i%2 == 1 {
			side = common.Sell
		}
		price := 90 + rng.Float64()*20
		qty := uint64(1 + rng.Intn(100))
		o, err := common.NewLimitOrder(uint64(i), uint64(i+1), instruments[i%instrumentCount], side, qty, price, common.New)
		if err != nil {
			return fmt.Errorf("building synthetic order %d: %w", i, err)
		}
		orders[i] = o
	}

	start := time.Now()
	for _, o := range orders {
		if _, err := eng.Process(o); err != nil {
			return fmt.Errorf("processing order %d: %w", o.OrderID, err)
		}
	}
	elapsed := time.Since(start)

	fmt.Printf("processed %d orders across %d instruments in %s (%.0f orders/sec)\n",
		count, instrumentCount, elapsed, float64(count)/elapsed.Seconds())
	return nil
}
