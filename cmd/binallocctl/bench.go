package main

import (
	"context"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joshuapare/binalloc/pkg/malloc"
)

var (
	benchGoroutines int
	benchIterations int
	benchBatch      int
)

func init() {
	cmd := newBenchCmd()
	cmd.Flags().IntVarP(&benchGoroutines, "goroutines", "g", 8, "Number of concurrent workers")
	cmd.Flags().IntVarP(&benchIterations, "iterations", "n", 100000, "Allocations per worker")
	cmd.Flags().IntVar(&benchBatch, "batch", 16, "Live blocks a worker holds before freeing them")
	rootCmd.AddCommand(cmd)
}

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure allocation throughput",
		Long: `The bench command runs a mixed size-class alloc/free workload on several
goroutines and reports throughput followed by the allocator counters.

Example:
  binallocctl bench
  binallocctl bench -g 32 -n 50000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd.Context())
		},
	}
	return cmd
}

func runBench(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := malloc.Err(); err != nil {
		return err
	}

	w := newWorkload(benchGoroutines, benchIterations)
	if benchBatch > 0 {
		w.batch = benchBatch
	}

	printVerbose("Starting %d workers x %d allocations\n", benchGoroutines, benchIterations)
	start := time.Now()
	err := w.run(ctx)
	elapsed := time.Since(start)

	ops := w.ops.Load()
	rate := float64(ops) / elapsed.Seconds()
	printInfo("%s allocations in %v (%s ops/s)\n",
		humanize.Comma(int64(ops)), elapsed.Round(time.Millisecond), humanize.Comma(int64(rate)))

	if !quiet {
		if perr := malloc.PrintStats(os.Stdout); perr != nil {
			return perr
		}
	}
	return err
}
