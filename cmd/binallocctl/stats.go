package main

import (
	"context"
	"fmt"
	"os"

	sigar "github.com/cloudfoundry/gosigar"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joshuapare/binalloc/alloc"

	"github.com/joshuapare/binalloc/pkg/malloc"
)

var (
	statsJSON   bool
	statsWarmup int
	statsHost   bool
)

func init() {
	cmd := newStatsCmd()
	cmd.Flags().BoolVar(&statsJSON, "json", false, "Output in JSON format")
	cmd.Flags().IntVar(&statsWarmup, "warmup", 1000, "Alloc/free cycles to run before reporting")
	cmd.Flags().BoolVar(&statsHost, "host", false, "Include host memory totals")
	rootCmd.AddCommand(cmd)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Run a warm-up workload and print allocator statistics",
		Long: `The stats command runs a short single-goroutine workload against the
default heap and prints the allocator counters.

Example:
  binallocctl stats
  binallocctl stats --warmup 0
  binallocctl stats --json
  binallocctl stats --host`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats()
		},
	}
	return cmd
}

func runStats() error {
	if err := malloc.Err(); err != nil {
		return err
	}

	if statsWarmup > 0 {
		printVerbose("Running %d warm-up cycles\n", statsWarmup)
		if err := newWorkload(1, statsWarmup).run(context.Background()); err != nil {
			return err
		}
	}

	s := malloc.Stats()
	var host *hostMemory
	if statsHost {
		h, err := readHostMemory(s)
		if err != nil {
			return err
		}
		host = &h
	}

	if statsJSON {
		return printJSON(statsReport{Stats: s, Host: host})
	}
	if _, err := s.WriteTo(os.Stdout); err != nil {
		return err
	}
	if host != nil {
		printInfo(" host memory total     : %s\n", humanize.IBytes(host.Total))
		printInfo(" host memory free      : %s\n", humanize.IBytes(host.Free))
		printInfo(" allocator share       : %.4f%%\n", host.SharePct)
	}
	return nil
}

// statsReport is the JSON shape of the stats command.
type statsReport struct {
	alloc.Stats
	Host *hostMemory `json:"host,omitempty"`
}

type hostMemory struct {
	Total    uint64  `json:"total"`
	Used     uint64  `json:"used"`
	Free     uint64  `json:"free"`
	SharePct float64 `json:"allocator_share_pct"` // arena plus mapped bytes over host total
}

func readHostMemory(s alloc.Stats) (hostMemory, error) {
	mem := sigar.Mem{}
	if err := mem.Get(); err != nil {
		return hostMemory{}, fmt.Errorf("failed to read host memory: %w", err)
	}
	h := hostMemory{Total: mem.Total, Used: mem.Used, Free: mem.Free}
	if mem.Total > 0 {
		h.SharePct = float64(s.ArenaBytes+s.MappedBytes) / float64(mem.Total) * 100
	}
	return h, nil
}
