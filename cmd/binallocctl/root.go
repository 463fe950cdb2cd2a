package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/binalloc/internal/logger"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	logDir  string
)

var rootCmd = &cobra.Command{
	Use:   "binallocctl",
	Short: "Exercise and inspect the binalloc allocator",
	Long: `binallocctl drives the binalloc allocator from the command line. It runs
workloads against the default heap, prints allocator statistics, forks demo
children through the fork-safe path and renders live counters.`,
	Version: "0.1.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().
		StringVar(&logDir, "log-dir", "", "Write JSON allocator logs to this directory")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initLogging() error {
	if !verbose && logDir == "" {
		return nil
	}
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	if err := logger.Init(logger.Options{
		Enabled: true,
		LogDir:  logDir,
		Writer:  os.Stderr,
		Level:   level,
	}); err != nil {
		return fmt.Errorf("failed to init logging: %w", err)
	}
	return nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
