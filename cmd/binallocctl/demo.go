package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"unsafe"

	"github.com/spf13/cobra"

	"github.com/joshuapare/binalloc/internal/atfork"
	"github.com/joshuapare/binalloc/pkg/malloc"
)

var (
	demoProcs int
	demoChild bool
	demoStats bool
)

func init() {
	cmd := newDemoCmd()
	cmd.Flags().IntVarP(&demoProcs, "procs", "p", 2, "Number of child processes to fork")
	cmd.Flags().BoolVar(&demoStats, "stats", false, "Print allocator statistics after each run")
	cmd.Flags().BoolVar(&demoChild, "child", false, "Run as a forked demo child")
	_ = cmd.Flags().MarkHidden("child")
	rootCmd.AddCommand(cmd)
}

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the allocate/resize/zero-allocate demo in this and forked processes",
		Long: `The demo command grows ten int64 arrays by reallocation, frees them, and
then prints ten zero-allocated rows. It repeats the run in child processes
started through the fork-safe path, which quiesces the heap while forking.

Example:
  binallocctl demo
  binallocctl demo --procs 4 --stats`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if demoChild {
				return runDemo(os.Stdout)
			}
			return runDemoParent()
		},
	}
	return cmd
}

func runDemoParent() error {
	if err := runDemo(os.Stdout); err != nil {
		return err
	}

	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}
	argv := []string{self, "demo", "--child"}
	if demoStats {
		argv = append(argv, "--stats")
	}
	attr := &syscall.ProcAttr{
		Env:   os.Environ(),
		Files: []uintptr{os.Stdin.Fd(), os.Stdout.Fd(), os.Stderr.Fd()},
	}

	pids := make([]int, 0, demoProcs)
	for i := 0; i < demoProcs; i++ {
		pid, err := atfork.ForkExec(self, argv, attr)
		if err != nil {
			return fmt.Errorf("failed to start child %d: %w", i, err)
		}
		printVerbose("Started child %d (pid %d)\n", i, pid)
		pids = append(pids, pid)
	}

	var failed []string
	for _, pid := range pids {
		var ws syscall.WaitStatus
		if _, err := syscall.Wait4(pid, &ws, 0, nil); err != nil {
			return fmt.Errorf("failed to wait for pid %d: %w", pid, err)
		}
		if !ws.Exited() || ws.ExitStatus() != 0 {
			failed = append(failed, fmt.Sprintf("pid %d: status %d", pid, ws.ExitStatus()))
		}
	}
	printInfo("done\n")

	if len(failed) > 0 {
		return fmt.Errorf("demo children failed: %s", strings.Join(failed, ", "))
	}
	return nil
}

// runDemo grows arrays through Realloc, frees them, then prints rows of
// zero-allocated ints.
func runDemo(out io.Writer) error {
	const rows = 10

	var arrays [rows]unsafe.Pointer
	for i := 0; i < rows; i++ {
		p := malloc.Malloc(uintptr(i) * 8)
		if p == nil {
			return fmt.Errorf("malloc of %d int64s failed", i)
		}
		a := unsafe.Slice((*int64)(p), i)
		for j := range a {
			a[j] = int64(i + j)
		}

		q := malloc.Realloc(p, uintptr(2*i)*8)
		if q == nil {
			malloc.Free(p)
			return fmt.Errorf("realloc to %d int64s failed", 2*i)
		}
		a = unsafe.Slice((*int64)(q), 2*i)
		for j := 0; j < i; j++ {
			if a[j] != int64(i+j) {
				return fmt.Errorf("array %d: element %d lost on realloc", i, j)
			}
		}
		for j := range a {
			a[j] = int64(i + j)
		}
		arrays[i] = q
	}
	for _, p := range arrays {
		malloc.Free(p)
	}

	for i := 0; i < rows; i++ {
		p := malloc.Calloc(uintptr(i), 4)
		if p == nil {
			return fmt.Errorf("calloc of %d int32s failed", i)
		}
		var b strings.Builder
		for _, v := range unsafe.Slice((*int32)(p), i) {
			fmt.Fprintf(&b, "%d", v)
		}
		malloc.Free(p)
		if !quiet {
			fmt.Fprintf(out, "row %d: %s\n", i, b.String())
		}
	}

	if demoStats && !quiet {
		return malloc.PrintStats(out)
	}
	return nil
}
