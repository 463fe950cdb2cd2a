package main

import (
	"bytes"
	"os"
	"testing"
)

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan bytes.Buffer, 1)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	buf := <-done

	return buf.String(), fnErr
}

// resetFlags restores global and per-command flags to their defaults
func resetFlags() {
	verbose, quiet, logDir = false, false, ""
	statsJSON, statsWarmup, statsHost = false, 1000, false
	benchGoroutines, benchIterations, benchBatch = 8, 100000, 16
	demoProcs, demoChild, demoStats = 2, false, false
}
