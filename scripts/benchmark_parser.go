package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// BenchmarkResult represents a parsed benchmark result.
type BenchmarkResult struct {
	Name        string
	Operation   string
	Size        string
	Impl        string // "binalloc" or "gomake"
	Iterations  int
	NsPerOp     float64
	BytesPerOp  int64
	AllocsPerOp int64
}

// ComparisonResult pairs a binalloc result with its Go heap counterpart.
type ComparisonResult struct {
	Operation    string
	Size         string
	Binalloc     BenchmarkResult
	GoHeap       BenchmarkResult
	Speedup      float64 // Go heap ns/op divided by binalloc ns/op
	BinallocOnly bool
}

var (
	inputFile = flag.String(
		"input",
		"",
		"Input file with benchmark output (stdin if not specified)",
	)
	outputFile = flag.String("output", "", "Output markdown file (stdout if not specified)")
	quiet      = flag.Bool("quiet", false, "Suppress progress output")
)

// benchmarkRegex matches lines such as
// BenchmarkAllocFree/binalloc/64-8    10000000    12.4 ns/op    0 B/op    0 allocs/op
var benchmarkRegex = regexp.MustCompile(
	`^(Benchmark\S+)\s+(\d+)\s+([\d.]+)\s+ns/op(?:\s+([\d.]+)\s+B/op)?(?:\s+([\d.]+)\s+allocs/op)?`,
)

func main() {
	flag.Parse()

	var in io.Reader = os.Stdin
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening input file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	results := parseBenchmarks(bufio.NewScanner(in))
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Parsed %d benchmark results\n", len(results))
	}

	comparisons := generateComparisons(results)
	report := generateMarkdownReport(comparisons, time.Now())

	if *outputFile == "" {
		fmt.Fprint(os.Stdout, report)
		return
	}
	if err := os.WriteFile(*outputFile, []byte(report), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
		os.Exit(1)
	}
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", *outputFile)
	}
}

func parseBenchmarks(scanner *bufio.Scanner) []BenchmarkResult {
	var results []BenchmarkResult

	for scanner.Scan() {
		line := scanner.Text()

		// go test -json wraps each output line in an event
		var event struct{ Output string }
		if err := json.Unmarshal([]byte(line), &event); err == nil && event.Output != "" {
			line = event.Output
		}

		m := benchmarkRegex.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}

		// Format: Benchmark<Operation>/<impl>/<size>-<procs>
		parts := strings.Split(m[1], "/")
		if len(parts) != 3 {
			continue
		}

		r := BenchmarkResult{
			Name:      m[1],
			Operation: strings.TrimPrefix(parts[0], "Benchmark"),
			Impl:      parts[1],
			Size:      trimProcs(parts[2]),
		}
		r.Iterations, _ = strconv.Atoi(m[2])
		r.NsPerOp, _ = strconv.ParseFloat(m[3], 64)
		if m[4] != "" {
			r.BytesPerOp, _ = strconv.ParseInt(m[4], 10, 64)
		}
		if m[5] != "" {
			r.AllocsPerOp, _ = strconv.ParseInt(m[5], 10, 64)
		}
		results = append(results, r)
	}

	return results
}

// trimProcs drops the -GOMAXPROCS suffix the test runner appends.
func trimProcs(s string) string {
	if i := strings.LastIndex(s, "-"); i > 0 {
		if _, err := strconv.Atoi(s[i+1:]); err == nil {
			return s[:i]
		}
	}
	return s
}

func generateComparisons(results []BenchmarkResult) []ComparisonResult {
	type key struct {
		operation string
		size      string
	}

	grouped := make(map[key]map[string]BenchmarkResult)
	for _, r := range results {
		k := key{r.Operation, r.Size}
		if grouped[k] == nil {
			grouped[k] = make(map[string]BenchmarkResult)
		}
		grouped[k][r.Impl] = r
	}

	var comparisons []ComparisonResult
	for k, impls := range grouped {
		ours, ok := impls["binalloc"]
		if !ok {
			continue
		}
		c := ComparisonResult{Operation: k.operation, Size: k.size, Binalloc: ours}
		if theirs, ok := impls["gomake"]; ok && ours.NsPerOp > 0 {
			c.GoHeap = theirs
			c.Speedup = theirs.NsPerOp / ours.NsPerOp
		} else {
			c.BinallocOnly = true
		}
		comparisons = append(comparisons, c)
	}

	sort.Slice(comparisons, func(i, j int) bool {
		if comparisons[i].Operation != comparisons[j].Operation {
			return comparisons[i].Operation < comparisons[j].Operation
		}
		return sizeOrder(comparisons[i].Size) < sizeOrder(comparisons[j].Size)
	})

	return comparisons
}

// sizeOrder sorts numeric sizes numerically and named variants after them.
func sizeOrder(s string) float64 {
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	return 1e18
}

func generateMarkdownReport(comparisons []ComparisonResult, now time.Time) string {
	var sb strings.Builder

	sb.WriteString("# Benchmark Report\n\n")
	fmt.Fprintf(&sb, "Generated: %s\n\n", now.Format("2006-01-02 15:04:05"))

	faster, slower, total := 0, 0, 0.0
	for _, c := range comparisons {
		if c.BinallocOnly {
			continue
		}
		if c.Speedup >= 1.0 {
			faster++
		} else {
			slower++
		}
		total += c.Speedup
	}

	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- **Total benchmarks**: %d\n", len(comparisons))
	if n := faster + slower; n > 0 {
		fmt.Fprintf(&sb, "  - binalloc faster: %d (%.1f%%)\n", faster, float64(faster)/float64(n)*100)
		fmt.Fprintf(&sb, "  - Go heap faster: %d (%.1f%%)\n", slower, float64(slower)/float64(n)*100)
		fmt.Fprintf(&sb, "  - Average speedup: **%.2fx**\n", total/float64(n))
	}
	sb.WriteString("\n")

	sb.WriteString("## Detailed Results\n\n")
	sb.WriteString("| Operation | Size | binalloc (ns/op) | Go heap (ns/op) | Speedup | Go heap (B/op) |\n")
	sb.WriteString("|-----------|------|------------------|-----------------|---------|----------------|\n")

	for _, c := range comparisons {
		if c.BinallocOnly {
			fmt.Fprintf(&sb, "| %s | %s | %s | *N/A* | *binalloc only* | *N/A* |\n",
				c.Operation, c.Size, formatNs(c.Binalloc.NsPerOp))
			continue
		}
		indicator := "✓"
		if c.Speedup < 1.0 {
			indicator = "✗"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %.2fx %s | %s |\n",
			c.Operation,
			c.Size,
			formatNs(c.Binalloc.NsPerOp),
			formatNs(c.GoHeap.NsPerOp),
			c.Speedup,
			indicator,
			humanize.IBytes(uint64(c.GoHeap.BytesPerOp)),
		)
	}

	sb.WriteString("\n## Notes\n\n")
	sb.WriteString("- **Speedup > 1.0**: binalloc is faster ✓\n")
	sb.WriteString("- **Speedup < 1.0**: the Go heap is faster ✗\n")
	sb.WriteString("- binalloc memory lives outside the Go heap, so its B/op is always 0\n")

	return sb.String()
}

func formatNs(ns float64) string {
	return humanize.CommafWithDigits(ns, 1)
}
