package main

import (
	"bufio"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOutput = `goos: linux
goarch: amd64
pkg: github.com/joshuapare/binalloc/alloc
BenchmarkAllocFree/binalloc/64-8      	50000000	        20.5 ns/op	       0 B/op	       0 allocs/op
BenchmarkAllocFree/gomake/64-8        	30000000	        41.0 ns/op	      64 B/op	       1 allocs/op
BenchmarkAllocFree/binalloc/8-8       	50000000	        20.0 ns/op	       0 B/op	       0 allocs/op
BenchmarkAllocFree/gomake/8-8         	90000000	        10.0 ns/op	       8 B/op	       1 allocs/op
{"Action":"output","Output":"BenchmarkBatch/binalloc/mixed-8 \t 1000000\t 1500 ns/op\n"}
PASS
`

func TestParseBenchmarks(t *testing.T) {
	results := parseBenchmarks(bufio.NewScanner(strings.NewReader(sampleOutput)))
	require.Len(t, results, 5)

	r := results[1]
	assert.Equal(t, "AllocFree", r.Operation)
	assert.Equal(t, "gomake", r.Impl)
	assert.Equal(t, "64", r.Size)
	assert.Equal(t, 30000000, r.Iterations)
	assert.InDelta(t, 41.0, r.NsPerOp, 0.001)
	assert.Equal(t, int64(64), r.BytesPerOp)
	assert.Equal(t, int64(1), r.AllocsPerOp)

	assert.Equal(t, "mixed", results[4].Size, "json-wrapped line")
}

func TestGenerateComparisons(t *testing.T) {
	results := parseBenchmarks(bufio.NewScanner(strings.NewReader(sampleOutput)))
	comps := generateComparisons(results)
	require.Len(t, comps, 3)

	assert.Equal(t, "8", comps[0].Size)
	assert.InDelta(t, 0.5, comps[0].Speedup, 0.001)
	assert.Equal(t, "64", comps[1].Size)
	assert.InDelta(t, 2.0, comps[1].Speedup, 0.001)
	assert.True(t, comps[2].BinallocOnly)
}

func TestGenerateMarkdownReport(t *testing.T) {
	results := parseBenchmarks(bufio.NewScanner(strings.NewReader(sampleOutput)))
	report := generateMarkdownReport(generateComparisons(results), time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	assert.Contains(t, report, "Generated: 2026-01-02 03:04:05")
	assert.Contains(t, report, "binalloc faster: 1 (50.0%)")
	assert.Contains(t, report, "| AllocFree | 64 | 20.5 | 41 | 2.00x ✓ | 64 B |")
	assert.Contains(t, report, "*binalloc only*")
}

func TestTrimProcs(t *testing.T) {
	assert.Equal(t, "64", trimProcs("64-16"))
	assert.Equal(t, "mixed", trimProcs("mixed"))
	assert.Equal(t, "a-b", trimProcs("a-b"))
}
