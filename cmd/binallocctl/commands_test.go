package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/binalloc/alloc"
	"github.com/joshuapare/binalloc/pkg/malloc"
)

func TestStatsCommand(t *testing.T) {
	tests := []struct {
		name        string
		json        bool
		warmup      int
		wantContain []string
	}{
		{
			name:        "text report",
			warmup:      100,
			wantContain: []string{"-- binalloc stats --", "allocation requests", "free blocks"},
		},
		{
			name:        "json report",
			json:        true,
			warmup:      100,
			wantContain: []string{`"alloc_requests"`, `"free_requests"`},
		},
		{
			name:        "no warmup",
			warmup:      0,
			wantContain: []string{"blocks carved"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			statsJSON = tt.json
			statsWarmup = tt.warmup

			output, err := captureOutput(t, runStats)
			require.NoError(t, err)
			for _, want := range tt.wantContain {
				assert.Contains(t, output, want)
			}

			if tt.json {
				var s alloc.Stats
				require.NoError(t, json.Unmarshal([]byte(output), &s))
				assert.NotZero(t, s.AllocRequests)
			}
		})
	}
}

func TestStatsCommand_Host(t *testing.T) {
	resetFlags()
	statsJSON, statsHost, statsWarmup = true, true, 10

	output, err := captureOutput(t, runStats)
	require.NoError(t, err)

	var report struct {
		AllocRequests uint64 `json:"alloc_requests"`
		Host          *struct {
			Total uint64  `json:"total"`
			Share float64 `json:"allocator_share_pct"`
		} `json:"host"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &report))
	require.NotNil(t, report.Host)
	assert.NotZero(t, report.Host.Total)
	assert.Positive(t, report.Host.Share)
	assert.NotZero(t, report.AllocRequests)
}

func TestBenchCommand(t *testing.T) {
	resetFlags()
	benchGoroutines, benchIterations = 4, 500

	before := malloc.Stats().AllocRequests
	output, err := captureOutput(t, func() error { return runBench(context.Background()) })
	require.NoError(t, err)
	assert.Contains(t, output, "2,000 allocations")
	assert.Contains(t, output, "-- binalloc stats --")
	assert.Equal(t, before+2000, malloc.Stats().AllocRequests)
}

func TestDemo_Rows(t *testing.T) {
	resetFlags()

	var out bytes.Buffer
	require.NoError(t, runDemo(&out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, "row 0: ", lines[0])
	assert.Equal(t, "row 3: 000", lines[3])
	assert.Equal(t, "row 9: 000000000", lines[9])
}

func TestDemo_WithStats(t *testing.T) {
	resetFlags()
	demoStats = true

	var out bytes.Buffer
	require.NoError(t, runDemo(&out))
	assert.Contains(t, out.String(), "-- binalloc stats --")
}

func TestWorkload_RejectsNoWorkers(t *testing.T) {
	err := newWorkload(0, 10).run(context.Background())
	require.Error(t, err)
}

func TestWorkload_StopsOnCancel(t *testing.T) {
	w := newWorkload(2, 0)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- w.run(ctx) }()

	require.Eventually(t, func() bool { return w.ops.Load() > 100 }, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("workload did not stop after cancel")
	}
}

func TestWatchModel_Tick(t *testing.T) {
	w := newWorkload(1, 0)
	m := newWatchModel(w, 100*time.Millisecond)

	p := malloc.Malloc(32)
	require.NotNil(t, p)
	malloc.Free(p)

	next, cmd := m.Update(tickMsg(time.Now()))
	require.NotNil(t, cmd, "tick should schedule the next tick")

	wm := next.(watchModel)
	assert.GreaterOrEqual(t, wm.cur.AllocRequests, m.cur.AllocRequests+1)
	assert.Positive(t, wm.rate)
	assert.Equal(t, wm.rate, wm.peak)
	assert.Contains(t, wm.View(), "allocation requests")
}

func TestWatchModel_Keys(t *testing.T) {
	w := newWorkload(1, 0)
	m := newWatchModel(w, time.Second)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	require.True(t, w.paused.Load())
	assert.Contains(t, next.View(), "paused")

	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	require.True(t, next.(watchModel).showHelp)
	assert.Contains(t, next.View(), "pause workload")

	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, next.(watchModel).showHelp)
	require.Nil(t, cmd)

	_, cmd = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestWatchModel_CopyStatus(t *testing.T) {
	m := newWatchModel(newWorkload(1, 0), time.Second)

	next, _ := m.Update(copiedMsg{})
	assert.Contains(t, next.View(), "report copied")
}
