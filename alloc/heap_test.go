package alloc

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/binalloc/internal/logger"
)

func TestHeap_DefaultLoggerFollowsInit(t *testing.T) {
	if logAlloc {
		t.Skip("BINALLOC_LOG_ALLOC routes diagnostics to a dedicated logger")
	}
	saved := logger.L
	t.Cleanup(func() { logger.L = saved })

	mem := newFaultyMemory(t, testReserve)
	mem.failMap.Store(true)
	h, err := NewHeap(&Config{Memory: mem})
	require.NoError(t, err)
	t.Cleanup(h.Close)

	// Reconfigure logging after the heap exists.
	var out bytes.Buffer
	logger.L = slog.New(slog.NewTextHandler(&out, nil))

	_, err = h.NewThread().Alloc(1 << 16)
	require.ErrorIs(t, err, ErrOutOfMemory)
	require.Contains(t, out.String(), "anonymous mapping failed")
}

func TestHeap_ConfiguredLoggerWins(t *testing.T) {
	saved := logger.L
	t.Cleanup(func() { logger.L = saved })

	var own, global bytes.Buffer
	logger.L = slog.New(slog.NewTextHandler(&global, nil))

	mem := newFaultyMemory(t, testReserve)
	mem.failMap.Store(true)
	h := newTestHeap(t, &Config{Memory: mem, Logger: slog.New(slog.NewTextHandler(&own, nil))})

	_, err := h.NewThread().Alloc(1 << 16)
	require.Error(t, err)
	require.Contains(t, own.String(), "anonymous mapping failed")
	require.Empty(t, global.String())
}
