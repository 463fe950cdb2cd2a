package alloc

import (
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/binalloc/internal/buf"
	"github.com/joshuapare/binalloc/internal/sysmem"
)

// testReserve keeps each test heap's address space reservation small.
const testReserve = 64 << 20

var errSimulated = errors.New("simulated ENOMEM")

// ============================================================================
// Heap Creation Utilities
// ============================================================================

// newTestHeap creates a heap with a quiet logger and no fork registration.
// Fields set in cfg override those defaults.
func newTestHeap(t testing.TB, cfg *Config) *Heap {
	t.Helper()

	c := Config{HeapReserve: testReserve}
	if cfg != nil {
		c = *cfg
		if c.HeapReserve == 0 {
			c.HeapReserve = testReserve
		}
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	h, err := NewHeap(&c)
	require.NoError(t, err, "failed to create test heap")
	t.Cleanup(h.Close)
	return h
}

// faultyMemory wraps the real OS memory source with failure injection and
// call counting.
type faultyMemory struct {
	*sysmem.System

	failSbrk atomic.Bool
	failMap  atomic.Bool

	extensions atomic.Int32 // Sbrk calls with incr > 0
	maps       atomic.Int32

	// When set, each extension signals entered and then waits on gate.
	entered chan struct{}
	gate    chan struct{}
}

func newFaultyMemory(t testing.TB, reserve uintptr) *faultyMemory {
	t.Helper()
	sys, err := sysmem.New(reserve)
	require.NoError(t, err, "failed to reserve test memory")
	return &faultyMemory{System: sys}
}

func (m *faultyMemory) Sbrk(incr uintptr) (unsafe.Pointer, error) {
	if incr > 0 {
		m.extensions.Add(1)
		if m.entered != nil {
			m.entered <- struct{}{}
		}
		if m.gate != nil {
			<-m.gate
		}
		if m.failSbrk.Load() {
			return nil, errSimulated
		}
	}
	return m.System.Sbrk(incr)
}

func (m *faultyMemory) MapAnon(n uintptr) (unsafe.Pointer, error) {
	m.maps.Add(1)
	if m.failMap.Load() {
		return nil, errSimulated
	}
	return m.System.MapAnon(n)
}

// ============================================================================
// Block Utilities
// ============================================================================

// fill writes v to the first n bytes of p.
func fill(p unsafe.Pointer, n uintptr, v byte) {
	b := buf.Bytes(p, n)
	for i := range b {
		b[i] = v
	}
}

// requireFilled asserts the first n bytes of p all equal v.
func requireFilled(t testing.TB, p unsafe.Pointer, n uintptr, v byte) {
	t.Helper()
	for i, c := range buf.Bytes(p, n) {
		if c != v {
			require.Failf(t, "unexpected byte", "offset %d: expected %#x, got %#x", i, v, c)
		}
	}
}

// listedBlocks counts the blocks sitting on the given threads' bins and the
// heap's large list.
func listedBlocks(h *Heap, threads ...*Thread) uint64 {
	n := h.large.len()
	for _, th := range threads {
		for c := Class8; c < numSmallClasses; c++ {
			n += th.bins.len(c)
		}
	}
	return uint64(n)
}
