package alloc

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sync"
	"unsafe"

	"github.com/joshuapare/binalloc/internal/atfork"
	"github.com/joshuapare/binalloc/internal/buf"
	"github.com/joshuapare/binalloc/internal/logger"
	"github.com/joshuapare/binalloc/internal/sysmem"
)

// Heap is the process-wide half of the allocator: the program break shared by
// all thread arenas, the large-object free list and the global counters.
// Per-thread state lives in Thread. A Heap is safe for concurrent use.
type Heap struct {
	mem  Memory
	log  *slog.Logger // nil: internal/logger.L
	page uintptr
	slab uintptr // bytes granted to a thread arena at a time
	grow uintptr // bytes added per break extension
	max  uintptr // largest request whose header and page rounding still fit

	// heapMu serialises the break boundary only; it is never held while a
	// thread writes into a span it already owns.
	heapMu sync.Mutex
	used   unsafe.Pointer // end of the break span already granted; nil until first grant
	brk    unsafe.Pointer // break as last observed

	large largeList
	stats counters

	unregister func()
}

// NewHeap creates a heap. A nil config uses DefaultConfig.
func NewHeap(cfg *Config) (*Heap, error) {
	c := DefaultConfig
	if cfg != nil {
		c = *cfg
	}
	if c.GrowPages <= 0 {
		c.GrowPages = DefaultGrowPages
	}
	if c.SlabPages <= 0 {
		c.SlabPages = DefaultSlabPages
	}
	if c.HeapReserve == 0 {
		c.HeapReserve = DefaultHeapReserve
	}

	log := c.Logger
	if log == nil && logAlloc {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	mem := c.Memory
	if mem == nil {
		sys, err := sysmem.New(c.HeapReserve)
		if err != nil {
			logOr(log).Error("heap reservation failed", "bytes", c.HeapReserve, "error", err)
			if errors.Is(err, sysmem.ErrUnsupported) {
				return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
			}
			return nil, fmt.Errorf("%w: %w", ErrOutOfMemory, err)
		}
		mem = sys
	}

	page := mem.PageSize()
	slab := max(uintptr(c.SlabPages), buf.PagesFor(headerSize+MaxSmallSize, page)) * page
	grow := uintptr(c.GrowPages) * page
	if grow < slab {
		grow = slab
	}

	h := &Heap{
		mem:  mem,
		log:  log,
		page: page,
		slab: slab,
		grow: grow,
		max:  uintptr(math.MaxInt) - headerSize - page,
	}
	h.large.stats = &h.stats
	if c.ForkSafe {
		h.unregister = atfork.Register(atfork.Handler{
			Prepare: h.PrepareFork,
			Parent:  h.AfterForkParent,
			Child:   h.AfterForkChild,
		})
	}
	return h, nil
}

// diag returns the heap's diagnostic logger. Without a configured logger it
// resolves internal/logger.L on every call, so a later logger.Init applies.
func (h *Heap) diag() *slog.Logger {
	return logOr(h.log)
}

func logOr(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return logger.L
}

// NewThread returns a fresh per-thread context bound to h. Its bins and arena
// are empty; the arena is granted lazily on the first small allocation.
func (h *Heap) NewThread() *Thread {
	return &Thread{heap: h}
}

// Stats returns a consistent snapshot of the global counters.
func (h *Heap) Stats() Stats {
	return h.stats.snapshot()
}

// PageSize returns the page size of the underlying memory source.
func (h *Heap) PageSize() uintptr {
	return h.page
}

// Close detaches the heap's fork handlers. Memory is never returned to the
// OS, so blocks stay valid after Close.
func (h *Heap) Close() {
	if h.unregister != nil {
		h.unregister()
		h.unregister = nil
	}
}

// grantSlab hands out the next slab of the break, extending the break first
// when the remaining room is smaller than a slab. Caller holds heapMu.
func (h *Heap) grantSlab() (unsafe.Pointer, error) {
	if h.used == nil {
		cur, err := h.mem.Sbrk(0)
		if err != nil {
			h.diag().Warn("reading program break failed", "error", err)
			return nil, fmt.Errorf("%w: read break: %w", ErrOutOfMemory, err)
		}
		h.used, h.brk = cur, cur
	}

	if uintptr(h.brk)-uintptr(h.used) < h.slab {
		old, err := h.mem.Sbrk(h.grow)
		if err != nil {
			h.diag().Warn("break extension failed", "bytes", h.grow, "error", err)
			return nil, fmt.Errorf("%w: extend break by %d bytes: %w", ErrOutOfMemory, h.grow, err)
		}
		if old != h.brk {
			// The break moved underneath us; the new span starts at old.
			h.used = old
		}
		h.brk = unsafe.Add(old, h.grow)

		if logAlloc {
			h.diag().Info("extended break", "bytes", h.grow, "pages", h.grow/h.page)
		}
	}

	slab := h.used
	h.used = unsafe.Add(h.used, h.slab)
	return slab, nil
}
