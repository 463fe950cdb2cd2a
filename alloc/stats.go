package alloc

import (
	"bytes"
	"io"
	"sync"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Stats is a consistent snapshot of the heap's global counters.
type Stats struct {
	ArenaBytes    uint64 `json:"arena_bytes"`    // payload bytes carved from thread arenas
	MappedBytes   uint64 `json:"mapped_bytes"`   // bytes of anonymous mappings created for large blocks
	Blocks        uint64 `json:"blocks"`         // blocks carved from thread arenas
	AllocRequests uint64 `json:"alloc_requests"` // Alloc, Calloc and Realloc calls that allocate, successful or not
	FreeRequests  uint64 `json:"free_requests"`  // Free calls with a non-nil pointer
	FreeBlocks    uint64 `json:"free_blocks"`    // blocks currently sitting on a free list
	RejectedFrees uint64 `json:"rejected_frees"` // frees refused as double frees
}

// counters holds the live Stats behind their own lock, so statistics never
// serialise the allocation paths behind the heap or large-list locks.
type counters struct {
	mu sync.Mutex
	s  Stats
}

func (c *counters) allocRequest() {
	c.mu.Lock()
	c.s.AllocRequests++
	c.mu.Unlock()
}

func (c *counters) carved(size uintptr) {
	c.mu.Lock()
	c.s.Blocks++
	c.s.ArenaBytes += uint64(size)
	c.mu.Unlock()
}

func (c *counters) mapped(length uintptr) {
	c.mu.Lock()
	c.s.MappedBytes += uint64(length)
	c.mu.Unlock()
}

// reused records a block leaving a free list.
func (c *counters) reused() {
	c.mu.Lock()
	c.s.FreeBlocks--
	c.mu.Unlock()
}

func (c *counters) freed(accepted bool) {
	c.mu.Lock()
	c.s.FreeRequests++
	if accepted {
		c.s.FreeBlocks++
	} else {
		c.s.RejectedFrees++
	}
	c.mu.Unlock()
}

func (c *counters) snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s
}

// WriteTo writes the human-readable statistics report to w.
func (s Stats) WriteTo(w io.Writer) (int64, error) {
	p := message.NewPrinter(language.English)
	var b bytes.Buffer

	p.Fprintf(&b, "\n -- binalloc stats --\n")
	p.Fprintf(&b, " arena bytes allocated : %d (%s)\n", s.ArenaBytes, humanize.IBytes(s.ArenaBytes))
	p.Fprintf(&b, " mmap bytes allocated  : %d (%s)\n", s.MappedBytes, humanize.IBytes(s.MappedBytes))
	p.Fprintf(&b, " blocks carved         : %d\n", s.Blocks)
	p.Fprintf(&b, " allocation requests   : %d\n", s.AllocRequests)
	p.Fprintf(&b, " free requests         : %d\n", s.FreeRequests)
	p.Fprintf(&b, " free blocks           : %d\n", s.FreeBlocks)
	p.Fprintf(&b, " rejected frees        : %d\n", s.RejectedFrees)

	n, err := w.Write(b.Bytes())
	return int64(n), err
}

// String returns the report as a string.
func (s Stats) String() string {
	var b bytes.Buffer
	s.WriteTo(&b)
	return b.String()
}
