package alloc

import (
	"fmt"
	"sync"
)

// largeList is the process-wide free list of mapped large blocks.
// The best-fit scan, the unlink and the push all run under mu, and so do
// their FreeBlocks updates, which keeps every snapshot's FreeBlocks equal to
// the blocks actually listed. Lock order: mu, then stats.mu.
type largeList struct {
	mu    sync.Mutex
	head  *header
	count int
	stats *counters
}

// bestFit unlinks and returns the smallest listed block holding at least n
// bytes. Among equal sizes the first one encountered wins.
func (l *largeList) bestFit(n uintptr) *header {
	l.mu.Lock()
	defer l.mu.Unlock()

	var best, bestPrev, prev *header
	for b := l.head; b != nil; prev, b = b, b.next {
		if b.size >= n && (best == nil || b.size < best.size) {
			best, bestPrev = b, prev
			if b.size == n {
				break
			}
		}
	}
	if best == nil {
		return nil
	}

	if bestPrev == nil {
		l.head = best.next
	} else {
		bestPrev.next = best.next
	}
	best.next = nil
	l.count--
	l.stats.reused()
	return best
}

// push returns h to the list, rejecting a block that is already listed.
// It records the free request either way.
func (l *largeList) push(h *header) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for p := l.head; p != nil; p = p.next {
		if p == h {
			l.stats.freed(false)
			return false
		}
	}
	h.next = l.head
	l.head = h
	l.count++
	l.stats.freed(true)
	return true
}

func (l *largeList) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// allocLarge serves a request above MaxSmallSize: best fit from the shared
// list, else a fresh anonymous mapping of whole pages with at least one page
// of slack. The header records the full usable size of the mapping.
func (h *Heap) allocLarge(n uintptr) (*header, error) {
	if hdr := h.large.bestFit(n); hdr != nil {
		return hdr, nil
	}

	pages := (n+headerSize-1)/h.page + 1
	length := pages * h.page

	p, err := h.mem.MapAnon(length)
	if err != nil {
		h.diag().Warn("anonymous mapping failed", "bytes", length, "request", n, "error", err)
		return nil, fmt.Errorf("%w: map %d bytes: %w", ErrOutOfMemory, length, err)
	}

	hdr := writeHeader(p, length-headerSize)
	h.stats.mapped(length)

	if logAlloc {
		h.diag().Info("mapped large block", "request", n, "pages", pages, "usable", hdr.size)
	}
	return hdr, nil
}
