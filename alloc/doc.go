// Package alloc is a general-purpose manual memory allocator with per-thread
// free-list bins, thread-private bump arenas grown from a shared program
// break, and a best-fit large-object path backed by anonymous mappings.
//
// # Overview
//
// Memory handed out by this package lives outside the Go heap. Callers
// receive raw unsafe.Pointers to payloads and must return them with Free.
// The garbage collector neither scans nor reclaims these blocks.
//
// Every payload is preceded by a small header recording its usable size and,
// while the block is free, a free-list link:
//
//	+-----------+---------------------------+
//	| size|next |  payload (size bytes) ... |
//	+-----------+---------------------------+
//	^ header    ^ pointer returned to caller
//
// # Heap and Threads
//
// A Heap owns the process-wide state: the program break, the large-object
// free list and the statistics counters. A Thread owns per-thread state:
// three free-list bins and a private arena. Obtain one Thread per goroutine
// (or per locked OS thread, see pkg/malloc):
//
//	h, err := alloc.NewHeap(nil)
//	if err != nil {
//	    return err
//	}
//	t := h.NewThread()
//
//	p, err := t.Alloc(48) // served from the 64-byte class
//	if err != nil {
//	    return err
//	}
//	defer t.Free(p)
//
// # Size Classes
//
//	Class8:      1 -   8 bytes
//	Class64:     9 -  64 bytes
//	Class512:   65 - 512 bytes
//	ClassLarge: > 512 bytes (exact size, best fit, mmap)
//
// Small requests are rounded up to their bucket and served first from the
// thread's bin (no locking), then carved from the thread's arena. When the
// arena runs dry the thread takes the heap lock just long enough to be
// granted the next slab of the break, extending the break by GrowPages pages
// when needed.
//
// Large requests first scan the shared large list for the smallest block
// that fits. Failing that, a new anonymous mapping of whole pages is created
// with at least one page of slack, and the header records the full usable size.
//
// # Freeing
//
// Free zeroes the payload and pushes the block onto the freeing thread's bin
// (small) or the shared large list. A block that is already on the
// destination list is rejected, so a repeated Free cannot create a cycle.
// Blocks are never returned to the OS and adjacent free blocks are never
// merged.
//
// # Thread Safety
//
// Heap methods are safe for concurrent use. A Thread is not: it must be used
// by one goroutine at a time. Locks: the break lock (arena grants only), the
// large-list lock, and the counters lock, each held briefly.
//
// # Fork Safety
//
// PrepareFork, AfterForkParent and AfterForkChild implement the fork
// protocol. With Config.ForkSafe they are registered with internal/atfork.
//
// # Related Packages
//
//   - github.com/joshuapare/binalloc/pkg/malloc: drop-in Malloc/Free facade
//   - github.com/joshuapare/binalloc/internal/sysmem: break and mmap primitives
package alloc
