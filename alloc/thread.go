package alloc

import (
	"fmt"
	"unsafe"

	"github.com/joshuapare/binalloc/internal/buf"
)

// Thread is the per-thread half of the allocator: private free-list bins for
// the small classes and a private bump arena carved out of the heap's break.
//
// A Thread must only be used by one goroutine at a time. Blocks may be freed
// through a different Thread than the one that allocated them; small blocks
// then join the freeing thread's bins.
type Thread struct {
	heap *Heap
	bins bins

	// arena: cursor is the next unused byte, cursor+room is the arena end.
	cursor unsafe.Pointer
	room   uintptr
}

// Heap returns the heap this thread draws from.
func (t *Thread) Heap() *Heap {
	return t.heap
}

// Alloc returns a block of at least n usable bytes, or nil and an error.
// The request is counted before it is attempted.
func (t *Thread) Alloc(n uintptr) (unsafe.Pointer, error) {
	t.heap.stats.allocRequest()
	hdr, err := t.alloc(n)
	if err != nil {
		return nil, err
	}
	return hdr.payload(), nil
}

// Calloc allocates count*size bytes and zeroes the whole block.
func (t *Thread) Calloc(count, size uintptr) (unsafe.Pointer, error) {
	t.heap.stats.allocRequest()
	n, ok := buf.MulOverflowSafe(count, size)
	if !ok {
		return nil, fmt.Errorf("%w: %d x %d bytes", ErrSizeOverflow, count, size)
	}
	hdr, err := t.alloc(n)
	if err != nil {
		return nil, err
	}
	p := hdr.payload()
	buf.Zero(p, hdr.size)
	return p, nil
}

// Realloc moves the block at p into a new block of n bytes, copying
// min(old size, n) bytes, and frees p. A nil p behaves like Alloc(n).
// On failure p is left allocated and untouched.
func (t *Thread) Realloc(p unsafe.Pointer, n uintptr) (unsafe.Pointer, error) {
	if p == nil {
		return t.Alloc(n)
	}
	np, err := t.Alloc(n)
	if err != nil {
		return nil, err
	}
	buf.Copy(np, p, min(headerOf(p).size, n))
	t.Free(p)
	return np, nil
}

// Free returns the block at p for reuse. Free(nil) is a no-op.
//
// The payload is zeroed, then the block joins this thread's bin for its class
// or, for large blocks, the heap-wide large list. Freeing a block that is
// already on the destination list is detected and ignored.
func (t *Thread) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	hdr := headerOf(p)
	buf.Zero(p, hdr.size)

	var accepted bool
	if cls := classOf(hdr.size); cls == ClassLarge {
		accepted = t.heap.large.push(hdr)
	} else {
		accepted = t.bins.give(cls, hdr)
		t.heap.stats.freed(accepted)
	}
	if !accepted {
		t.heap.diag().Debug("double free ignored", "size", hdr.size)
	}
}

func (t *Thread) alloc(n uintptr) (*header, error) {
	if n > t.heap.max {
		return nil, fmt.Errorf("%w: %d bytes", ErrSizeOverflow, n)
	}
	cls, size := Classify(n)
	if cls == ClassLarge {
		return t.heap.allocLarge(size)
	}
	if hdr := t.bins.take(cls); hdr != nil {
		t.heap.stats.reused()
		return hdr, nil
	}
	return t.carve(size)
}

// carve bumps a fresh block of size payload bytes out of the thread arena,
// taking a new slab from the heap first when the arena is too small. The
// heap lock covers only the grant; the header is written after release.
func (t *Thread) carve(size uintptr) (*header, error) {
	need := headerSize + size
	if t.room < need {
		t.heap.heapMu.Lock()
		slab, err := t.heap.grantSlab()
		t.heap.heapMu.Unlock()
		if err != nil {
			return nil, err
		}
		t.cursor, t.room = slab, t.heap.slab
	}

	hdr := writeHeader(t.cursor, size)
	t.cursor = unsafe.Add(t.cursor, need)
	t.room -= need
	t.heap.stats.carved(size)
	return hdr, nil
}
