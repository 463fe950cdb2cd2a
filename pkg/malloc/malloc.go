package malloc

import (
	"io"
	"runtime"
	"sync"
	"unsafe"

	"github.com/joshuapare/binalloc/alloc"
	"github.com/joshuapare/binalloc/internal/logger"
	"github.com/joshuapare/binalloc/internal/sysmem"
)

var (
	once    sync.Once
	heap    *alloc.Heap
	heapErr error

	threadsMu sync.Mutex
	threads   map[int]*alloc.Thread

	// shared serves every caller when the OS reports no thread identity.
	sharedMu sync.Mutex
	shared   *alloc.Thread
)

func defaultHeap() (*alloc.Heap, error) {
	once.Do(func() {
		heap, heapErr = alloc.NewHeap(nil)
		if heapErr != nil {
			logger.Error("default heap unavailable", "error", heapErr)
			return
		}
		threads = make(map[int]*alloc.Thread)
		shared = heap.NewThread()
	})
	return heap, heapErr
}

// with runs fn with the calling OS thread's context. It reports false when
// the default heap could not be created.
func with(fn func(th *alloc.Thread)) bool {
	h, err := defaultHeap()
	if err != nil {
		return false
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	tid, ok := sysmem.ThreadID()
	if !ok {
		sharedMu.Lock()
		defer sharedMu.Unlock()
		fn(shared)
		return true
	}

	threadsMu.Lock()
	th := threads[tid]
	if th == nil {
		th = h.NewThread()
		threads[tid] = th
	}
	threadsMu.Unlock()

	fn(th)
	return true
}

// Malloc returns n bytes of uninitialised memory, or nil.
func Malloc(n uintptr) unsafe.Pointer {
	var p unsafe.Pointer
	with(func(th *alloc.Thread) {
		var err error
		if p, err = th.Alloc(n); err != nil {
			logger.Warn("malloc failed", "size", n, "error", err)
		}
	})
	return p
}

// Free releases p. Free(nil) does nothing.
func Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	with(func(th *alloc.Thread) {
		th.Free(p)
	})
}

// Calloc returns zeroed memory for count elements of size bytes, or nil.
func Calloc(count, size uintptr) unsafe.Pointer {
	var p unsafe.Pointer
	with(func(th *alloc.Thread) {
		var err error
		if p, err = th.Calloc(count, size); err != nil {
			logger.Warn("calloc failed", "count", count, "size", size, "error", err)
		}
	})
	return p
}

// Realloc moves p to a block of n bytes and returns it. On failure it returns
// nil and p stays valid.
func Realloc(p unsafe.Pointer, n uintptr) unsafe.Pointer {
	var q unsafe.Pointer
	with(func(th *alloc.Thread) {
		var err error
		if q, err = th.Realloc(p, n); err != nil {
			logger.Warn("realloc failed", "size", n, "error", err)
		}
	})
	return q
}

// Stats returns a snapshot of the default heap's counters.
func Stats() alloc.Stats {
	h, err := defaultHeap()
	if err != nil {
		return alloc.Stats{}
	}
	return h.Stats()
}

// PrintStats writes the statistics report to w.
func PrintStats(w io.Writer) error {
	_, err := Stats().WriteTo(w)
	return err
}

// Heap returns the default heap, creating it if needed.
func Heap() (*alloc.Heap, error) {
	return defaultHeap()
}

// Err reports why the default heap could not be created, if it could not.
func Err() error {
	_, err := defaultHeap()
	return err
}
