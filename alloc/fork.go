package alloc

import "sync"

// PrepareFork acquires every heap lock so the fork sees a quiesced heap.
// Lock order: break, large list, counters.
func (h *Heap) PrepareFork() {
	h.heapMu.Lock()
	h.large.mu.Lock()
	h.stats.mu.Lock()
}

// AfterForkParent releases the locks taken by PrepareFork. Goroutines that
// queued on them during the fork are parked on these very mutexes, so the
// parent unlocks rather than re-initialising.
func (h *Heap) AfterForkParent() {
	h.stats.mu.Unlock()
	h.large.mu.Unlock()
	h.heapMu.Unlock()
}

// AfterForkChild re-initialises every heap lock. The child runs a single
// thread, so no one else holds or waits on the inherited lock state.
func (h *Heap) AfterForkChild() {
	h.heapMu = sync.Mutex{}
	h.large.mu = sync.Mutex{}
	h.stats.mu = sync.Mutex{}
}
