package alloc

// bins is a thread's set of free-list heads, one per small class.
// LIFO; touched only by the owning thread, so no lock.
type bins struct {
	heads [numSmallClasses]*header
	lens  [numSmallClasses]int
}

// take pops the most recently freed block of class c, or returns nil.
func (b *bins) take(c Class) *header {
	h := b.heads[c]
	if h == nil {
		return nil
	}
	b.heads[c] = h.next
	h.next = nil
	b.lens[c]--
	return h
}

// give pushes h onto class c. A block already on the list is rejected
// (double free) and give returns false. The scan is O(list length).
func (b *bins) give(c Class, h *header) bool {
	for p := b.heads[c]; p != nil; p = p.next {
		if p == h {
			return false
		}
	}
	h.next = b.heads[c]
	b.heads[c] = h
	b.lens[c]++
	return true
}

func (b *bins) len(c Class) int {
	return b.lens[c]
}
