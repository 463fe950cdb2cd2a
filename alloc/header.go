package alloc

import "unsafe"

// header is the metadata record in front of every payload.
//
// Headers live in memory the Go runtime does not manage (break pages or
// anonymous mappings), so the next link is never scanned by the collector.
type header struct {
	size uintptr // usable payload bytes; fixed once written
	next *header // free-list link; nil while the block is live
}

// headerSize is the distance from a header to its payload.
const headerSize = unsafe.Sizeof(header{})

// writeHeader stamps a fresh header at p.
func writeHeader(p unsafe.Pointer, size uintptr) *header {
	h := (*header)(p)
	h.size = size
	h.next = nil
	return h
}

// payload returns the address handed to callers.
func (h *header) payload() unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(h), headerSize)
}

// headerOf recovers the header of a payload returned by this package.
func headerOf(p unsafe.Pointer) *header {
	return (*header)(unsafe.Add(p, -int(headerSize)))
}

// SizeOf returns the usable size of the block at p, which may exceed the
// size originally requested. SizeOf(nil) is 0.
func SizeOf(p unsafe.Pointer) uintptr {
	if p == nil {
		return 0
	}
	return headerOf(p).size
}
