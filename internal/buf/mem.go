// Package buf contains size arithmetic and raw memory helpers for the allocator.
//
// The memory helpers operate on regions the Go runtime does not manage
// (mmap'd or break-extended pages). Callers guarantee that [p, p+n) is mapped.
package buf

import "unsafe"

// Bytes views n bytes starting at p as a byte slice.
func Bytes(p unsafe.Pointer, n uintptr) []byte {
	if p == nil || n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(p), n)
}

// Zero clears n bytes starting at p.
func Zero(p unsafe.Pointer, n uintptr) {
	clear(Bytes(p, n))
}

// Copy copies n bytes from src to dst. The regions may overlap.
func Copy(dst, src unsafe.Pointer, n uintptr) {
	if n == 0 || dst == src {
		return
	}
	copy(Bytes(dst, n), Bytes(src, n))
}
