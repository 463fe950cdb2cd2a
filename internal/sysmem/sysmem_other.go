//go:build !unix

package sysmem

import "unsafe"

// PageSize returns a conventional 4KB page; nothing can be mapped anyway.
func PageSize() uintptr {
	return 4096
}

// Reserve fails: anonymous reservations need a unix mmap.
func Reserve(size uintptr) (*Break, error) {
	return nil, ErrUnsupported
}

// Extend fails on this platform.
func (b *Break) Extend(incr uintptr) (unsafe.Pointer, error) {
	return nil, ErrUnsupported
}

// MapAnon fails on this platform.
func MapAnon(n uintptr) (unsafe.Pointer, error) {
	return nil, ErrUnsupported
}
