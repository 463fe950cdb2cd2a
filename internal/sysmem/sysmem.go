// Package sysmem is the allocator's boundary with the operating system.
//
// It supplies the handful of primitives a break-and-mmap allocator needs:
// the page size, a reserved address range whose "break" is advanced in page
// multiples (the user-space equivalent of sbrk), fresh anonymous mappings for
// large objects, and the identity of the calling OS thread.
//
// Nothing here is synchronised. The allocator serialises Break mutation with
// its heap-extension lock.
package sysmem

import (
	"errors"
	"unsafe"
)

var (
	// ErrExhausted indicates the reserved break region has no room for the extension.
	ErrExhausted = errors.New("sysmem: break reservation exhausted")

	// ErrUnsupported indicates the platform has no anonymous memory support.
	ErrUnsupported = errors.New("sysmem: not supported on this platform")
)

// System is the default OS-backed memory source. It owns one Break
// reservation and maps large objects directly.
type System struct {
	brk *Break
}

// New reserves reserve bytes of address space for the break and returns a System.
func New(reserve uintptr) (*System, error) {
	brk, err := Reserve(reserve)
	if err != nil {
		return nil, err
	}
	return &System{brk: brk}, nil
}

// PageSize returns the system page size.
func (s *System) PageSize() uintptr {
	return PageSize()
}

// Sbrk advances the break by incr bytes and returns the previous break.
// Sbrk(0) returns the current break.
func (s *System) Sbrk(incr uintptr) (unsafe.Pointer, error) {
	if incr == 0 {
		return s.brk.Current(), nil
	}
	return s.brk.Extend(incr)
}

// MapAnon returns a fresh private anonymous read/write mapping of n bytes.
func (s *System) MapAnon(n uintptr) (unsafe.Pointer, error) {
	return MapAnon(n)
}

// Break is a reserved address range with a movable end-of-usable-memory mark.
// Bytes below the break are readable and writable; bytes above it are not.
type Break struct {
	base unsafe.Pointer
	size uintptr // reserved bytes
	brk  uintptr // committed bytes, always a multiple of the page size
}

// Current returns the current break address, like sbrk(0).
func (b *Break) Current() unsafe.Pointer {
	return unsafe.Add(b.base, b.brk)
}

// Committed returns the number of bytes below the break.
func (b *Break) Committed() uintptr {
	return b.brk
}

// Reserved returns the size of the reservation.
func (b *Break) Reserved() uintptr {
	return b.size
}
