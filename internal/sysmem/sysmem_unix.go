//go:build unix

package sysmem

import (
	"fmt"
	"math"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/binalloc/internal/buf"
)

// PageSize returns the system page size.
func PageSize() uintptr {
	return uintptr(unix.Getpagesize())
}

// Reserve maps size bytes of inaccessible address space to back a Break.
// The size is rounded up to whole pages.
func Reserve(size uintptr) (*Break, error) {
	size, ok := buf.AlignUp(size, PageSize())
	if !ok || size == 0 || size > math.MaxInt {
		return nil, fmt.Errorf("sysmem: invalid reservation size %d", size)
	}
	region, err := unix.Mmap(-1, 0, int(size), unix.PROT_NONE, reserveFlags)
	if err != nil {
		return nil, fmt.Errorf("sysmem: reserve %d bytes: %w", size, err)
	}
	return &Break{base: unsafe.Pointer(unsafe.SliceData(region)), size: size}, nil
}

// Extend makes the next incr bytes above the break accessible and moves the
// break past them, returning the previous break like sbrk(incr). incr is
// rounded up to whole pages.
func (b *Break) Extend(incr uintptr) (unsafe.Pointer, error) {
	incr, ok := buf.AlignUp(incr, PageSize())
	if !ok || incr > b.size-b.brk {
		return nil, fmt.Errorf("%w: need %d bytes, %d left: %w",
			ErrExhausted, incr, b.size-b.brk, unix.ENOMEM)
	}
	span := unsafe.Slice((*byte)(unsafe.Add(b.base, b.brk)), incr)
	if err := unix.Mprotect(span, unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return nil, fmt.Errorf("sysmem: extend break by %d bytes: %w", incr, err)
	}
	old := b.Current()
	b.brk += incr
	return old, nil
}

// MapAnon returns a fresh private anonymous read/write mapping of n bytes.
// The mapping is never unmapped by this package.
func MapAnon(n uintptr) (unsafe.Pointer, error) {
	if n == 0 || n > math.MaxInt {
		return nil, fmt.Errorf("sysmem: invalid mapping size %d", n)
	}
	region, err := unix.Mmap(-1, 0, int(n), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("sysmem: map %d bytes: %w", n, err)
	}
	return unsafe.Pointer(unsafe.SliceData(region)), nil
}
