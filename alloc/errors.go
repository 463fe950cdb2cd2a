package alloc

import "errors"

var (
	// ErrOutOfMemory indicates the break could not be extended or a mapping could not be created.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrSizeOverflow indicates the requested size cannot be represented once
	// the header and page rounding are added, or count*size overflowed.
	ErrSizeOverflow = errors.New("alloc: requested size overflows")

	// ErrUnsupported indicates the platform offers no anonymous memory.
	ErrUnsupported = errors.New("alloc: no OS memory support on this platform")
)
