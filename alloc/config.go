package alloc

import (
	"log/slog"
	"os"
	"unsafe"
)

// Runtime trace flag for growth and mapping events - controlled by BINALLOC_LOG_ALLOC env var.
var logAlloc = os.Getenv("BINALLOC_LOG_ALLOC") != ""

const (
	// DefaultGrowPages is how many pages one break extension adds.
	DefaultGrowPages = 100

	// DefaultSlabPages is how many pages a thread arena receives per grant.
	DefaultSlabPages = 1

	// DefaultHeapReserve is the address space reserved for the break.
	// Reserved pages cost nothing until the break reaches them.
	DefaultHeapReserve = 1 << 30
)

// Memory is the OS boundary the heap draws from.
// internal/sysmem.System is the production implementation.
type Memory interface {
	// PageSize returns the allocation granule for Sbrk and MapAnon.
	PageSize() uintptr

	// Sbrk advances the program break by incr bytes and returns the previous
	// break. Sbrk(0) returns the current break.
	Sbrk(incr uintptr) (unsafe.Pointer, error)

	// MapAnon returns a fresh zeroed read/write mapping of n bytes.
	MapAnon(n uintptr) (unsafe.Pointer, error)
}

// Config controls heap construction. Zero fields fall back to defaults.
type Config struct {
	// GrowPages is the number of pages each break extension adds.
	GrowPages int

	// SlabPages is the number of pages handed to a thread arena at a time.
	// It is raised if one largest small block would not fit.
	SlabPages int

	// HeapReserve is the address space reserved for the break when Memory is nil.
	HeapReserve uintptr

	// Memory overrides the OS memory source (tests inject faults here).
	Memory Memory

	// Logger receives OS failure diagnostics. Nil uses internal/logger.L as it
	// stands when each message is logged.
	Logger *slog.Logger

	// ForkSafe registers the heap's fork handlers with internal/atfork.
	ForkSafe bool
}

// DefaultConfig is used when NewHeap is given a nil config.
var DefaultConfig = Config{
	GrowPages:   DefaultGrowPages,
	SlabPages:   DefaultSlabPages,
	HeapReserve: DefaultHeapReserve,
	ForkSafe:    true,
}
