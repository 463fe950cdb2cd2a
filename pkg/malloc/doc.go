/*
Package malloc provides a C-style facade over the binalloc engine.

# Quick Start

	p := malloc.Malloc(128)
	if p == nil {
	    log.Fatal("out of memory")
	}
	defer malloc.Free(p)

# Thread Contexts

The engine keeps small-block bins and arenas per thread. Each call here pins
the calling goroutine to its OS thread for the duration of the call and uses
the context belonging to that thread, creating it on first use. On platforms
without a thread identity a single shared context serves every caller.

Callers that manage their own goroutine-to-context mapping should use the
alloc package directly:

	h, _ := alloc.NewHeap(nil)
	th := h.NewThread()
	p, err := th.Alloc(64)

# Failure

Malloc, Calloc and Realloc return nil when the request cannot be served.
The cause is logged through the package logger; use Err to retrieve the
error from the default heap's creation.

# Fork Safety

The default heap registers fork handlers. Child processes started through
atfork.ForkExec see a quiesced heap.
*/
package malloc
