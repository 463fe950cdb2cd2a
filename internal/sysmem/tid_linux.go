//go:build linux

package sysmem

import "golang.org/x/sys/unix"

// ThreadID returns the kernel id of the calling OS thread. The result is only
// stable while the goroutine is locked to its thread.
func ThreadID() (int, bool) {
	return unix.Gettid(), true
}
