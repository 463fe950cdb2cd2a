//go:build !linux

package sysmem

// ThreadID reports that no per-thread identity is available.
func ThreadID() (int, bool) {
	return 0, false
}
