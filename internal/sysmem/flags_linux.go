//go:build linux

package sysmem

import "golang.org/x/sys/unix"

// Inaccessible pages carry no commit charge until the break reaches them.
const reserveFlags = unix.MAP_PRIVATE | unix.MAP_ANON | unix.MAP_NORESERVE
