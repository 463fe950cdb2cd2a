package buf

import (
	"testing"
	"unsafe"
)

func TestZeroAndCopy(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	dst := make([]byte, len(src))

	Copy(unsafe.Pointer(&dst[0]), unsafe.Pointer(&src[0]), 6)
	for i := range 6 {
		if dst[i] != src[i] {
			t.Fatalf("byte %d = %d, want %d", i, dst[i], src[i])
		}
	}
	if dst[6] != 0 || dst[7] != 0 {
		t.Fatalf("Copy wrote past n: %v", dst)
	}

	Zero(unsafe.Pointer(&src[2]), 4)
	want := []byte{1, 2, 0, 0, 0, 0, 7, 8}
	for i := range want {
		if src[i] != want[i] {
			t.Fatalf("after Zero byte %d = %d, want %d", i, src[i], want[i])
		}
	}

	if b := Bytes(nil, 10); b != nil {
		t.Fatalf("Bytes(nil) should be nil")
	}
	Zero(nil, 0)
	Copy(nil, nil, 0)
}
