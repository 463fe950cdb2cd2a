package buf

import (
	"math"
	"testing"
)

func TestAddOverflowSafe(t *testing.T) {
	if sum, ok := AddOverflowSafe(10, 5); !ok || sum != 15 {
		t.Fatalf("AddOverflowSafe(10,5)=%d,%v want 15,true", sum, ok)
	}
	if _, ok := AddOverflowSafe(math.MaxUint64, 1); ok {
		t.Fatalf("expected overflow when adding to MaxUint64")
	}
	if sum, ok := AddOverflowSafe(math.MaxUint64-1, 1); !ok || sum != math.MaxUint64 {
		t.Fatalf("AddOverflowSafe at the edge = %d,%v", sum, ok)
	}
}

func TestMulOverflowSafe(t *testing.T) {
	if p, ok := MulOverflowSafe(0, math.MaxUint64); !ok || p != 0 {
		t.Fatalf("zero operand should never overflow, got %d,%v", p, ok)
	}
	if p, ok := MulOverflowSafe(1<<20, 1<<10); !ok || p != 1<<30 {
		t.Fatalf("MulOverflowSafe(1M,1K)=%d,%v", p, ok)
	}
	if _, ok := MulOverflowSafe(1<<33, 1<<33); ok {
		t.Fatalf("expected overflow for 2^66")
	}
}

func TestAlignUpAndPagesFor(t *testing.T) {
	cases := []struct{ x, align, want uintptr }{
		{0, 8, 0},
		{1, 8, 8},
		{8, 8, 8},
		{4097, 4096, 8192},
	}
	for _, c := range cases {
		got, ok := AlignUp(c.x, c.align)
		if !ok || got != c.want {
			t.Fatalf("AlignUp(%d,%d)=%d,%v want %d", c.x, c.align, got, ok, c.want)
		}
	}
	if _, ok := AlignUp(math.MaxUint64, 8); ok {
		t.Fatalf("AlignUp should report overflow near MaxUint64")
	}

	if got := PagesFor(0, 4096); got != 0 {
		t.Fatalf("PagesFor(0) = %d", got)
	}
	if got := PagesFor(4096, 4096); got != 1 {
		t.Fatalf("PagesFor(4096) = %d", got)
	}
	if got := PagesFor(4097, 4096); got != 2 {
		t.Fatalf("PagesFor(4097) = %d", got)
	}
}
