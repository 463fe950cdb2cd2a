package buf

import "math/bits"

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow uintptr.
func AddOverflowSafe(a, b uintptr) (uintptr, bool) {
	sum, carry := bits.Add64(uint64(a), uint64(b), 0)
	if carry != 0 || uint64(uintptr(sum)) != sum {
		return 0, false
	}
	return uintptr(sum), true
}

// MulOverflowSafe multiplies a and b, returning ok = false when the result would overflow uintptr.
// This is the count * elementSize check behind Calloc.
func MulOverflowSafe(a, b uintptr) (uintptr, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || uint64(uintptr(lo)) != lo {
		return 0, false
	}
	return uintptr(lo), true
}

// AlignUp rounds x up to the next multiple of align, which must be a power of two.
// Returns ok = false when rounding would overflow.
func AlignUp(x, align uintptr) (uintptr, bool) {
	sum, ok := AddOverflowSafe(x, align-1)
	if !ok {
		return 0, false
	}
	return sum &^ (align - 1), true
}

// PagesFor returns the number of pages of pageSize needed to hold n bytes.
func PagesFor(n, pageSize uintptr) uintptr {
	if n == 0 {
		return 0
	}
	return (n-1)/pageSize + 1
}
