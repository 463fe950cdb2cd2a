package alloc

import "strconv"

// Class is one of the four allocation-size buckets.
type Class uint8

const (
	Class8     Class = iota // 1..8 bytes
	Class64                 // 9..64 bytes
	Class512                // 65..512 bytes
	ClassLarge              // > 512 bytes, exact size, mapped
)

// numSmallClasses counts the classes served from thread arenas.
const numSmallClasses = 3

// MaxSmallSize is the largest request served from a thread arena.
const MaxSmallSize = 512

var classSizes = [numSmallClasses]uintptr{8, 64, 512}

// Classify maps a request of n bytes to its class and the size used for it:
// the bucket size for small classes, n itself for ClassLarge.
func Classify(n uintptr) (Class, uintptr) {
	switch {
	case n <= 8:
		return Class8, 8
	case n <= 64:
		return Class64, 64
	case n <= MaxSmallSize:
		return Class512, MaxSmallSize
	default:
		return ClassLarge, n
	}
}

// classOf recovers the class from a stored header size. Large blocks never
// carry a stored size equal to a small bucket: their size is a page multiple
// minus the header.
func classOf(size uintptr) Class {
	switch size {
	case 8:
		return Class8
	case 64:
		return Class64
	case MaxSmallSize:
		return Class512
	default:
		return ClassLarge
	}
}

// Size returns the bucket size of a small class, or 0 for ClassLarge.
func (c Class) Size() uintptr {
	if c < numSmallClasses {
		return classSizes[c]
	}
	return 0
}

// String returns a human-readable class name.
func (c Class) String() string {
	if c == ClassLarge {
		return "large"
	}
	if c < numSmallClasses {
		return strconv.Itoa(int(classSizes[c]))
	}
	return "Class(" + strconv.Itoa(int(c)) + ")"
}
