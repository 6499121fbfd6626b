package arena

import "unsafe"

// WordAlign is the native word alignment, the minimum alignment of every
// backing buffer.
const WordAlign = unsafe.Alignof(uintptr(0))

// AlignUp rounds off up to the next multiple of align.
// align must be a power of two; this is not checked.
func AlignUp(off, align uintptr) uintptr {
	mask := align - 1
	return (off + mask) & ^mask
}

// IsPowerOfTwo reports whether x is a non-zero power of two.
func IsPowerOfTwo(x uintptr) bool {
	return x != 0 && x&(x-1) == 0
}
