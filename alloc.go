package arena

import (
	"runtime"
	"unsafe"
)

// The helpers below place Go values inside an arena buffer. T must not
// contain pointers: the garbage collector does not scan arena memory, and
// mmap-backed buffers live outside the Go heap entirely.

// Alloc returns a pointer to a zeroed T stored inside the arena, or nil if
// the arena is out of memory.
func Alloc[T any](a Allocator) *T {
	p := AllocUninitialized[T](a)
	if p != nil {
		var zero T
		*p = zero
	}
	return p
}

// AllocUninitialized returns a *T located in the arena without zeroing
// memory, or nil if the arena is out of memory.
func AllocUninitialized[T any](a Allocator) *T {
	var zero T
	b := a.AllocBytes(unsafe.Sizeof(zero), unsafe.Alignof(zero))
	if b == nil {
		return nil
	}
	return (*T)(unsafe.Pointer(unsafe.SliceData(b)))
}

// AllocSlice allocates a slice of n elements of type T inside the arena.
// The elements are not initialized. Returns nil if n <= 0, the total size
// overflows, or the arena is out of memory.
func AllocSlice[T any](a Allocator, n int) []T {
	if n <= 0 {
		return nil
	}
	var zero T
	elem := unsafe.Sizeof(zero)
	if elem != 0 && uintptr(n) > ^uintptr(0)/elem {
		return nil
	}
	b := a.AllocBytes(elem*uintptr(n), unsafe.Alignof(zero))
	if b == nil {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n)
}

// AllocSliceZeroed is like AllocSlice but zeroes the elements.
func AllocSliceZeroed[T any](a Allocator, n int) []T {
	s := AllocSlice[T](a, n)
	clear(s)
	return s
}

// KeepAlive returns t and keeps a reachable until this call. Use it when t
// points into a buffer that a finalizer or Release elsewhere could free.
func KeepAlive[T any](a Allocator, t *T) *T {
	runtime.KeepAlive(a)
	return t
}
