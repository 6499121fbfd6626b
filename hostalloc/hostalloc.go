// Package hostalloc exposes an arena through the alloc/dealloc hook shape
// that host runtimes expect for bulk memory. Failures surface as nil
// pointers because that calling convention has no richer error channel.
package hostalloc

import (
	"unsafe"

	"github.com/pkg/errors"

	arena "github.com/pavanmanishd/bumparena"
)

// Layout describes a requested allocation.
type Layout struct {
	Size  uintptr
	Align uintptr
}

// NewLayout returns a Layout, rejecting alignments that are not a power of two.
func NewLayout(size, align uintptr) (Layout, error) {
	if !arena.IsPowerOfTwo(align) {
		return Layout{}, errors.Errorf("hostalloc: alignment %d is not a power of two", align)
	}
	return Layout{Size: size, Align: align}, nil
}

// LayoutOf returns the layout of T.
func LayoutOf[T any]() Layout {
	var zero T
	return Layout{Size: unsafe.Sizeof(zero), Align: unsafe.Alignof(zero)}
}

// Adapter wraps an injected arena. It never panics on exhaustion.
type Adapter struct {
	a arena.Allocator
}

// New returns an Adapter serving allocations from a.
func New(a arena.Allocator) *Adapter {
	return &Adapter{a: a}
}

// Alloc returns a pointer to l.Size bytes aligned to l.Align, or nil.
func (h *Adapter) Alloc(l Layout) unsafe.Pointer {
	b := h.a.AllocBytes(l.Size, l.Align)
	if b == nil {
		return nil
	}
	return unsafe.Pointer(unsafe.SliceData(b))
}

// AllocZeroed is like Alloc but writes zeros over the region, since the
// arena does not clear memory on Reset.
func (h *Adapter) AllocZeroed(l Layout) unsafe.Pointer {
	b := h.a.AllocBytes(l.Size, l.Align)
	if b == nil {
		return nil
	}
	clear(b)
	return unsafe.Pointer(unsafe.SliceData(b))
}

// Dealloc is a no-op; memory is reclaimed only by Reset.
func (h *Adapter) Dealloc(unsafe.Pointer, Layout) {}

// Reset invalidates everything handed out so far.
func (h *Adapter) Reset() {
	h.a.Reset()
}

// Arena returns the wrapped arena.
func (h *Adapter) Arena() arena.Allocator {
	return h.a
}
