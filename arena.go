package arena

import (
	"unsafe"
)

// Allocator is the surface shared by Arena and ConcurrentArena.
type Allocator interface {
	Allocate(size, align uintptr) (Region, error)
	AllocBytes(size, align uintptr) []byte
	Bytes(r Region) ([]byte, error)
	Pointer(r Region) (unsafe.Pointer, error)
	Reset()
	Release() error
	Metrics() Metrics
}

var (
	_ Allocator = (*Arena)(nil)
	_ Allocator = (*ConcurrentArena)(nil)
)

// Arena is a bump allocator over one fixed buffer. Not goroutine-safe.
// Use ConcurrentArena for concurrent access.
type Arena struct {
	buf      buffer
	capacity uintptr
	offset   uintptr // 0 <= offset <= capacity
	epoch    uint64  // starts at 1, incremented by Reset
	peak     uintptr
	allocs   uint64
	failures uint64
}

// New creates an Arena owning a buffer of exactly capacity bytes.
// A capacity of 0 is valid; every allocation from such an arena fails.
// The caller owns the arena and must call Release exactly once when done.
func New(capacity int, opts ...Option) (*Arena, error) {
	o := buildOptions(opts)
	buf, err := acquire(capacity, o.backing)
	if err != nil {
		return nil, err
	}
	return &Arena{
		buf:      buf,
		capacity: uintptr(capacity),
		epoch:    1,
	}, nil
}

// MustNew is like New but panics if the buffer cannot be acquired.
func MustNew(capacity int, opts ...Option) *Arena {
	a, err := New(capacity, opts...)
	if err != nil {
		panic(err)
	}
	return a
}

// Allocate reserves size bytes starting at the next address that is a
// multiple of align. align must be a power of two; 0 is treated as 1.
//
// It returns ErrOutOfMemory if the region would end past the capacity or
// its end offset overflows; the cursor is not advanced in that case.
// Memory is not zeroed.
func (a *Arena) Allocate(size, align uintptr) (Region, error) {
	if a.buf.released() {
		return Region{}, ErrReleased
	}
	start, ok := a.bump(size, align)
	if !ok {
		a.failures++
		return Region{}, ErrOutOfMemory
	}
	return Region{off: start, size: size, epoch: a.epoch}, nil
}

// AllocBytes is like Allocate but returns the region's bytes directly, or
// nil on failure. The slice's capacity is clipped to its length.
func (a *Arena) AllocBytes(size, align uintptr) []byte {
	if a.buf.released() {
		return nil
	}
	start, ok := a.bump(size, align)
	if !ok {
		a.failures++
		return nil
	}
	end := start + size
	return a.buf.mem[start:end:end]
}

// bump advances the cursor. It never modifies state on failure.
func (a *Arena) bump(size, align uintptr) (uintptr, bool) {
	if a.capacity == 0 {
		return 0, false
	}
	start, ok := a.alignedStart(align)
	if !ok {
		return 0, false
	}
	end := start + size
	if end < start || end > a.capacity {
		return 0, false
	}
	a.offset = end
	if end > a.peak {
		a.peak = end
	}
	a.allocs++
	return start, true
}

// Fits reports whether Allocate(size, align) would succeed right now.
func (a *Arena) Fits(size, align uintptr) bool {
	if a.buf.released() || a.capacity == 0 {
		return false
	}
	start, ok := a.alignedStart(align)
	end := start + size
	return ok && end >= start && end <= a.capacity
}

// alignedStart returns the first offset at or past the cursor whose absolute
// address is a multiple of align. Alignments above BaseAlign depend on where
// the buffer landed, so the address is aligned rather than the offset.
func (a *Arena) alignedStart(align uintptr) (uintptr, bool) {
	if align == 0 {
		align = 1
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(a.buf.mem)))
	cur := base + a.offset
	addr := AlignUp(cur, align)
	if addr < cur {
		return 0, false
	}
	return addr - base, true
}

// Bytes returns the bytes of r. It fails with ErrStaleRegion if the arena
// was reset since r was allocated.
func (a *Arena) Bytes(r Region) ([]byte, error) {
	if err := a.check(r); err != nil {
		return nil, err
	}
	return a.buf.mem[r.off:r.End():r.End()], nil
}

// Pointer returns the address of the first byte of r, with the same checks
// as Bytes.
func (a *Arena) Pointer(r Region) (unsafe.Pointer, error) {
	if err := a.check(r); err != nil {
		return nil, err
	}
	return unsafe.Add(unsafe.Pointer(unsafe.SliceData(a.buf.mem)), r.off), nil
}

func (a *Arena) check(r Region) error {
	if a.buf.released() {
		return ErrReleased
	}
	if r.IsZero() || r.epoch > a.epoch || r.End() < r.off || r.End() > a.capacity {
		return ErrForeignRegion
	}
	if r.epoch != a.epoch {
		return ErrStaleRegion
	}
	if r.End() > a.offset {
		return ErrForeignRegion
	}
	return nil
}

// Reset rewinds the cursor to zero and starts a new epoch. Buffer contents
// are not touched. Every region allocated before the call becomes invalid.
func (a *Arena) Reset() {
	if a.buf.released() {
		panic(ErrReleased.Error())
	}
	a.offset = 0
	a.allocs = 0
	a.epoch++
}

// Release frees the buffer and makes the arena unusable. Only the first
// call releases anything; later calls return nil.
func (a *Arena) Release() error {
	return a.buf.release()
}

// Released reports whether Release has been called.
func (a *Arena) Released() bool {
	return a.buf.released()
}

// BaseAlign returns the alignment of the buffer's base address.
func (a *Arena) BaseAlign() uintptr {
	return a.buf.baseAlign
}

// Backing returns where the arena's buffer lives.
func (a *Arena) Backing() Backing {
	return a.buf.backing
}
