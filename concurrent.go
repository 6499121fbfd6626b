package arena

import (
	"sync"
	"unsafe"
)

// ConcurrentArena is a mutex-protected Arena, safe for concurrent callers.
// The lock guards only the cursor metadata. Regions returned in the same
// epoch are disjoint, so writing into them needs no further locking.
//
// Reset is atomic with respect to Allocate, but the caller must still make
// sure no goroutine uses a region from the previous epoch after it.
type ConcurrentArena struct {
	mu sync.Mutex
	a  *Arena
}

// NewConcurrent creates a ConcurrentArena owning capacity bytes.
func NewConcurrent(capacity int, opts ...Option) (*ConcurrentArena, error) {
	a, err := New(capacity, opts...)
	if err != nil {
		return nil, err
	}
	return &ConcurrentArena{a: a}, nil
}

// MustNewConcurrent is like NewConcurrent but panics on error.
func MustNewConcurrent(capacity int, opts ...Option) *ConcurrentArena {
	c, err := NewConcurrent(capacity, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Allocate thread-safely reserves size bytes aligned to align.
func (c *ConcurrentArena) Allocate(size, align uintptr) (Region, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.a.Allocate(size, align)
}

// AllocBytes thread-safely allocates and returns the region's bytes, or nil.
func (c *ConcurrentArena) AllocBytes(size, align uintptr) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.a.AllocBytes(size, align)
}

// Fits thread-safely reports whether an allocation would currently succeed.
// The answer may be stale by the time the caller acts on it.
func (c *ConcurrentArena) Fits(size, align uintptr) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.a.Fits(size, align)
}

// Bytes thread-safely validates r and returns its bytes.
func (c *ConcurrentArena) Bytes(r Region) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.a.Bytes(r)
}

// Pointer thread-safely validates r and returns its address.
func (c *ConcurrentArena) Pointer(r Region) (unsafe.Pointer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.a.Pointer(r)
}

// Reset thread-safely rewinds the cursor and starts a new epoch.
func (c *ConcurrentArena) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.a.Reset()
}

// Release thread-safely frees the buffer.
func (c *ConcurrentArena) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.a.Release()
}

// Released thread-safely reports whether Release has been called.
func (c *ConcurrentArena) Released() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.a.Released()
}

// BaseAlign returns the alignment of the buffer's base address.
func (c *ConcurrentArena) BaseAlign() uintptr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.a.BaseAlign()
}

// Backing returns where the arena's buffer lives.
func (c *ConcurrentArena) Backing() Backing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.a.Backing()
}
