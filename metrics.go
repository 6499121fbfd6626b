package arena

// Metrics is a snapshot of arena statistics.
type Metrics struct {
	Len         int     // Bytes handed out this epoch, including alignment padding
	Cap         int     // Buffer capacity in bytes
	Peak        int     // Highest cursor position ever reached; survives Reset
	Remaining   int     // Cap - Len
	Epoch       uint64  // Incremented by every Reset, starts at 1
	Allocations uint64  // Successful allocations this epoch
	Failures    uint64  // Out-of-memory failures over the arena's lifetime
	Utilization float64 // Len / Cap, 0 when Cap is 0
	Backing     Backing
	Released    bool
}

// Len returns the cursor position: bytes handed out since the last Reset.
func (a *Arena) Len() int {
	return int(a.offset)
}

// Cap returns the buffer capacity in bytes.
func (a *Arena) Cap() int {
	return int(a.capacity)
}

// Peak returns the high-water mark of the cursor. It is not reset by Reset.
func (a *Arena) Peak() int {
	return int(a.peak)
}

// Remaining returns the number of bytes after the cursor.
func (a *Arena) Remaining() int {
	return int(a.capacity - a.offset)
}

// Epoch returns the current epoch.
func (a *Arena) Epoch() uint64 {
	return a.epoch
}

// Utilization returns the ratio of bytes in use to capacity (0.0 to 1.0).
func (a *Arena) Utilization() float64 {
	if a.capacity == 0 {
		return 0
	}
	return float64(a.offset) / float64(a.capacity)
}

// Metrics returns a snapshot of arena statistics.
func (a *Arena) Metrics() Metrics {
	return Metrics{
		Len:         a.Len(),
		Cap:         a.Cap(),
		Peak:        a.Peak(),
		Remaining:   a.Remaining(),
		Epoch:       a.epoch,
		Allocations: a.allocs,
		Failures:    a.failures,
		Utilization: a.Utilization(),
		Backing:     a.buf.backing,
		Released:    a.buf.released(),
	}
}

// Thread-safe metrics for ConcurrentArena

// Len thread-safely returns the cursor position.
func (c *ConcurrentArena) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.a.Len()
}

// Cap returns the buffer capacity in bytes.
func (c *ConcurrentArena) Cap() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.a.Cap()
}

// Peak thread-safely returns the cursor high-water mark.
func (c *ConcurrentArena) Peak() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.a.Peak()
}

// Remaining thread-safely returns the free bytes after the cursor.
func (c *ConcurrentArena) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.a.Remaining()
}

// Epoch thread-safely returns the current epoch.
func (c *ConcurrentArena) Epoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.a.Epoch()
}

// Utilization thread-safely returns Len / Cap.
func (c *ConcurrentArena) Utilization() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.a.Utilization()
}

// Metrics thread-safely returns a snapshot of arena statistics.
func (c *ConcurrentArena) Metrics() Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.a.Metrics()
}
