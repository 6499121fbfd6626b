package arena

// Region is a span [Offset, End) handed out by a successful allocation.
// It is a view into the arena's buffer and is tagged with the epoch it was
// allocated in, so that Bytes and Pointer can reject it after a Reset.
type Region struct {
	off   uintptr
	size  uintptr
	epoch uint64
}

// Offset returns the start of the region, relative to the buffer base.
func (r Region) Offset() uintptr { return r.off }

// Len returns the region size in bytes.
func (r Region) Len() uintptr { return r.size }

// End returns the offset one past the last byte of the region.
func (r Region) End() uintptr { return r.off + r.size }

// Epoch returns the arena epoch the region was allocated in.
func (r Region) Epoch() uint64 { return r.epoch }

// IsZero reports whether r is the zero Region, which no allocation returns.
func (r Region) IsZero() bool { return r.epoch == 0 }
