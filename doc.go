// Package arena implements a fixed-capacity bump allocator (memory arena) for Go.
//
// # Overview
//
// An arena hands out disjoint, aligned byte regions from a single buffer that
// is sized once at construction. Each allocation advances a cursor; Reset
// rewinds it to zero, invalidating every outstanding region in O(1). There is
// no per-region free and the buffer never grows.
//
// # Basic Usage
//
//	a, err := arena.New(64 << 10) // 64 KiB
//	if err != nil {
//		return err // the buffer could not be acquired
//	}
//	defer a.Release()
//
//	r, err := a.Allocate(128, 8)
//	if errors.Is(err, arena.ErrOutOfMemory) {
//		a.Reset() // or fall back to make()
//	}
//	b, _ := a.Bytes(r)
//
//	// Typed values (T must be pointer-free)
//	p := arena.Alloc[Header](a)
//	s := arena.AllocSlice[uint64](a, 100)
//
//	a.Reset() // O(1), all regions above are now invalid
//
// # Thread Safety
//
// Arena is for a single owner. ConcurrentArena serializes cursor updates with
// a mutex, so concurrent Allocate calls always get disjoint regions:
//
//	c := arena.MustNewConcurrent(1 << 20)
//	defer c.Release()
//	buf := c.AllocBytes(1024, 8)
//
// Reset on a ConcurrentArena is atomic, but the caller must ensure no
// goroutine still uses regions from the previous epoch.
//
// # Regions and Epochs
//
// Every Region records the epoch it was allocated in. Bytes and Pointer
// return ErrStaleRegion for regions allocated before the most recent Reset.
// Slices returned by AllocBytes carry no such check: using them after Reset
// reads whatever the next epoch wrote there.
//
// # Memory Layout
//
// Regions are aligned by absolute address. Heap-backed buffers have a base
// aligned to BaseAlign (64 bytes) and mmap-backed buffers are page aligned, so
// for alignments up to the base alignment the offset is aligned too. Larger
// alignments may skip up to align-1 bytes of padding.
// Memory is never zeroed by Allocate, AllocBytes or Reset.
//
// # Metrics and Monitoring
//
//	m := a.Metrics()
//	fmt.Printf("Utilization: %.2f%%\n", m.Utilization*100)
//	fmt.Printf("Peak: %d of %d bytes\n", m.Peak, m.Cap)
//
// The arenaprom package exports the same snapshot as Prometheus metrics.
package arena
