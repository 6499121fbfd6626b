package arena

import (
	"strings"
	"unsafe"

	"github.com/pkg/errors"
)

// BaseAlign is the base address alignment of heap-backed buffers.
// Regions are always aligned in absolute address; those whose alignment is at
// most the buffer's base alignment are aligned in offset as well.
const BaseAlign = 64

// Backing selects where an arena's buffer comes from.
type Backing int

const (
	// BackingHeap allocates the buffer as a Go byte slice.
	BackingHeap Backing = iota
	// BackingMmap maps an anonymous private region outside the Go heap.
	BackingMmap
)

func (b Backing) String() string {
	switch b {
	case BackingHeap:
		return "heap"
	case BackingMmap:
		return "mmap"
	}
	return "unknown"
}

// ParseBacking parses "heap" or "mmap" (case-insensitive).
func ParseBacking(s string) (Backing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "heap":
		return BackingHeap, nil
	case "mmap":
		return BackingMmap, nil
	}
	return 0, errors.Errorf("arena: unknown backing %q", s)
}

// buffer owns the arena's memory. release must run exactly once.
type buffer struct {
	mem       []byte
	backing   Backing
	baseAlign uintptr
	free      func([]byte) error
}

func acquire(capacity int, backing Backing) (buffer, error) {
	if capacity < 0 {
		return buffer{}, errors.Wrapf(ErrInvalidCapacity, "capacity %d", capacity)
	}
	var (
		b   buffer
		err error
	)
	switch backing {
	case BackingHeap:
		b, err = acquireHeap(capacity)
	case BackingMmap:
		b, err = acquireMmap(capacity)
	default:
		err = errors.Wrapf(ErrBackingUnsupported, "backing %d", backing)
	}
	if err != nil {
		if errors.Is(err, ErrBackingUnsupported) || errors.Is(err, ErrInvalidCapacity) {
			return buffer{}, err
		}
		return buffer{}, errors.Wrapf(ErrConstruction, "%d bytes (%s): %v", capacity, backing, err)
	}
	return b, nil
}

func acquireHeap(capacity int) (buffer, error) {
	b := buffer{backing: BackingHeap, baseAlign: BaseAlign}
	if capacity == 0 {
		b.mem = []byte{}
		return b, nil
	}
	if capacity > maxInt-(BaseAlign-1) {
		return buffer{}, errors.Errorf("capacity %d exceeds addressable size", capacity)
	}
	raw, err := makeBytes(capacity + BaseAlign - 1)
	if err != nil {
		return buffer{}, err
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	skip := int(AlignUp(base, BaseAlign) - base)
	b.mem = raw[skip : skip+capacity : skip+capacity]
	return b, nil
}

// makeBytes turns a runtime allocation panic into an error.
func makeBytes(n int) (raw []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("%v", r)
		}
	}()
	return make([]byte, n), nil
}

// release drops the buffer. Later calls are no-ops.
func (b *buffer) release() error {
	mem, free := b.mem, b.free
	b.mem, b.free = nil, nil
	if mem == nil || free == nil {
		return nil
	}
	return free(mem)
}

func (b *buffer) released() bool {
	return b.mem == nil
}

const maxInt = int(^uint(0) >> 1)
