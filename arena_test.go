package arena

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"testing"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestArena(t *testing.T, capacity int, opts ...Option) *Arena {
	t.Helper()
	a, err := New(capacity, opts...)
	require.NoError(t, err, "New(%d)", capacity)
	t.Cleanup(func() { _ = a.Release() })
	return a
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		err      error
	}{
		{"zero capacity", 0, nil},
		{"small", 16, nil},
		{"64 KiB", 64 << 10, nil},
		{"negative", -1, ErrInvalidCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(tt.capacity)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				assert.Nil(t, a)
				return
			}
			require.NoError(t, err)
			defer a.Release()
			assert.Equal(t, tt.capacity, a.Cap())
			assert.Equal(t, 0, a.Len())
			assert.Equal(t, uint64(1), a.Epoch())
			assert.Equal(t, BackingHeap, a.Backing())
		})
	}
}

func TestNewConstructionFailure(t *testing.T) {
	if strconv.IntSize < 64 {
		t.Skip("requires 64-bit int")
	}
	_, err := New(1 << 50)
	require.ErrorIs(t, err, ErrConstruction)

	_, err = New(maxInt)
	require.ErrorIs(t, err, ErrConstruction)

	_, err = New(16, WithBacking(Backing(99)))
	require.ErrorIs(t, err, ErrBackingUnsupported)
}

func TestMustNewPanics(t *testing.T) {
	assert.Panics(t, func() { MustNew(-1) })
	assert.NotPanics(t, func() { MustNew(8).Release() })
}

// Scenario: capacity 16, two 8-byte allocations fill it, the next fails,
// and Reset makes offset 0 available again.
func TestArenaFillAndReset(t *testing.T) {
	a := newTestArena(t, 16)

	r1, err := a.Allocate(8, 8)
	require.NoError(t, err)
	assert.Equal(t, uintptr(0), r1.Offset())
	assert.Equal(t, 8, a.Len())

	r2, err := a.Allocate(8, 8)
	require.NoError(t, err)
	assert.Equal(t, uintptr(8), r2.Offset())
	assert.Equal(t, 16, a.Len())

	_, err = a.Allocate(1, 1)
	require.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, 16, a.Len(), "cursor must not move on failure")

	a.Reset()
	r3, err := a.Allocate(8, 8)
	require.NoError(t, err)
	assert.Equal(t, uintptr(0), r3.Offset())
}

func TestArenaFailureIsIdempotent(t *testing.T) {
	a := newTestArena(t, 32)
	_, err := a.Allocate(20, 1)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := a.Allocate(16, 8)
		require.ErrorIs(t, err, ErrOutOfMemory, "attempt %d", i)
		assert.Equal(t, 20, a.Len(), "attempt %d", i)
	}
	assert.Equal(t, uint64(3), a.Metrics().Failures)

	// What still fits after alignment is served.
	r, err := a.Allocate(8, 8)
	require.NoError(t, err)
	assert.Equal(t, uintptr(24), r.Offset())
}

func TestArenaOverflowIsOutOfMemory(t *testing.T) {
	a := newTestArena(t, 64)
	_, err := a.Allocate(8, 8)
	require.NoError(t, err)

	_, err = a.Allocate(^uintptr(0), 1)
	require.ErrorIs(t, err, ErrOutOfMemory)
	_, err = a.Allocate(^uintptr(0)-4, 8)
	require.ErrorIs(t, err, ErrOutOfMemory)
	_, err = a.Allocate(1, uintptr(1)<<(8*unsafe.Sizeof(uintptr(0))-1))
	require.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, 8, a.Len())
}

func TestArenaZeroCapacity(t *testing.T) {
	a := newTestArena(t, 0)
	for _, size := range []uintptr{0, 1, 8, 1 << 20} {
		_, err := a.Allocate(size, 1)
		assert.ErrorIs(t, err, ErrOutOfMemory, "size %d", size)
		assert.Nil(t, a.AllocBytes(size, 1), "size %d", size)
	}
	assert.Equal(t, 0, a.Len())
	assert.Zero(t, a.Utilization())
}

func TestArenaResetWithoutAllocate(t *testing.T) {
	a := newTestArena(t, 128)
	before := a.Metrics()
	a.Reset()
	after := a.Metrics()

	assert.Equal(t, 0, after.Len)
	assert.Equal(t, before.Len, after.Len)
	assert.Equal(t, before.Peak, after.Peak)
	assert.Equal(t, before.Remaining, after.Remaining)
}

func TestArenaResetDeterminism(t *testing.T) {
	a := newTestArena(t, 4096)
	first, err := a.Allocate(24, 16)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		_, err := a.Allocate(uintptr(i+1), 4)
		require.NoError(t, err)
	}

	a.Reset()
	again, err := a.Allocate(24, 16)
	require.NoError(t, err)
	assert.Equal(t, first.Offset(), again.Offset())
	assert.NotEqual(t, first.Epoch(), again.Epoch())
}

func TestArenaResetDoesNotClear(t *testing.T) {
	a := newTestArena(t, 16)
	b := a.AllocBytes(4, 1)
	copy(b, "abcd")

	a.Reset()
	b2 := a.AllocBytes(4, 1)
	assert.Equal(t, []byte("abcd"), b2)
}

// Random allocation sequences always yield disjoint regions aligned to
// their requested alignment, both in offset and in address.
func TestArenaDisjointAligned(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	a := newTestArena(t, 1<<16)

	for round := 0; round < 5; round++ {
		var regions []Region
		for {
			size := uintptr(rng.Intn(100))
			align := uintptr(1) << rng.Intn(7) // 1..64
			r, err := a.Allocate(size, align)
			if err != nil {
				require.ErrorIs(t, err, ErrOutOfMemory)
				break
			}
			require.Zero(t, r.Offset()%align, "offset %d align %d", r.Offset(), align)

			p, err := a.Pointer(r)
			require.NoError(t, err)
			require.Zero(t, uintptr(p)%align, "address not aligned to %d", align)
			regions = append(regions, r)
		}

		sort.Slice(regions, func(i, j int) bool { return regions[i].Offset() < regions[j].Offset() })
		for i := 1; i < len(regions); i++ {
			require.LessOrEqual(t, regions[i-1].End(), regions[i].Offset(), "regions %d and %d overlap", i-1, i)
		}
		a.Reset()
	}
}

// Alignments above BaseAlign are honoured by address, whatever the base of
// each heap buffer turns out to be.
func TestArenaLargeAlignment(t *testing.T) {
	tests := []struct {
		align    uintptr
		capacity int
	}{
		{128, 200},
		{4096, 8192},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("align=%d", tt.align), func(t *testing.T) {
			for i := 0; i < 32; i++ {
				a := newTestArena(t, tt.capacity)
				a.AllocBytes(1, 1)

				require.True(t, a.Fits(16, tt.align))
				r, err := a.Allocate(16, tt.align)
				require.NoError(t, err)
				p, err := a.Pointer(r)
				require.NoError(t, err)
				require.Zero(t, uintptr(p)%tt.align, "arena %d: address %p", i, p)

				b := a.AllocBytes(16, tt.align)
				if b != nil {
					require.Zero(t, uintptr(unsafe.Pointer(unsafe.SliceData(b)))%tt.align)
					require.LessOrEqual(t, r.End(), uintptr(a.Len())-16)
				}
			}
		})
	}

	// Padding counts against capacity. Past offset 0 the next 128-aligned
	// address is at offset 64 or 128, so 65 bytes never fit in 128.
	a := newTestArena(t, 128)
	a.AllocBytes(1, 1)
	assert.False(t, a.Fits(65, 128))
	_, err := a.Allocate(65, 128)
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, 1, a.Len())
}

func TestArenaAllocBytes(t *testing.T) {
	a := newTestArena(t, 1024)

	b := a.AllocBytes(100, 8)
	require.Len(t, b, 100)
	assert.Equal(t, 100, cap(b), "capacity must be clipped")

	empty := a.AllocBytes(0, 1)
	assert.NotNil(t, empty)
	assert.Len(t, empty, 0)

	assert.Nil(t, a.AllocBytes(2000, 8))
}

func TestArenaFits(t *testing.T) {
	a := newTestArena(t, 16)
	assert.True(t, a.Fits(16, 8))
	assert.False(t, a.Fits(17, 1))

	a.AllocBytes(1, 1)
	assert.True(t, a.Fits(8, 8))
	assert.False(t, a.Fits(9, 8))
	assert.Equal(t, 1, a.Len(), "Fits must not allocate")
}

func TestArenaStaleRegion(t *testing.T) {
	a := newTestArena(t, 64)
	r, err := a.Allocate(16, 8)
	require.NoError(t, err)

	b, err := a.Bytes(r)
	require.NoError(t, err)
	require.Len(t, b, 16)

	a.Reset()
	_, err = a.Bytes(r)
	assert.ErrorIs(t, err, ErrStaleRegion)
	_, err = a.Pointer(r)
	assert.ErrorIs(t, err, ErrStaleRegion)
}

func TestArenaForeignRegion(t *testing.T) {
	a := newTestArena(t, 64)
	other := newTestArena(t, 1024)

	_, err := a.Bytes(Region{})
	assert.ErrorIs(t, err, ErrForeignRegion)

	big, err := other.Allocate(512, 8)
	require.NoError(t, err)
	_, err = a.Bytes(big)
	assert.ErrorIs(t, err, ErrForeignRegion)

	// Same epoch, inside the buffer, but past the cursor.
	_, err = a.Bytes(Region{off: 8, size: 8, epoch: a.Epoch()})
	assert.ErrorIs(t, err, ErrForeignRegion)
}

func TestArenaRelease(t *testing.T) {
	a, err := New(1024)
	require.NoError(t, err)
	r, err := a.Allocate(100, 8)
	require.NoError(t, err)

	require.NoError(t, a.Release())
	require.True(t, a.Released())
	require.NoError(t, a.Release(), "second Release must be a no-op")

	_, err = a.Allocate(8, 8)
	assert.ErrorIs(t, err, ErrReleased)
	assert.Nil(t, a.AllocBytes(8, 8))
	_, err = a.Bytes(r)
	assert.ErrorIs(t, err, ErrReleased)
	assert.False(t, a.Fits(1, 1))
	assert.True(t, a.Metrics().Released)

	// Test panic on use after release
	assert.PanicsWithValue(t, ErrReleased.Error(), func() { a.Reset() })
}

func TestArenaMmapBacking(t *testing.T) {
	a, err := New(1<<16, WithBacking(BackingMmap))
	if errors.Is(err, ErrBackingUnsupported) {
		t.Skip("mmap backing not supported on this platform")
	}
	require.NoError(t, err)

	assert.Equal(t, BackingMmap, a.Backing())
	assert.GreaterOrEqual(t, a.BaseAlign(), uintptr(4096))

	r, err := a.Allocate(4096, 4096)
	require.NoError(t, err)
	p, err := a.Pointer(r)
	require.NoError(t, err)
	assert.Zero(t, uintptr(p)%4096)

	b, err := a.Bytes(r)
	require.NoError(t, err)
	for i := range b {
		b[i] = byte(i)
	}
	assert.Equal(t, byte(255), b[255])

	require.NoError(t, a.Release())
	require.NoError(t, a.Release())
}

func TestParseBacking(t *testing.T) {
	tests := []struct {
		in   string
		want Backing
		ok   bool
	}{
		{"", BackingHeap, true},
		{"heap", BackingHeap, true},
		{"MMAP", BackingMmap, true},
		{" mmap ", BackingMmap, true},
		{"disk", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseBacking(tt.in)
		if !tt.ok {
			assert.Error(t, err, "ParseBacking(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "ParseBacking(%q)", tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.want.String(), got.String())
	}
	assert.Equal(t, "unknown", Backing(42).String())
}

func BenchmarkArenaAllocate(b *testing.B) {
	a := MustNew(1 << 20)
	defer a.Release()
	sizes := []uintptr{8, 64, 256, 1024}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("size-%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := a.Allocate(size, 8); err != nil {
					a.Reset()
				}
			}
		})
	}
}

func BenchmarkArenaVsBuiltin(b *testing.B) {
	b.Run("arena", func(b *testing.B) {
		a := MustNew(1 << 20)
		defer a.Release()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if a.AllocBytes(64, 8) == nil {
				a.Reset()
			}
		}
	})

	b.Run("builtin", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = make([]byte, 64)
		}
	})
}
