package arena_test

import (
	"fmt"
	"runtime"
	"testing"

	arena "github.com/pavanmanishd/bumparena"
)

// benchArena returns an arena released when the benchmark ends.
func benchArena(b *testing.B, capacity int) *arena.Arena {
	b.Helper()
	a := arena.MustNew(capacity)
	b.Cleanup(func() { _ = a.Release() })
	return a
}

func BenchmarkSmallAllocations(b *testing.B) {
	sizes := []uintptr{8, 16, 32, 64}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("Arena_%dB", size), func(b *testing.B) {
			a := benchArena(b, 64*1024)
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if a.AllocBytes(size, 8) == nil {
					a.Reset()
				}
			}
		})

		b.Run(fmt.Sprintf("Builtin_%dB", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = make([]byte, size)
			}
		})
	}
}

func BenchmarkLargeAllocations(b *testing.B) {
	sizes := []uintptr{1024, 8192, 64 * 1024}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("Arena_%dB", size), func(b *testing.B) {
			a := benchArena(b, 1<<20)
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if a.AllocBytes(size, 64) == nil {
					a.Reset()
				}
			}
		})

		b.Run(fmt.Sprintf("Builtin_%dB", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = make([]byte, size)
			}
		})
	}
}

// The three shapes the arenabench harness measures.
func BenchmarkTypedAllocations(b *testing.B) {
	type LargeData struct {
		Data [128]uint64
	}

	b.Run("Arena_u8", func(b *testing.B) {
		a := benchArena(b, 64*1024)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			p := arena.AllocUninitialized[uint8](a)
			if p == nil {
				a.Reset()
				continue
			}
			*p = uint8(i)
		}
	})

	b.Run("Builtin_u8", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			p := new(uint8)
			*p = uint8(i)
		}
	})

	b.Run("Arena_u64", func(b *testing.B) {
		a := benchArena(b, 64*1024)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			p := arena.AllocUninitialized[uint64](a)
			if p == nil {
				a.Reset()
				continue
			}
			*p = uint64(i)
		}
	})

	b.Run("Builtin_u64", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			p := new(uint64)
			*p = uint64(i)
		}
	})

	b.Run("Arena_LargeData", func(b *testing.B) {
		a := benchArena(b, 1<<20)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if arena.Alloc[LargeData](a) == nil {
				a.Reset()
			}
		}
	})

	b.Run("Builtin_LargeData", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = &LargeData{}
		}
	})
}

func BenchmarkSliceAllocations(b *testing.B) {
	sizes := []int{10, 100, 1000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("Arena_Slice_%d", size), func(b *testing.B) {
			a := benchArena(b, 1<<20)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if arena.AllocSlice[int](a, size) == nil {
					a.Reset()
				}
			}
		})

		b.Run(fmt.Sprintf("Arena_SliceZeroed_%d", size), func(b *testing.B) {
			a := benchArena(b, 1<<20)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if arena.AllocSliceZeroed[int](a, size) == nil {
					a.Reset()
				}
			}
		})

		b.Run(fmt.Sprintf("Builtin_Slice_%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = make([]int, size)
			}
		})
	}
}

func BenchmarkGCPressure(b *testing.B) {
	b.Run("HighGCPressure", func(b *testing.B) {
		for _, backing := range []arena.Backing{arena.BackingHeap, arena.BackingMmap} {
			b.Run("Arena_"+backing.String(), func(b *testing.B) {
				a, err := arena.New(4<<20, arena.WithBacking(backing))
				if err != nil {
					b.Skip(err)
				}
				defer a.Release()
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					for j := 0; j < 1000; j++ {
						a.AllocBytes(128, 8)
					}
					a.Reset()
				}
			})
		}

		b.Run("Builtin", func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				objs := make([][]byte, 1000)
				for j := range objs {
					objs[j] = make([]byte, 128)
				}
				runtime.KeepAlive(objs)
			}
		})
	})
}
