package arena

import "github.com/pkg/errors"

var (
	// ErrConstruction is returned when the backing buffer cannot be acquired.
	// The arena is unusable; construction is never retried.
	ErrConstruction = errors.New("arena: cannot acquire backing buffer")

	// ErrInvalidCapacity is returned by New for a negative capacity.
	ErrInvalidCapacity = errors.New("arena: invalid capacity")

	// ErrBackingUnsupported is returned when the requested backing is not
	// available on this platform.
	ErrBackingUnsupported = errors.New("arena: backing not supported on this platform")

	// ErrOutOfMemory is returned when an allocation does not fit in the
	// remaining capacity, or computing its end offset would overflow.
	// The cursor is left unchanged.
	ErrOutOfMemory = errors.New("arena: out of memory")

	// ErrStaleRegion is returned when a region from a previous epoch is
	// dereferenced after Reset.
	ErrStaleRegion = errors.New("arena: region used after reset")

	// ErrForeignRegion is returned when a region does not lie inside the
	// arena's buffer.
	ErrForeignRegion = errors.New("arena: region does not belong to this arena")

	// ErrReleased is returned by operations on a released arena.
	ErrReleased = errors.New("arena: use after Release()")
)
