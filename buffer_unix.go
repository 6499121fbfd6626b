//go:build unix

package arena

import (
	"golang.org/x/sys/unix"
)

// acquireMmap maps an anonymous private region. The kernel zero-fills it
// and aligns it to the page size.
func acquireMmap(capacity int) (buffer, error) {
	b := buffer{backing: BackingMmap, baseAlign: uintptr(unix.Getpagesize())}
	if capacity == 0 {
		b.mem = []byte{}
		return b, nil
	}
	mem, err := unix.Mmap(-1, 0, capacity, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return buffer{}, err
	}
	b.mem = mem
	b.free = unix.Munmap
	return b, nil
}
