package addrspace

import (
	"github.com/sarchlab/upsilonsoc/cfgerr"
)

// An Allocator picks bases for new regions of a space. A region takes a
// power-of-two sized window that is aligned to its size. Only the region
// itself is mapped; the rest of the window stays unmapped and no other
// region is placed there. Cached regions are placed from address 0 and must
// end before the I/O region. Uncached regions are placed from the I/O region
// origin.
type Allocator struct {
	space    *Space
	ioOrigin uint64
	limit    uint64
	windows  []Region
}

// NewAllocator creates an allocator for the space. Addresses from ioOrigin
// up to limit form the I/O region.
func NewAllocator(space *Space, ioOrigin, limit uint64) *Allocator {
	return &Allocator{
		space:    space,
		ioOrigin: ioOrigin,
		limit:    limit,
	}
}

// WindowSize returns the size of the window that a region of the given size
// takes.
func WindowSize(size uint64) uint64 {
	window := uint64(1)
	for window < size {
		window <<= 1
	}

	return window
}

// Allocate finds the first free window that can hold size bytes.
func (a *Allocator) Allocate(
	name string,
	size uint64,
	cached bool,
) (uint64, error) {
	if size == 0 {
		return 0, cfgerr.New(cfgerr.ErrZeroSizeRegion, name)
	}

	window := WindowSize(size)

	origin, end := a.ioOrigin, a.limit
	if cached {
		origin, end = 0, a.ioOrigin
	}

	base := alignUp(origin, window)
	for base >= origin && base+window <= end {
		other, found := a.firstTaken(base, window)
		if !found {
			return base, nil
		}

		base = alignUp(other.End(), window)
	}

	return 0, cfgerr.Newf(cfgerr.ErrOverlappingRegion, name,
		"no free window of 0x%x bytes in [0x%x, 0x%x) of %s",
		window, origin, end, a.space.name)
}

// Place allocates a base and adds the region there.
func (a *Allocator) Place(
	name string,
	size uint64,
	access Access,
) (Region, error) {
	base, err := a.Allocate(name, size, access.Cached())
	if err != nil {
		return Region{}, err
	}

	err = a.space.AddRegion(name, base, size, access)
	if err != nil {
		return Region{}, err
	}

	a.windows = append(a.windows,
		Region{Name: name, Base: base, Size: WindowSize(size)})

	r, _ := a.space.Region(name)

	return r, nil
}

// Window returns the window reserved for a region placed by the allocator.
func (a *Allocator) Window(name string) (Region, bool) {
	for _, w := range a.windows {
		if w.Name == name {
			return w, true
		}
	}

	return Region{}, false
}

func (a *Allocator) firstTaken(base, size uint64) (Region, bool) {
	for _, w := range a.windows {
		if w.overlaps(base, size) {
			return w, true
		}
	}

	return a.space.firstOverlap(base, size)
}

func alignUp(addr, align uint64) uint64 {
	return (addr + align - 1) &^ (align - 1)
}
