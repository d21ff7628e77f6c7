// Package addrspace builds the address spaces of the processors of a SoC.
// A space maps disjoint address ranges to regions. The regions of an
// auxiliary core are mirrored into the space of the host so that the host
// can inspect them.
package addrspace

import (
	"log"
	"sort"

	"github.com/sarchlab/upsilonsoc/cfgerr"
	"github.com/sarchlab/upsilonsoc/mem"
	"github.com/sarchlab/upsilonsoc/sim"
)

// A Region is a named address range of a space.
type Region struct {
	Name   string
	Base   uint64
	Size   uint64
	Access Access
}

// End returns the first address after the region.
func (r Region) End() uint64 {
	return r.Base + r.Size
}

// Contains tells if the address falls in the region.
func (r Region) Contains(addr uint64) bool {
	return addr >= r.Base && addr-r.Base < r.Size
}

func (r Region) overlaps(base, size uint64) bool {
	return base < r.End() && r.Base < base+size
}

// A Mirror is told about every region added to a space.
type Mirror interface {
	MirrorRegion(space *Space, region Region) error
}

// MirrorFunc turns a function into a Mirror.
type MirrorFunc func(space *Space, region Region) error

// MirrorRegion calls the function.
func (f MirrorFunc) MirrorRegion(space *Space, region Region) error {
	return f(space, region)
}

// An Option configures a space.
type Option func(s *Space)

// WithMirror makes the space report every new region to the mirror.
func WithMirror(m Mirror) Option {
	return func(s *Space) {
		s.mirror = m
	}
}

// A Space is the address space of one processor.
type Space struct {
	name    string
	mirror  Mirror
	regions []Region
	byBase  []int
	byName  map[string]int
	sealed  bool
}

// NewSpace creates an empty space.
func NewSpace(name string, opts ...Option) *Space {
	s := &Space{
		name:   name,
		byName: make(map[string]int),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the name of the space.
func (s *Space) Name() string {
	return s.name
}

// AddRegion adds a region to the space. The slave behind the access is set
// up to decode addresses relative to base. If the space has a mirror, the
// mirror is told about the region and the region is only kept if the mirror
// accepts it.
func (s *Space) AddRegion(
	name string,
	base, size uint64,
	access Access,
) error {
	if s.sealed {
		return cfgerr.Newf(cfgerr.ErrFinalized, name,
			"space %s is sealed", s.name)
	}

	if size == 0 {
		return cfgerr.New(cfgerr.ErrZeroSizeRegion, name)
	}

	if _, found := s.byName[name]; found {
		return cfgerr.Newf(cfgerr.ErrDuplicateRegion, name,
			"space %s already has the region", s.name)
	}

	if base+size < base {
		return cfgerr.Newf(cfgerr.ErrOverlappingRegion, name,
			"[0x%x, 0x%x+0x%x) wraps around", base, base, size)
	}

	if other, found := s.firstOverlap(base, size); found {
		return cfgerr.Newf(cfgerr.ErrOverlappingRegion, name,
			"[0x%x, 0x%x) intersects %s [0x%x, 0x%x) in %s",
			base, base+size, other.Name, other.Base, other.End(), s.name)
	}

	region := Region{Name: name, Base: base, Size: size, Access: access}

	if err := access.check(); err != nil {
		return err
	}

	if s.mirror != nil {
		if err := s.mirror.MirrorRegion(s, region); err != nil {
			return err
		}
	}

	if err := access.bind(base); err != nil {
		return err
	}

	s.insert(region)

	return nil
}

func (s *Space) firstOverlap(base, size uint64) (Region, bool) {
	for _, r := range s.regions {
		if r.overlaps(base, size) {
			return r, true
		}
	}

	return Region{}, false
}

func (s *Space) insert(region Region) {
	index := len(s.regions)
	s.regions = append(s.regions, region)
	s.byName[region.Name] = index

	pos := sort.Search(len(s.byBase), func(i int) bool {
		return s.regions[s.byBase[i]].Base > region.Base
	})
	s.byBase = append(s.byBase, 0)
	copy(s.byBase[pos+1:], s.byBase[pos:])
	s.byBase[pos] = index
}

// Seal stops the space from taking new regions.
func (s *Space) Seal() {
	s.sealed = true
}

// Sealed tells if the space is sealed.
func (s *Space) Sealed() bool {
	return s.sealed
}

// Regions returns the regions in the order that they are added.
func (s *Space) Regions() []Region {
	regions := make([]Region, len(s.regions))
	copy(regions, s.regions)

	return regions
}

// Region finds a region by name.
func (s *Space) Region(name string) (Region, bool) {
	i, found := s.byName[name]
	if !found {
		return Region{}, false
	}

	return s.regions[i], true
}

// Find decodes an address into the region that contains it and the offset
// of the address in the region.
func (s *Space) Find(addr uint64) (Region, uint64, bool) {
	pos := sort.Search(len(s.byBase), func(i int) bool {
		return s.regions[s.byBase[i]].Base > addr
	})

	if pos == 0 {
		return Region{}, 0, false
	}

	r := s.regions[s.byBase[pos-1]]
	if !r.Contains(addr) {
		return Region{}, 0, false
	}

	return r, addr - r.Base, true
}

// PortMapper returns a mapper that tells masters which slave port serves an
// address of the space.
func (s *Space) PortMapper() mem.AddressToPortMapper {
	return &portMapper{space: s}
}

type portMapper struct {
	space *Space
}

func (m *portMapper) Find(address uint64) sim.RemotePort {
	r, _, found := m.space.Find(address)
	if !found {
		log.Panicf("address 0x%x is not mapped in %s",
			address, m.space.name)
	}

	port := r.Access.Port()
	if port == nil {
		log.Panicf("region %s of %s has no slave port",
			r.Name, m.space.name)
	}

	return port.AsRemote()
}
