package regmap

import (
	"encoding/json"

	"github.com/sarchlab/upsilonsoc/cfgerr"
	"github.com/sarchlab/upsilonsoc/mem"
)

// WordBits is the number of bits in one bus word.
const WordBits = 8 * mem.WordSize

// An Entry is one register of a compiled map.
type Entry struct {
	// Name is the name of the register instance, including the replication
	// suffix.
	Name string `json:"name"`

	// Descriptor is the name of the descriptor that declared the register.
	Descriptor string `json:"descriptor"`

	// Address is the bus address of the first word of the register.
	Address uint64 `json:"address"`

	// Offset is the address relative to the base of the map.
	Offset uint64 `json:"offset"`

	Width      uint       `json:"width"`
	Permission Permission `json:"permission"`
}

// Words returns the number of bus words the register occupies.
func (e Entry) Words() uint64 {
	return wordsOf(e.Width)
}

// ByteSize returns the number of bytes the register occupies.
func (e Entry) ByteSize() uint64 {
	return e.Words() * mem.WordSize
}

// End returns the first address after the register.
func (e Entry) End() uint64 {
	return e.Address + e.ByteSize()
}

func wordsOf(width uint) uint64 {
	return (uint64(width) + WordBits - 1) / WordBits
}

// A Map is an ordered, address-resolved set of registers. A Map never
// changes after Compile returns it.
type Map struct {
	base    uint64
	size    uint64
	entries []Entry
	index   map[string]int
}

// Compile assigns addresses to the registers that the descriptors declare.
// Registers are placed in declaration order starting at base. Each register
// takes ceil(Width/32) words of 4 bytes.
func Compile(descs []Descriptor, base uint64) (*Map, error) {
	m := &Map{
		base:  base,
		index: make(map[string]int),
	}

	declared := make(map[string]bool, len(descs))
	for _, d := range descs {
		if declared[d.Name] {
			return nil, cfgerr.New(cfgerr.ErrDuplicateDescriptorName, d.Name)
		}

		declared[d.Name] = true

		if d.Width == 0 {
			return nil, cfgerr.New(cfgerr.ErrZeroWidthRegister, d.Name)
		}
	}

	offset := uint64(0)
	for _, d := range descs {
		for i := uint(0); i < d.Instances(); i++ {
			e := Entry{
				Name:       d.InstanceName(i),
				Descriptor: d.Name,
				Address:    base + offset,
				Offset:     offset,
				Width:      d.Width,
				Permission: d.Permission,
			}

			if _, found := m.index[e.Name]; found {
				return nil, cfgerr.Newf(cfgerr.ErrDuplicateDescriptorName,
					e.Name, "replica of %s collides with another register",
					d.Name)
			}

			m.index[e.Name] = len(m.entries)
			m.entries = append(m.entries, e)
			offset += e.ByteSize()
		}
	}

	m.size = offset

	return m, nil
}

// MustCompile is like Compile but panics on error. It is meant for register
// sets that are fixed in code.
func MustCompile(descs []Descriptor, base uint64) *Map {
	m, err := Compile(descs, base)
	if err != nil {
		panic(err)
	}

	return m
}

// Base returns the address of the first register.
func (m *Map) Base() uint64 {
	return m.base
}

// Size returns the number of bytes the registers occupy.
func (m *Map) Size() uint64 {
	return m.size
}

// Len returns the number of registers.
func (m *Map) Len() int {
	return len(m.entries)
}

// Entries returns the registers in declaration order.
func (m *Map) Entries() []Entry {
	entries := make([]Entry, len(m.entries))
	copy(entries, m.entries)

	return entries
}

// Lookup finds a register by its instance name.
func (m *Map) Lookup(name string) (Entry, bool) {
	i, found := m.index[name]
	if !found {
		return Entry{}, false
	}

	return m.entries[i], true
}

// EntryAt finds the register that covers the offset.
func (m *Map) EntryAt(offset uint64) (Entry, bool) {
	lo, hi := 0, len(m.entries)
	for lo < hi {
		mid := (lo + hi) / 2
		e := m.entries[mid]

		switch {
		case offset < e.Offset:
			hi = mid
		case offset >= e.Offset+e.ByteSize():
			lo = mid + 1
		default:
			return e, true
		}
	}

	return Entry{}, false
}

// Equal tells if two maps place the same registers at the same addresses.
func (m *Map) Equal(other *Map) bool {
	if m == nil || other == nil {
		return m == other
	}

	if m.base != other.base || len(m.entries) != len(other.entries) {
		return false
	}

	for i := range m.entries {
		if m.entries[i] != other.entries[i] {
			return false
		}
	}

	return true
}

type mapJSON struct {
	Base    uint64  `json:"base"`
	Size    uint64  `json:"size"`
	Entries []Entry `json:"entries"`
}

// MarshalJSON encodes the map with its registers in declaration order.
func (m *Map) MarshalJSON() ([]byte, error) {
	return json.Marshal(mapJSON{
		Base:    m.base,
		Size:    m.size,
		Entries: m.entries,
	})
}
