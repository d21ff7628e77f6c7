package regmap

import (
	"log"
	"sync"

	"github.com/sarchlab/upsilonsoc/cfgerr"
	"github.com/sarchlab/upsilonsoc/mem"
)

// A Bank is the hardware side of a compiled map. It holds the value of every
// register and serves them to the bus as a resource. Offsets are relative to
// the base of the map.
//
// Bus writes to status registers are dropped. Hardware updates status
// registers with SetStatus and reads storage registers with Storage.
type Bank struct {
	name      string
	regMap    *Map
	lock      sync.Mutex
	words     []uint32
	registers map[string]*Register
	watchers  map[string][]func(value uint64)
}

// Bind creates a bank that holds the registers of the map. All registers
// start at zero.
func (m *Map) Bind(name string) *Bank {
	b := &Bank{
		name:      name,
		regMap:    m,
		words:     make([]uint32, m.size/mem.WordSize),
		registers: make(map[string]*Register, len(m.entries)),
		watchers:  make(map[string][]func(value uint64)),
	}

	for _, e := range m.entries {
		b.registers[e.Name] = &Register{bank: b, entry: e}
	}

	return b
}

// Name returns the name of the bank.
func (b *Bank) Name() string {
	return b.name
}

// Size returns the number of bytes the bank decodes.
func (b *Bank) Size() uint64 {
	return b.regMap.size
}

// Map returns the map that the bank is bound to.
func (b *Bank) Map() *Map {
	return b.regMap
}

// ReadWord returns the word at the offset.
func (b *Bank) ReadWord(offset uint64) uint32 {
	b.offsetMustBeValid(offset)

	b.lock.Lock()
	defer b.lock.Unlock()

	return b.words[offset/mem.WordSize]
}

// WriteWord updates the word at the offset if it belongs to a storage
// register.
func (b *Bank) WriteWord(offset uint64, value uint32) {
	b.offsetMustBeValid(offset)

	e, _ := b.regMap.EntryAt(offset)
	if e.Permission != ReadWrite {
		return
	}

	wordInReg := (offset - e.Offset) / mem.WordSize

	b.lock.Lock()
	b.words[offset/mem.WordSize] = value & wordMask(e, wordInReg)
	b.lock.Unlock()

	watchers := b.watchers[e.Name]
	if len(watchers) == 0 {
		return
	}

	v := b.registers[e.Name].Value()
	for _, w := range watchers {
		w(v)
	}
}

// Watch registers a function that is called with the new value of a storage
// register after every bus write to it.
func (b *Bank) Watch(name string, f func(value uint64)) error {
	r, err := b.Register(name)
	if err != nil {
		return err
	}

	if r.entry.Permission != ReadWrite {
		return cfgerr.Newf(cfgerr.ErrRegisterKind, name,
			"only storage registers can be watched")
	}

	b.watchers[name] = append(b.watchers[name], f)

	return nil
}

func (b *Bank) offsetMustBeValid(offset uint64) {
	if offset%mem.WordSize != 0 {
		log.Panicf("%s: offset 0x%x is not word aligned", b.name, offset)
	}

	if offset >= b.regMap.size {
		log.Panicf("%s: offset 0x%x is beyond the register bank",
			b.name, offset)
	}
}

// Register returns the handle of a register.
func (b *Bank) Register(name string) (*Register, error) {
	r, found := b.registers[name]
	if !found {
		return nil, cfgerr.Newf(cfgerr.ErrUnknownName, name,
			"no such register in %s", b.name)
	}

	return r, nil
}

// MustRegister is like Register but panics if the register does not exist.
func (b *Bank) MustRegister(name string) *Register {
	r, err := b.Register(name)
	if err != nil {
		panic(err)
	}

	return r
}

// SetStatus sets the value of a status register, as hardware does.
func (b *Bank) SetStatus(name string, value uint64) error {
	r, err := b.Register(name)
	if err != nil {
		return err
	}

	if r.entry.Permission != ReadOnly {
		return cfgerr.Newf(cfgerr.ErrRegisterKind, name,
			"not a status register")
	}

	r.Set(value)

	return nil
}

// Storage returns the value of a storage register, as hardware sees it.
func (b *Bank) Storage(name string) (uint64, error) {
	r, err := b.Register(name)
	if err != nil {
		return 0, err
	}

	if r.entry.Permission != ReadWrite {
		return 0, cfgerr.Newf(cfgerr.ErrRegisterKind, name,
			"not a storage register")
	}

	return r.Value(), nil
}

// Values returns the value of every register, keyed by name.
func (b *Bank) Values() map[string]uint64 {
	values := make(map[string]uint64, len(b.registers))
	for name, r := range b.registers {
		values[name] = r.Value()
	}

	return values
}

// A Register is the handle of one register in a bank.
type Register struct {
	bank  *Bank
	entry Entry
}

// Entry returns the map entry of the register.
func (r *Register) Entry() Entry {
	return r.entry
}

// Value assembles the words of the register. The word at the lowest address
// is the most significant one.
func (r *Register) Value() uint64 {
	r.mustFitUint64()

	b := r.bank
	first := r.entry.Offset / mem.WordSize

	b.lock.Lock()
	defer b.lock.Unlock()

	value := uint64(0)
	for i := uint64(0); i < r.entry.Words(); i++ {
		value = value<<WordBits | uint64(b.words[first+i])
	}

	return value
}

// Set updates the register from the hardware side. Bits beyond the width of
// the register are dropped.
func (r *Register) Set(value uint64) {
	r.mustFitUint64()

	b := r.bank
	first := r.entry.Offset / mem.WordSize
	n := r.entry.Words()

	b.lock.Lock()
	defer b.lock.Unlock()

	for i := uint64(0); i < n; i++ {
		shift := WordBits * (n - 1 - i)
		b.words[first+i] = uint32(value>>shift) & wordMask(r.entry, i)
	}
}

// Watch calls f with the new value after every bus write to the register.
func (r *Register) Watch(f func(value uint64)) error {
	return r.bank.Watch(r.entry.Name, f)
}

func (r *Register) mustFitUint64() {
	if r.entry.Width > 64 {
		log.Panicf("register %s is %d bits wide, more than 64",
			r.entry.Name, r.entry.Width)
	}
}

// wordMask returns the bits of the i-th word of the register that hold
// register bits. Word 0 is the most significant word.
func wordMask(e Entry, i uint64) uint32 {
	if i != 0 {
		return ^uint32(0)
	}

	top := uint64(e.Width) - WordBits*(e.Words()-1)
	if top == WordBits {
		return ^uint32(0)
	}

	return uint32(1)<<top - 1
}
