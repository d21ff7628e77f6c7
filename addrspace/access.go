package addrspace

import (
	"github.com/sarchlab/upsilonsoc/arbiter"
	"github.com/sarchlab/upsilonsoc/mem"
	"github.com/sarchlab/upsilonsoc/mem/idealmemcontroller"
	"github.com/sarchlab/upsilonsoc/regmap"
	"github.com/sarchlab/upsilonsoc/sim"
)

// Kind tells what backs a region.
type Kind int

// The kinds of regions.
const (
	// LocalMemoryKind regions are served by a memory that only the owner of
	// the space reaches.
	LocalMemoryKind Kind = iota

	// ArbitratedPortKind regions reach a shared resource through one port
	// of a preemptive arbiter.
	ArbitratedPortKind

	// RegisterMapKind regions are register banks on a bus that only the
	// owner of the space reaches.
	RegisterMapKind
)

func (k Kind) String() string {
	switch k {
	case LocalMemoryKind:
		return "local_memory"
	case ArbitratedPortKind:
		return "arbitrated_port"
	case RegisterMapKind:
		return "register_map"
	default:
		return "unknown"
	}
}

// Access describes how the owner of a space reaches a region.
type Access struct {
	kind      Kind
	ctrl      *idealmemcontroller.Comp
	arb       *arbiter.Comp
	portIndex int
	registers *regmap.Map
	cached    bool
}

// LocalMemory makes a region served by a memory controller.
func LocalMemory(ctrl *idealmemcontroller.Comp) Access {
	return Access{kind: LocalMemoryKind, ctrl: ctrl, cached: true}
}

// RegisterBlock makes a region that exposes a register bank served by a
// controller.
func RegisterBlock(ctrl *idealmemcontroller.Comp, m *regmap.Map) Access {
	return Access{kind: RegisterMapKind, ctrl: ctrl, registers: m}
}

// ArbiterPort makes a region served by one port of an arbiter.
func ArbiterPort(arb *arbiter.Comp, portIndex int) Access {
	return Access{kind: ArbitratedPortKind, arb: arb, portIndex: portIndex}
}

// WithRegisters marks that the region wraps a register map.
func (a Access) WithRegisters(m *regmap.Map) Access {
	a.registers = m
	return a
}

// WithCached marks if the region may be cached by the owner of the space.
func (a Access) WithCached(cached bool) Access {
	a.cached = cached
	return a
}

// Kind returns what backs the region.
func (a Access) Kind() Kind {
	return a.kind
}

// Arbiter returns the arbiter of an arbitrated region and the index of the
// port that the region uses.
func (a Access) Arbiter() (*arbiter.Comp, int) {
	return a.arb, a.portIndex
}

// Registers returns the register map that the region wraps, if any.
func (a Access) Registers() *regmap.Map {
	return a.registers
}

// Cached tells if the owner of the space may cache the region.
func (a Access) Cached() bool {
	return a.cached
}

// Resource returns the resource behind the region.
func (a Access) Resource() mem.Resource {
	if a.arb != nil {
		return a.arb.Resource()
	}

	if a.ctrl != nil {
		return a.ctrl.Resource
	}

	return nil
}

// Port returns the slave port that serves the region.
func (a Access) Port() sim.Port {
	if a.arb != nil {
		p, _ := a.arb.Port(a.portIndex)
		return p
	}

	if a.ctrl != nil {
		return a.ctrl.TopPort()
	}

	return nil
}

func (a Access) check() error {
	if a.arb != nil {
		_, err := a.arb.Port(a.portIndex)
		return err
	}

	return nil
}

// bind makes the slave decode addresses relative to the base of the region.
func (a Access) bind(base uint64) error {
	converter := mem.OffsetAddressConverter{Base: base}

	if a.arb != nil {
		return a.arb.SetAddressConverter(a.portIndex, converter)
	}

	if a.ctrl != nil {
		a.ctrl.SetAddressConverter(converter)
	}

	return nil
}
