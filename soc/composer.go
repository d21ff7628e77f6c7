// Package soc composes a system-on-chip out of memories, arbiters, register
// banks and peripherals, and produces the address table of the result.
package soc

import (
	"fmt"
	"net"

	"github.com/sarchlab/upsilonsoc/addrspace"
	"github.com/sarchlab/upsilonsoc/arbiter"
	"github.com/sarchlab/upsilonsoc/cfgerr"
	"github.com/sarchlab/upsilonsoc/master"
	"github.com/sarchlab/upsilonsoc/mem"
	"github.com/sarchlab/upsilonsoc/mem/idealmemcontroller"
	"github.com/sarchlab/upsilonsoc/peripheral/spi"
	"github.com/sarchlab/upsilonsoc/regmap"
	"github.com/sarchlab/upsilonsoc/sim"
	"github.com/sarchlab/upsilonsoc/sim/directconnection"
)

// The regions that an auxiliary core mirrors under a different name in the
// host space.
const (
	coreRAMRegion         = "main"
	controlLoopRegion     = "cl"
	hostRAMSuffix         = "_ram"
	hostControlLoopSuffix = "_cl"
)

// A Core is an auxiliary processor with its own address space. The host
// reaches the memories of the core through Port 0 of their arbiters.
type Core struct {
	Name  string
	Space *addrspace.Space

	// RAM is the private memory of the core.
	RAM *mem.StorageResource

	// Debug holds the program counter, the trap flag and the general
	// registers, as the host sees them.
	Debug *regmap.Bank

	// Enable halts the core while it is cleared.
	Enable *regmap.Register

	// Trap tells the host that the core stopped on an error.
	Trap *regmap.Register
}

// A Peripheral is an SPI device and the settings of the SPI master that
// drives it.
type Peripheral struct {
	Params spi.Params
	Device spi.Device
}

// Composer builds a SoC step by step. Every Add method returns the first
// error the composer has run into. Once an error happens, the composer
// refuses further changes and Finalize reports the same error.
type Composer struct {
	cfg    Config
	engine sim.Engine
	bus    *directconnection.Comp

	host      *addrspace.Space
	hostAlloc *addrspace.Allocator
	csr       *csrBus

	constants   []Constant
	memories    map[string]*idealmemcontroller.Comp
	arbiters    []*arbiter.Comp
	peripherals map[string]*spi.Master
	cores       map[string]*Core
	coreOrder   []string
	masters     []*master.Comp

	err       error
	finalized bool
}

// NewComposer creates a composer with the predefined regions of the host:
// boot ROM, SRAM, main RAM and the CSR bus.
func NewComposer(cfg Config, engine sim.Engine) *Composer {
	c := &Composer{
		cfg:         cfg,
		engine:      engine,
		memories:    make(map[string]*idealmemcontroller.Comp),
		peripherals: make(map[string]*spi.Master),
		cores:       make(map[string]*Core),
		csr:         newCSRBus(cfg.CSRPaging),
	}

	c.bus = directconnection.MakeBuilder().
		WithEngine(engine).
		WithFreq(cfg.Freq()).
		Build("Bus")

	c.host = addrspace.NewSpace(HostSpace)
	c.hostAlloc = addrspace.NewAllocator(c.host, cfg.IOOrigin, HostLimit)

	c.addHostMemory("rom", ROMBase, cfg.ROMSize)
	c.addHostMemory("sram", SRAMBase, cfg.SRAMSize)
	c.addHostMemory("main_ram", MainRAMBase, cfg.MainRAMSize)
	c.addCSRRegion()

	c.addCSRBlock("ctrl", []regmap.Descriptor{
		regmap.Storage("ctrl_reset", 1),
		regmap.Storage("ctrl_scratch", 32),
		regmap.Status("ctrl_bus_errors", 32),
	})

	return c
}

func (c *Composer) newController(
	name string,
	resource mem.Resource,
) *idealmemcontroller.Comp {
	ctrl := idealmemcontroller.MakeBuilder().
		WithEngine(c.engine).
		WithFreq(c.cfg.Freq()).
		WithLatency(c.cfg.MemLatency).
		WithResource(resource).
		Build(name)

	c.bus.PlugIn(ctrl.TopPort())
	c.memories[name] = ctrl

	return ctrl
}

func (c *Composer) addHostMemory(name string, base, size uint64) {
	if c.err != nil {
		return
	}

	ctrl := c.newController(name, mem.NewStorageResource(name, nil, size))

	c.fail(c.host.AddRegion(name, base, size, addrspace.LocalMemory(ctrl)))
}

func (c *Composer) addCSRRegion() {
	if c.err != nil {
		return
	}

	ctrl := c.newController("csr", c.csr)
	access := addrspace.RegisterBlock(ctrl, nil).WithCached(false)

	c.fail(c.host.AddRegion("csr", CSRRegionBase, CSRSize, access))
}

func (c *Composer) addCSRBlock(
	name string,
	descs []regmap.Descriptor,
) *csrBlock {
	if c.err != nil {
		return nil
	}

	block, err := c.csr.addBlock(name, descs)
	c.fail(err)

	return block
}

func (c *Composer) fail(err error) {
	if err != nil && c.err == nil {
		c.err = err
	}
}

// check returns the error that stops the composer from changing.
func (c *Composer) check(subject string) error {
	if c.finalized {
		return cfgerr.Newf(cfgerr.ErrFinalized, subject,
			"the SoC is finalized")
	}

	return c.err
}

// AddIP adds the four octets of an IPv4 address as the constants
// <prefix>1 to <prefix>4.
func (c *Composer) AddIP(ip, prefix string) error {
	if err := c.check(prefix); err != nil {
		return err
	}

	parsed := net.ParseIP(ip).To4()
	if parsed == nil {
		c.fail(cfgerr.Newf(cfgerr.ErrInvalidConstant, prefix,
			"%q is not an IPv4 address", ip))
		return c.err
	}

	for i, octet := range parsed {
		err := c.AddConstant(fmt.Sprintf("%s%d", prefix, i+1), uint64(octet))
		if err != nil {
			return err
		}
	}

	return nil
}

// AddConstant adds a named number to the table.
func (c *Composer) AddConstant(name string, value uint64) error {
	if err := c.check(name); err != nil {
		return err
	}

	if name == "" {
		c.fail(cfgerr.Newf(cfgerr.ErrInvalidConstant, name,
			"constants must have a name"))
		return c.err
	}

	for _, constant := range c.constants {
		if constant.Name == name {
			c.fail(cfgerr.New(cfgerr.ErrDuplicateConstant, name))
			return c.err
		}
	}

	c.constants = append(c.constants, Constant{Name: name, Value: value})

	return nil
}

// AddAuxCore adds an auxiliary core with ramSize bytes of private RAM at
// origin in its own space. The host sees the RAM as <name>_ram, the debug
// registers as <name>_dbg_reg and controls the core through the <name> CSR
// block.
func (c *Composer) AddAuxCore(name string, ramSize, origin uint64) error {
	if err := c.check(name); err != nil {
		return err
	}

	if _, found := c.cores[name]; found {
		c.fail(cfgerr.Newf(cfgerr.ErrDuplicateRegion, name,
			"the core already exists"))
		return c.err
	}

	core := &Core{Name: name}
	core.Space = addrspace.NewSpace(name,
		addrspace.WithMirror(addrspace.MirrorFunc(c.mirrorToHost)))
	core.RAM = mem.NewStorageResource(name+hostRAMSuffix, nil, ramSize)

	arb, err := c.newArbiter(name+"_ram_pi", core.RAM)
	if err != nil {
		c.fail(err)
		return c.err
	}

	access := addrspace.ArbiterPort(arb, 1).WithCached(true)
	if err = core.Space.AddRegion(coreRAMRegion, origin, ramSize,
		access); err != nil {
		c.fail(err)
		return c.err
	}

	if err = c.addDebugBank(core); err != nil {
		c.fail(err)
		return c.err
	}

	block := c.addCSRBlock(name, []regmap.Descriptor{
		regmap.Storage(name+"_enable", 1),
		regmap.Status(name+"_trap", 1),
	})
	if c.err != nil {
		return c.err
	}

	core.Enable = block.bank.MustRegister(name + "_enable")
	core.Trap = block.bank.MustRegister(name + "_trap")

	c.cores[name] = core
	c.coreOrder = append(c.coreOrder, name)

	return nil
}

func (c *Composer) addDebugBank(core *Core) error {
	regName := core.Name + "_dbg_reg"

	m, err := regmap.Compile([]regmap.Descriptor{
		regmap.Status("pc", 32),
		regmap.Status("trap", 1),
		regmap.Status("reg", 32).Replicated(32),
	}, 0)
	if err != nil {
		return err
	}

	core.Debug = m.Bind(regName)
	ctrl := c.newController(regName, core.Debug)

	_, err = c.hostAlloc.Place(regName, m.Size(),
		addrspace.RegisterBlock(ctrl, m).WithCached(false))

	return err
}

func (c *Composer) newArbiter(
	name string,
	resource mem.Resource,
) (*arbiter.Comp, error) {
	arb, err := arbiter.MakeBuilder().
		WithEngine(c.engine).
		WithFreq(c.cfg.Freq()).
		WithLatency(c.cfg.ArbiterLatency).
		WithResource(resource).
		Build(name)
	if err != nil {
		return nil, err
	}

	for i := 0; i < arbiter.NumPorts; i++ {
		c.bus.PlugIn(arb.MustPort(i))
	}

	c.arbiters = append(c.arbiters, arb)

	return arb, nil
}

// mirrorToHost gives the host a view of every region that a core adds. The
// core reaches the region through Port 1 of an arbiter and the host through
// Port 0.
func (c *Composer) mirrorToHost(
	space *addrspace.Space,
	region addrspace.Region,
) error {
	arb, portIndex := region.Access.Arbiter()
	if arb == nil || portIndex != 1 {
		return cfgerr.Newf(cfgerr.ErrUnmirrorableRegion, region.Name,
			"only regions on Port 1 of an arbiter have a host view")
	}

	access := addrspace.ArbiterPort(arb, 0).
		WithRegisters(region.Access.Registers()).
		WithCached(region.Access.Cached())

	_, err := c.hostAlloc.Place(
		hostRegionName(space.Name(), region.Name), region.Size, access)

	return err
}

func hostRegionName(core, region string) string {
	switch region {
	case coreRAMRegion:
		return core + hostRAMSuffix
	case controlLoopRegion:
		return core + hostControlLoopSuffix
	default:
		return region
	}
}

// DefaultControlLoopParams returns the parameters of the control loop that
// runs on an auxiliary core.
func DefaultControlLoopParams() []regmap.Descriptor {
	return []regmap.Descriptor{
		regmap.Storage("run", 1),
		regmap.Storage("setpoint", 18),
		regmap.Storage("p", 32),
		regmap.Storage("i", 32),
		regmap.Storage("delay", 16),
	}
}

// AddControlLoopParams adds the parameters of the control loop at origin in
// the space of the core. The host sees them as <core>_cl.
func (c *Composer) AddControlLoopParams(core string, origin uint64) error {
	if err := c.check(core + hostControlLoopSuffix); err != nil {
		return err
	}

	aux, err := c.core(core)
	if err != nil {
		c.fail(err)
		return c.err
	}

	m, err := regmap.Compile(DefaultControlLoopParams(), 0)
	if err != nil {
		c.fail(err)
		return c.err
	}

	bank := m.Bind(core + hostControlLoopSuffix)

	arb, err := c.newArbiter(core+"_cl_pi", bank)
	if err != nil {
		c.fail(err)
		return c.err
	}

	c.fail(aux.Space.AddRegion(controlLoopRegion, origin, m.Size(),
		addrspace.ArbiterPort(arb, 1).WithRegisters(m)))

	return c.err
}

// AddPeripheral adds an SPI master and its device. The core reaches the
// registers of the master at origin and the host sees them under the name
// of the peripheral.
func (c *Composer) AddPeripheral(
	name string,
	p Peripheral,
	core string,
	origin uint64,
) error {
	if err := c.check(name); err != nil {
		return err
	}

	aux, err := c.core(core)
	if err != nil {
		c.fail(err)
		return c.err
	}

	if _, found := c.peripherals[name]; found {
		c.fail(cfgerr.Newf(cfgerr.ErrDuplicateRegion, name,
			"the peripheral already exists"))
		return c.err
	}

	spiMaster := spi.NewMaster(name, p.Params, p.Device)

	arb, err := c.newArbiter(name+"_pi", spiMaster)
	if err != nil {
		c.fail(err)
		return c.err
	}

	c.fail(aux.Space.AddRegion(name, origin, spiMaster.Size(),
		addrspace.ArbiterPort(arb, 1).WithRegisters(spiMaster.Map())))
	if c.err != nil {
		return c.err
	}

	c.peripherals[name] = spiMaster

	return nil
}

func (c *Composer) core(name string) (*Core, error) {
	core, found := c.cores[name]
	if !found {
		return nil, cfgerr.Newf(cfgerr.ErrUnknownName, name,
			"no auxiliary core has the name")
	}

	return core, nil
}

// Finalize seals every address space and returns the table of the SoC. It
// can only be called once.
func (c *Composer) Finalize() (*Table, error) {
	if err := c.check("soc"); err != nil {
		return nil, err
	}

	c.finalized = true

	c.host.Seal()
	for _, name := range c.coreOrder {
		c.cores[name].Space.Seal()
	}

	t := c.buildTable()
	if err := t.Validate(); err != nil {
		c.fail(err)
		return nil, err
	}

	return t, nil
}

func (c *Composer) buildTable() *Table {
	t := &Table{
		Constants:    append([]Constant{}, c.constants...),
		CSRBases:     []CSRBase{},
		CSRRegisters: []CSRRegister{},
		Memories:     []Memory{},
		Subregions:   []Subregion{},
	}

	for _, block := range c.csr.blocks {
		m := block.bank.Map()
		t.CSRBases = append(t.CSRBases,
			CSRBase{Name: block.name, Address: m.Base()})

		for _, e := range m.Entries() {
			t.CSRRegisters = append(t.CSRRegisters, CSRRegister{
				Name:       e.Name,
				Block:      block.name,
				Address:    e.Address,
				Width:      e.Width,
				Permission: e.Permission,
			})
		}
	}

	spaces := []*addrspace.Space{c.host}
	for _, name := range c.coreOrder {
		spaces = append(spaces, c.cores[name].Space)
	}

	for _, space := range spaces {
		for _, r := range space.Regions() {
			t.Memories = append(t.Memories, Memory{
				Space:  space.Name(),
				Name:   r.Name,
				Base:   r.Base,
				Size:   r.Size,
				Kind:   r.Access.Kind().String(),
				Cached: r.Access.Cached(),
			})

			if sub, ok := subregionOf(space, r); ok {
				t.Subregions = append(t.Subregions, sub)
			}
		}
	}

	return t
}

// subregionOf tells if a region is listed as a subregion. Register maps and
// regions behind an arbiter are. The CSR bus is listed register by register
// instead.
func subregionOf(
	space *addrspace.Space,
	r addrspace.Region,
) (Subregion, bool) {
	m := r.Access.Registers()
	if m == nil && r.Access.Kind() != addrspace.ArbitratedPortKind {
		return Subregion{}, false
	}

	sub := Subregion{Space: space.Name(), Name: r.Name, Base: r.Base}
	if m != nil {
		sub.Registers = m.Table().Rebase(r.Base)
	}

	return sub, true
}

// Err returns the first error that the composer has run into.
func (c *Composer) Err() error {
	return c.err
}

// Finalized tells if Finalize has succeeded.
func (c *Composer) Finalized() bool {
	return c.finalized
}

// Config returns the configuration of the SoC.
func (c *Composer) Config() Config {
	return c.cfg
}

// Engine returns the engine that runs the SoC.
func (c *Composer) Engine() sim.Engine {
	return c.engine
}

// Bus returns the connection that every port of the SoC is plugged into.
func (c *Composer) Bus() *directconnection.Comp {
	return c.bus
}

// HostSpace returns the address space of the host.
func (c *Composer) HostSpace() *addrspace.Space {
	return c.host
}

// Core returns an auxiliary core by name.
func (c *Composer) Core(name string) (*Core, bool) {
	core, found := c.cores[name]
	return core, found
}

// Cores returns the auxiliary cores in the order they were added.
func (c *Composer) Cores() []*Core {
	cores := make([]*Core, 0, len(c.coreOrder))
	for _, name := range c.coreOrder {
		cores = append(cores, c.cores[name])
	}

	return cores
}

// Arbiters returns every arbiter of the SoC.
func (c *Composer) Arbiters() []*arbiter.Comp {
	return append([]*arbiter.Comp{}, c.arbiters...)
}

// Arbiter finds an arbiter by name.
func (c *Composer) Arbiter(name string) (*arbiter.Comp, bool) {
	for _, arb := range c.arbiters {
		if arb.Name() == name {
			return arb, true
		}
	}

	return nil, false
}

// Memory returns the controller of a host memory or register block.
func (c *Composer) Memory(name string) (*idealmemcontroller.Comp, bool) {
	ctrl, found := c.memories[name]
	return ctrl, found
}

// Peripheral returns the SPI master of a peripheral.
func (c *Composer) Peripheral(name string) (*spi.Master, bool) {
	m, found := c.peripherals[name]
	return m, found
}

// CSRRegister returns a register of the CSR bus by name.
func (c *Composer) CSRRegister(name string) (*regmap.Register, error) {
	for _, block := range c.csr.blocks {
		if r, err := block.bank.Register(name); err == nil {
			return r, nil
		}
	}

	return nil, cfgerr.New(cfgerr.ErrUnknownName, name)
}

// Components returns every simulated component of the SoC.
func (c *Composer) Components() []sim.Component {
	comps := []sim.Component{c.bus}

	for _, name := range []string{"rom", "sram", "main_ram", "csr"} {
		if ctrl, found := c.memories[name]; found {
			comps = append(comps, ctrl)
		}
	}

	for _, name := range c.coreOrder {
		if ctrl, found := c.memories[name+"_dbg_reg"]; found {
			comps = append(comps, ctrl)
		}
	}

	for _, arb := range c.arbiters {
		comps = append(comps, arb)
	}

	for _, m := range c.masters {
		comps = append(comps, m)
	}

	return comps
}

// HostMaster builds a master that runs in the host space.
func (c *Composer) HostMaster(name string, b master.Builder) *master.Comp {
	m := b.WithEngine(c.engine).
		WithFreq(c.cfg.Freq()).
		WithAddressMapper(c.host.PortMapper()).
		Build(name)

	c.bus.PlugIn(m.Port())
	c.masters = append(c.masters, m)

	return m
}

// CoreMaster builds the master of an auxiliary core. The master runs in the
// space of the core and halts while the enable register of the core is
// cleared.
func (c *Composer) CoreMaster(
	core string,
	b master.Builder,
) (*master.Comp, error) {
	aux, err := c.core(core)
	if err != nil {
		return nil, err
	}

	m := b.WithEngine(c.engine).
		WithFreq(c.cfg.Freq()).
		WithAddressMapper(aux.Space.PortMapper()).
		WithEnableRegister(aux.Enable).
		Build(core)

	c.bus.PlugIn(m.Port())
	c.masters = append(c.masters, m)

	return m, nil
}

// Masters returns the masters built by the composer.
func (c *Composer) Masters() []*master.Comp {
	return append([]*master.Comp{}, c.masters...)
}
