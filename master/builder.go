package master

import (
	"github.com/sarchlab/upsilonsoc/datarecording"
	"github.com/sarchlab/upsilonsoc/mem"
	"github.com/sarchlab/upsilonsoc/regmap"
	"github.com/sarchlab/upsilonsoc/sim"
)

// Builder creates masters.
type Builder struct {
	engine      sim.Engine
	freq        sim.Freq
	bufferSize  int
	maxInFlight int
	mapper      mem.AddressToPortMapper
	program     []Op
	repeat      bool
	enable      *regmap.Register
	recorder    datarecording.DataRecorder
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:        100 * sim.MHz,
		bufferSize:  4,
		maxInFlight: 1,
	}
}

// WithEngine sets the engine that drives the master.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the clock of the master.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithBufferSize sets the depth of the buffers of the port.
func (b Builder) WithBufferSize(size int) Builder {
	b.bufferSize = size
	return b
}

// WithMaxInFlight sets how many operations can wait for a response at the
// same time.
func (b Builder) WithMaxInFlight(n int) Builder {
	b.maxInFlight = n
	return b
}

// WithAddressMapper sets how the master finds the slave of an address.
// Usually this is the port mapper of the address space of the master.
func (b Builder) WithAddressMapper(mapper mem.AddressToPortMapper) Builder {
	b.mapper = mapper
	return b
}

// WithProgram sets the operations the master issues, in order.
func (b Builder) WithProgram(ops ...Op) Builder {
	b.program = append([]Op(nil), ops...)
	return b
}

// WithRepeat makes the master start over after the last operation.
func (b Builder) WithRepeat(repeat bool) Builder {
	b.repeat = repeat
	return b
}

// WithEnableRegister makes the master halt while the storage register is
// zero.
func (b Builder) WithEnableRegister(enable *regmap.Register) Builder {
	b.enable = enable
	return b
}

// WithRecorder makes the master record every completed operation.
func (b Builder) WithRecorder(recorder datarecording.DataRecorder) Builder {
	b.recorder = recorder
	return b
}

// Build creates the master.
func (b Builder) Build(name string) *Comp {
	b.parametersMustBeValid()

	c := &Comp{
		mapper:      b.mapper,
		program:     b.program,
		repeat:      b.repeat,
		maxInFlight: b.maxInFlight,
		enable:      b.enable,
		recorder:    b.recorder,
		inflight:    make(map[string]*inflightOp),
	}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	c.port = sim.NewPort(c, b.bufferSize, b.bufferSize, name+".Port")
	c.AddPort("Port", c.port)

	c.AddMiddleware(&middleware{Comp: c})

	if c.enable != nil {
		c.watchEnable()
	}

	if c.recorder != nil {
		c.createTable()
	}

	return c
}

func (b Builder) parametersMustBeValid() {
	if b.engine == nil {
		panic("engine is not set")
	}

	if b.freq == 0 {
		panic("frequency must not be zero")
	}

	if b.mapper == nil {
		panic("address mapper is not set")
	}

	if b.maxInFlight <= 0 {
		panic("max in flight must be positive")
	}

	if b.bufferSize <= 0 {
		panic("buffer size must be positive")
	}
}
