package idealmemcontroller

import (
	"github.com/sarchlab/upsilonsoc/mem"
	"github.com/sarchlab/upsilonsoc/sim"
)

// Builder can build ideal memory controllers.
type Builder struct {
	width            int
	latency          int
	freq             sim.Freq
	capacity         uint64
	engine           sim.Engine
	topBufSize       int
	resource         mem.Resource
	addressConverter mem.AddressConverter
}

// MakeBuilder returns a new Builder
func MakeBuilder() Builder {
	return Builder{
		latency:    1,
		freq:       100 * sim.MHz,
		capacity:   64 * mem.KB,
		width:      1,
		topBufSize: 4,
	}
}

// WithWidth sets the number of requests the controller accepts per cycle.
func (b Builder) WithWidth(width int) Builder {
	b.width = width
	return b
}

// WithLatency sets the number of cycles from accepting a request to
// responding.
func (b Builder) WithLatency(latency int) Builder {
	b.latency = latency
	return b
}

// WithFreq sets the frequency of the memory controller
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithNewStorage makes the controller serve a new block RAM of the given
// capacity.
func (b Builder) WithNewStorage(capacity uint64) Builder {
	b.capacity = capacity
	b.resource = nil

	return b
}

// WithResource sets the resource that the controller serves.
func (b Builder) WithResource(resource mem.Resource) Builder {
	b.resource = resource
	return b
}

// WithEngine sets the engine of the memory controller
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithTopBufSize sets the size of the top buffer
func (b Builder) WithTopBufSize(topBufSize int) Builder {
	b.topBufSize = topBufSize
	return b
}

// WithAddressConverter sets the converter that turns bus addresses into
// offsets of the resource.
func (b Builder) WithAddressConverter(
	addressConverter mem.AddressConverter,
) Builder {
	b.addressConverter = addressConverter
	return b
}

// Build builds a new Comp
func (b Builder) Build(
	name string,
) *Comp {
	b.parametersMustBeValid()

	c := &Comp{
		Latency:          b.latency,
		width:            b.width,
		addressConverter: b.addressConverter,
	}

	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	c.Resource = b.resource
	if c.Resource == nil {
		c.Resource = mem.NewStorageResource(name+".Storage", nil, b.capacity)
	}

	c.topPort = sim.NewPort(c, b.topBufSize, b.topBufSize, name+".TopPort")
	c.AddPort("Top", c.topPort)

	return c
}

func (b Builder) parametersMustBeValid() {
	if b.engine == nil {
		panic("engine is not set")
	}

	if b.freq == 0 {
		panic("frequency must not be zero")
	}

	if b.width <= 0 {
		panic("width must be positive")
	}

	if b.latency <= 0 {
		panic("latency must be positive")
	}
}
