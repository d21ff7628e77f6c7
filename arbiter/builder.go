package arbiter

import (
	"fmt"

	"github.com/sarchlab/upsilonsoc/cfgerr"
	"github.com/sarchlab/upsilonsoc/mem"
	"github.com/sarchlab/upsilonsoc/sim"
)

type portConverter struct {
	port      int
	converter mem.AddressConverter
}

// Builder creates arbiters.
type Builder struct {
	engine     sim.Engine
	freq       sim.Freq
	latency    int
	numPorts   int
	bufferSize int
	resource   mem.Resource
	converters []portConverter
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:       100 * sim.MHz,
		latency:    1,
		numPorts:   NumPorts,
		bufferSize: 4,
	}
}

// WithEngine sets the engine that drives the arbiter.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the clock of the arbiter and of the resource behind it.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithLatency sets the number of cycles that the resource takes to serve one
// word access.
func (b Builder) WithLatency(latency int) Builder {
	b.latency = latency
	return b
}

// WithNumPorts sets the number of ports. Arbiters only have two ports, any
// other number fails the build.
func (b Builder) WithNumPorts(n int) Builder {
	b.numPorts = n
	return b
}

// WithBufferSize sets the depth of the buffers of both ports.
func (b Builder) WithBufferSize(size int) Builder {
	b.bufferSize = size
	return b
}

// WithResource sets the resource that the arbiter shares.
func (b Builder) WithResource(resource mem.Resource) Builder {
	b.resource = resource
	return b
}

// WithAddressConverter sets how the given port turns bus addresses into
// offsets of the resource. Each port sits at its own place in the address
// space of its master.
func (b Builder) WithAddressConverter(
	port int,
	converter mem.AddressConverter,
) Builder {
	converters := make([]portConverter, len(b.converters), len(b.converters)+1)
	copy(converters, b.converters)
	b.converters = append(converters, portConverter{port, converter})

	return b
}

// Build creates the arbiter.
func (b Builder) Build(name string) (*Comp, error) {
	b.parametersMustBeValid()

	if b.numPorts != NumPorts {
		return nil, cfgerr.Newf(cfgerr.ErrInvalidPortIndex, name,
			"an arbiter has %d ports, not %d", NumPorts, b.numPorts)
	}

	c := &Comp{
		Latency: b.latency,
		mux:     NewMux(b.resource),
	}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	for _, pc := range b.converters {
		if pc.port < 0 || pc.port >= NumPorts {
			return nil, cfgerr.Newf(cfgerr.ErrInvalidPortIndex, name,
				"cannot set the address converter of port %d", pc.port)
		}

		c.converters[pc.port] = pc.converter
	}

	for i := 0; i < NumPorts; i++ {
		portName := fmt.Sprintf("%s.Top[%d]", name, i)
		c.ports[i] = sim.NewPort(c, b.bufferSize, b.bufferSize, portName)
		c.AddPort(fmt.Sprintf("Top[%d]", i), c.ports[i])
	}

	c.AddMiddleware(&middleware{Comp: c})

	return c, nil
}

// MustBuild is like Build but panics on error.
func (b Builder) MustBuild(name string) *Comp {
	c, err := b.Build(name)
	if err != nil {
		panic(err)
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

	if b.resource == nil {
		panic("resource is not set")
	}

	if b.latency <= 0 {
		panic("latency must be positive")
	}

	if b.bufferSize <= 0 {
		panic("buffer size must be positive")
	}
}
