// Package arbiter provides the preemptive arbiter, a two-port component that
// shares one resource between the host and an auxiliary core.
//
// Port 0 belongs to the host and always wins. A Port 1 transaction that is
// in progress when a Port 0 request arrives is suspended with its remaining
// cycles saved and resumes once Port 0 has nothing left to do. Every
// transaction touches at most one word and is applied to the resource in one
// step, so neither master can see the other one's access half done.
package arbiter

import (
	"github.com/sarchlab/upsilonsoc/cfgerr"
	"github.com/sarchlab/upsilonsoc/mem"
	"github.com/sarchlab/upsilonsoc/sim"
)

type transaction struct {
	port      int
	req       mem.AccessReq
	remaining int
	suspended bool
}

type pendingResponse struct {
	port     int
	rsp      sim.Msg
	original mem.AccessReq
}

// Stats counts what the arbiter has done.
type Stats struct {
	Granted     [NumPorts]uint64
	Committed   [NumPorts]uint64
	Preemptions uint64
}

// Comp is a preemptive arbiter.
type Comp struct {
	*sim.TickingComponent
	sim.MiddlewareHolder

	Latency int

	ports      [NumPorts]sim.Port
	converters [NumPorts]mem.AddressConverter
	mux        *Mux

	current          *transaction
	suspended        *transaction
	pendingResponses []*pendingResponse
	stats            Stats
}

// Tick runs the middleware of the arbiter.
func (c *Comp) Tick() bool {
	return c.MiddlewareHolder.Tick()
}

// Port returns the i-th port of the arbiter. Port 0 is for the host and
// Port 1 is for the auxiliary core.
func (c *Comp) Port(i int) (sim.Port, error) {
	if i < 0 || i >= NumPorts {
		return nil, cfgerr.Newf(cfgerr.ErrInvalidPortIndex, c.Name(),
			"port %d does not exist", i)
	}

	return c.ports[i], nil
}

// MustPort is like Port but panics on error.
func (c *Comp) MustPort(i int) sim.Port {
	p, err := c.Port(i)
	if err != nil {
		panic(err)
	}

	return p
}

// SetAddressConverter sets how the given port turns bus addresses into
// offsets of the resource. It is meant to be called while the SoC is being
// composed, before the simulation starts.
func (c *Comp) SetAddressConverter(
	port int,
	converter mem.AddressConverter,
) error {
	if port < 0 || port >= NumPorts {
		return cfgerr.Newf(cfgerr.ErrInvalidPortIndex, c.Name(),
			"cannot set the address converter of port %d", port)
	}

	c.converters[port] = converter

	return nil
}

// Mux returns the gate in front of the native port of the resource. Tools
// that run next to the simulation use it to access the resource without
// tearing the transactions of the arbiter.
func (c *Comp) Mux() *Mux {
	return c.mux
}

// Resource returns the resource that the arbiter shares.
func (c *Comp) Resource() mem.Resource {
	return c.mux.resource
}

// Stats returns the counters of the arbiter.
func (c *Comp) Stats() Stats {
	return c.stats
}

// Busy tells if a transaction is granted or suspended.
func (c *Comp) Busy() bool {
	return c.current != nil || c.suspended != nil
}
