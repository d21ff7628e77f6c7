// Package idealmemcontroller provides a slave that serves a resource with a
// fixed latency. It backs the regions that only one master ever reaches, such
// as the host ROM, SRAM and main RAM.
package idealmemcontroller

import (
	"log"
	"reflect"

	"github.com/sarchlab/upsilonsoc/mem"
	"github.com/sarchlab/upsilonsoc/sim"
	"github.com/sarchlab/upsilonsoc/tracing"
)

type readRespondEvent struct {
	*sim.EventBase
	req *mem.ReadReq
}

func newReadRespondEvent(
	time sim.VTimeInSec,
	handler sim.Handler,
	req *mem.ReadReq,
) *readRespondEvent {
	return &readRespondEvent{sim.NewEventBase(time, handler), req}
}

type writeRespondEvent struct {
	*sim.EventBase
	req *mem.WriteReq
}

func newWriteRespondEvent(
	time sim.VTimeInSec,
	handler sim.Handler,
	req *mem.WriteReq,
) *writeRespondEvent {
	return &writeRespondEvent{sim.NewEventBase(time, handler), req}
}

// An Comp is an ideal memory controller that can perform read and write.
// It always responds to a request in a fixed number of cycles and has no
// limitation on the number of requests in flight.
type Comp struct {
	*sim.TickingComponent

	topPort          sim.Port
	Resource         mem.Resource
	Latency          int
	addressConverter mem.AddressConverter

	width int
}

// TopPort returns the port that receives requests.
func (c *Comp) TopPort() sim.Port {
	return c.topPort
}

// SetAddressConverter sets the converter that turns bus addresses into
// offsets of the resource.
func (c *Comp) SetAddressConverter(converter mem.AddressConverter) {
	c.addressConverter = converter
}

// AddressConverter returns the converter set by SetAddressConverter.
func (c *Comp) AddressConverter() mem.AddressConverter {
	return c.addressConverter
}

// Handle defines how the Comp handles event
func (c *Comp) Handle(e sim.Event) error {
	switch e := e.(type) {
	case *readRespondEvent:
		return c.handleReadRespondEvent(e)
	case *writeRespondEvent:
		return c.handleWriteRespondEvent(e)
	case sim.TickEvent:
		return c.TickingComponent.Handle(e)
	default:
		log.Panicf("cannot handle event of %s", reflect.TypeOf(e))
	}

	return nil
}

// Tick accepts new requests.
func (c *Comp) Tick() bool {
	madeProgress := false

	for i := 0; i < c.width; i++ {
		msg := c.topPort.RetrieveIncoming()
		if msg == nil {
			break
		}

		tracing.TraceReqReceive(msg, c)

		switch msg := msg.(type) {
		case *mem.ReadReq:
			c.handleReadReq(msg)
		case *mem.WriteReq:
			c.handleWriteReq(msg)
		default:
			log.Panicf("cannot handle request of type %s",
				reflect.TypeOf(msg))
		}

		madeProgress = true
	}

	return madeProgress
}

func (c *Comp) handleReadReq(req *mem.ReadReq) {
	mem.AccessMustFitInWord(req.Address, req.AccessByteSize)

	timeToSchedule := c.Freq.NCyclesLater(c.Latency, c.CurrentTime())
	c.Engine.Schedule(newReadRespondEvent(timeToSchedule, c, req))
}

func (c *Comp) handleWriteReq(req *mem.WriteReq) {
	mem.AccessMustFitInWord(req.Address, req.GetByteSize())

	timeToSchedule := c.Freq.NCyclesLater(c.Latency, c.CurrentTime())
	c.Engine.Schedule(newWriteRespondEvent(timeToSchedule, c, req))
}

func (c *Comp) offset(addr uint64) uint64 {
	if c.addressConverter != nil {
		addr = c.addressConverter.ConvertExternalToInternal(addr)
	}

	if addr >= c.Resource.Size() {
		log.Panicf("%s: offset 0x%x is beyond the resource size 0x%x",
			c.Name(), addr, c.Resource.Size())
	}

	return addr
}

func (c *Comp) handleReadRespondEvent(e *readRespondEvent) error {
	now := e.Time()
	req := e.req

	addr := c.offset(req.Address)
	inWord := addr % mem.WordSize
	word := c.Resource.ReadWord(addr - inWord)

	rsp := mem.DataReadyRspBuilder{}.
		WithSrc(c.topPort.AsRemote()).
		WithDst(req.Src).
		WithRspTo(req.ID).
		WithData(mem.ExtractBytes(word, inWord, req.AccessByteSize)).
		Build()

	networkErr := c.topPort.Send(rsp)
	if networkErr != nil {
		retry := newReadRespondEvent(c.Freq.NextTick(now), c, req)
		c.Engine.Schedule(retry)

		return nil
	}

	tracing.TraceReqComplete(req, c)
	c.TickLater()

	return nil
}

func (c *Comp) handleWriteRespondEvent(e *writeRespondEvent) error {
	now := e.Time()
	req := e.req

	rsp := mem.WriteDoneRspBuilder{}.
		WithSrc(c.topPort.AsRemote()).
		WithDst(req.Src).
		WithRspTo(req.ID).
		Build()

	networkErr := c.topPort.Send(rsp)
	if networkErr != nil {
		retry := newWriteRespondEvent(c.Freq.NextTick(now), c, req)
		c.Engine.Schedule(retry)

		return nil
	}

	addr := c.offset(req.Address)
	inWord := addr % mem.WordSize
	wordAddr := addr - inWord

	if inWord == 0 && len(req.Data) == mem.WordSize && req.DirtyMask == nil {
		c.Resource.WriteWord(wordAddr, mem.WordFromBytes(req.Data))
	} else {
		old := c.Resource.ReadWord(wordAddr)
		c.Resource.WriteWord(wordAddr,
			mem.MergeWord(old, inWord, req.Data, req.DirtyMask))
	}

	tracing.TraceReqComplete(req, c)
	c.TickLater()

	return nil
}
