package arbiter

import (
	"log"
	"reflect"

	"github.com/sarchlab/upsilonsoc/mem"
	"github.com/sarchlab/upsilonsoc/tracing"
)

type middleware struct {
	*Comp
}

// Tick runs one cycle of the arbiter. Responses go out first, then the
// resource and the granted transaction advance, and finally the ports are
// arbitrated.
func (m *middleware) Tick() bool {
	madeProgress := false

	madeProgress = m.sendPendingResponses() || madeProgress
	madeProgress = m.tickResource() || madeProgress
	madeProgress = m.advance() || madeProgress
	madeProgress = m.grant() || madeProgress

	return madeProgress
}

func (m *middleware) sendPendingResponses() bool {
	if len(m.pendingResponses) == 0 {
		return false
	}

	remaining := m.pendingResponses[:0]
	madeProgress := false

	for _, item := range m.pendingResponses {
		if err := m.ports[item.port].Send(item.rsp); err != nil {
			remaining = append(remaining, item)
			continue
		}

		tracing.TraceReqComplete(item.original, m.Comp)
		madeProgress = true
	}

	m.pendingResponses = remaining

	return madeProgress
}

func (m *middleware) tickResource() bool {
	clocked, ok := m.mux.resource.(mem.Clocked)
	if !ok {
		return false
	}

	return clocked.Tick()
}

func (m *middleware) advance() bool {
	if m.current == nil {
		return false
	}

	m.current.remaining--
	if m.current.remaining > 0 {
		return true
	}

	m.commit(m.current)
	m.current = nil

	return true
}

func (m *middleware) grant() bool {
	if req := m.peek(0); req != nil {
		switch {
		case m.current == nil:
			m.start(0)
			return true
		case m.current.port != 0:
			m.suspend()
			m.start(0)

			return true
		default:
			return false
		}
	}

	if m.current != nil {
		return false
	}

	if m.suspended != nil {
		m.resume()
		return true
	}

	if req := m.peek(1); req != nil {
		m.start(1)
		return true
	}

	return false
}

func (m *middleware) peek(port int) mem.AccessReq {
	item := m.ports[port].PeekIncoming()
	if item == nil {
		return nil
	}

	req, ok := item.(mem.AccessReq)
	if !ok {
		log.Panicf("%s: cannot handle message of type %s",
			m.Name(), reflect.TypeOf(item))
	}

	return req
}

func (m *middleware) start(port int) {
	req := m.ports[port].RetrieveIncoming().(mem.AccessReq)
	mem.AccessMustFitInWord(req.GetAddress(), req.GetByteSize())

	tracing.TraceReqReceive(req, m.Comp)
	tracing.AddTaskStep(
		tracing.MsgIDAtReceiver(req, m.Comp), m.Comp, "grant")

	m.current = &transaction{
		port:      port,
		req:       req,
		remaining: m.Latency,
	}
	m.stats.Granted[port]++
}

func (m *middleware) suspend() {
	t := m.current
	t.suspended = true

	tracing.AddTaskStep(
		tracing.MsgIDAtReceiver(t.req, m.Comp), m.Comp, "suspend")

	m.suspended = t
	m.current = nil
	m.stats.Preemptions++
}

func (m *middleware) resume() {
	t := m.suspended
	t.suspended = false

	tracing.AddTaskStep(
		tracing.MsgIDAtReceiver(t.req, m.Comp), m.Comp, "resume")

	m.current = t
	m.suspended = nil
}

func (m *middleware) offset(port int, addr uint64) uint64 {
	if conv := m.converters[port]; conv != nil {
		addr = conv.ConvertExternalToInternal(addr)
	}

	if addr >= m.mux.resource.Size() {
		log.Panicf("%s: offset 0x%x from port %d is beyond the resource",
			m.Name(), addr, port)
	}

	return addr
}

func (m *middleware) commit(t *transaction) {
	handle := m.mux.handles[t.port]
	addr := m.offset(t.port, t.req.GetAddress())
	inWord := addr % mem.WordSize
	wordAddr := addr - inWord

	tracing.AddTaskStep(
		tracing.MsgIDAtReceiver(t.req, m.Comp), m.Comp, "commit")

	var rspBuilt *pendingResponse

	switch req := t.req.(type) {
	case *mem.ReadReq:
		word := handle.ReadWord(wordAddr)
		rsp := mem.DataReadyRspBuilder{}.
			WithSrc(m.ports[t.port].AsRemote()).
			WithDst(req.Src).
			WithRspTo(req.ID).
			WithData(mem.ExtractBytes(word, inWord, req.AccessByteSize)).
			Build()
		rspBuilt = &pendingResponse{port: t.port, rsp: rsp, original: req}
	case *mem.WriteReq:
		if inWord == 0 && len(req.Data) == mem.WordSize &&
			req.DirtyMask == nil {
			handle.WriteWord(wordAddr, mem.WordFromBytes(req.Data))
		} else {
			handle.Modify(wordAddr, func(old uint32) uint32 {
				return mem.MergeWord(old, inWord, req.Data, req.DirtyMask)
			})
		}

		rsp := mem.WriteDoneRspBuilder{}.
			WithSrc(m.ports[t.port].AsRemote()).
			WithDst(req.Src).
			WithRspTo(req.ID).
			Build()
		rspBuilt = &pendingResponse{port: t.port, rsp: rsp, original: req}
	default:
		log.Panicf("%s: cannot handle request of type %s",
			m.Name(), reflect.TypeOf(t.req))
	}

	m.stats.Committed[t.port]++
	m.pendingResponses = append(m.pendingResponses, rspBuilt)
	m.sendPendingResponses()
}
