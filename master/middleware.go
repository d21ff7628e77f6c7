package master

import (
	"log"
	"reflect"

	"github.com/sarchlab/upsilonsoc/mem"
	"github.com/sarchlab/upsilonsoc/tracing"
)

type middleware struct {
	*Comp
}

func (m *middleware) Tick() bool {
	madeProgress := false

	madeProgress = m.collect() || madeProgress
	madeProgress = m.issue() || madeProgress

	return madeProgress
}

func (m *middleware) collect() bool {
	madeProgress := false

	for {
		msg := m.port.RetrieveIncoming()
		if msg == nil {
			break
		}

		rsp, ok := msg.(mem.AccessRsp)
		if !ok {
			log.Panicf("%s: cannot handle message of type %s",
				m.Name(), reflect.TypeOf(msg))
		}

		op, found := m.inflight[rsp.GetRspTo()]
		if !found {
			log.Panicf("%s: response to unknown request %s",
				m.Name(), rsp.GetRspTo())
		}

		delete(m.inflight, rsp.GetRspTo())
		tracing.TraceReqFinalize(op.req, m.Comp)

		r := Record{
			Op:        op.op,
			Issued:    op.issued,
			Completed: m.CurrentTime(),
		}

		if dr, isRead := rsp.(*mem.DataReadyRsp); isRead {
			r.Result = mem.WordFromBytes(dr.Data)
		}

		m.record(r)

		madeProgress = true
	}

	return madeProgress
}

func (m *middleware) issue() bool {
	if !m.Enabled() {
		return false
	}

	if len(m.inflight) >= m.maxInFlight {
		return false
	}

	if m.pc >= len(m.program) {
		return false
	}

	op := m.program[m.pc]
	req := m.buildReq(op)

	if err := m.port.Send(req); err != nil {
		return false
	}

	tracing.TraceReqInitiate(req, m.Comp, "")

	m.inflight[req.Meta().ID] = &inflightOp{
		op:     op,
		req:    req,
		issued: m.CurrentTime(),
	}

	m.pc++
	if m.pc == len(m.program) && m.repeat {
		m.pc = 0
	}

	return true
}

func (m *middleware) buildReq(op Op) mem.AccessReq {
	dst := m.mapper.Find(op.Address)

	byteSize := op.ByteSize
	if byteSize == 0 {
		byteSize = mem.WordSize
	}

	switch op.Kind {
	case Read:
		return mem.ReadReqBuilder{}.
			WithSrc(m.port.AsRemote()).
			WithDst(dst).
			WithAddress(op.Address).
			WithByteSize(byteSize).
			Build()
	case Write:
		return mem.WriteReqBuilder{}.
			WithSrc(m.port.AsRemote()).
			WithDst(dst).
			WithAddress(op.Address).
			WithData(mem.WordBytes(op.Value)[:byteSize]).
			Build()
	default:
		log.Panicf("%s: unknown operation kind %d", m.Name(), op.Kind)
	}

	return nil
}
