package arbiter

import (
	"fmt"
	"sync"

	"github.com/sarchlab/upsilonsoc/cfgerr"
	"github.com/sarchlab/upsilonsoc/mem"
)

// NumPorts is the number of ports of every arbiter.
const NumPorts = 2

// A Mux guards the native port of a resource. Callers on different
// goroutines go through the PortHandles of the Mux. One word access runs at a
// time. When the resource frees up, a waiting Port 0 caller always goes
// before any Port 1 caller, so Port 1 may wait forever under steady Port 0
// traffic.
type Mux struct {
	resource mem.Resource

	lock    sync.Mutex
	cond    *sync.Cond
	busy    bool
	waiting [NumPorts]int
	handles [NumPorts]*PortHandle
}

// NewMux creates a mux in front of the resource.
func NewMux(resource mem.Resource) *Mux {
	m := &Mux{resource: resource}
	m.cond = sync.NewCond(&m.lock)

	for i := range m.handles {
		m.handles[i] = &PortHandle{mux: m, index: i}
	}

	return m
}

// Resource returns the resource behind the mux.
func (m *Mux) Resource() mem.Resource {
	return m.resource
}

// Port returns the handle of the i-th port.
func (m *Mux) Port(i int) (*PortHandle, error) {
	if i < 0 || i >= NumPorts {
		return nil, cfgerr.Newf(cfgerr.ErrInvalidPortIndex,
			m.resource.Name(), "port %d does not exist", i)
	}

	return m.handles[i], nil
}

// Waiting returns the number of callers that wait for the given port.
func (m *Mux) Waiting(port int) int {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.waiting[port]
}

func (m *Mux) acquire(port int) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.waiting[port]++
	for m.busy || (port != 0 && m.waiting[0] > 0) {
		m.cond.Wait()
	}
	m.waiting[port]--

	m.busy = true
}

func (m *Mux) release() {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.busy = false
	m.cond.Broadcast()
}

// A PortHandle is one of the two ports of a Mux. A PortHandle is also a
// resource, so anything that drives a resource can drive one port of the
// mux.
type PortHandle struct {
	mux   *Mux
	index int
}

// Index returns 0 for the host port and 1 for the auxiliary port.
func (h *PortHandle) Index() int {
	return h.index
}

// Name returns the name of the resource and the port index.
func (h *PortHandle) Name() string {
	return fmt.Sprintf("%s.Port[%d]", h.mux.resource.Name(), h.index)
}

// Size returns the size of the resource.
func (h *PortHandle) Size() uint64 {
	return h.mux.resource.Size()
}

// ReadWord reads one word once the port is granted.
func (h *PortHandle) ReadWord(offset uint64) uint32 {
	h.mux.acquire(h.index)
	defer h.mux.release()

	return h.mux.resource.ReadWord(offset)
}

// WriteWord writes one word once the port is granted.
func (h *PortHandle) WriteWord(offset uint64, value uint32) {
	h.mux.acquire(h.index)
	defer h.mux.release()

	h.mux.resource.WriteWord(offset, value)
}

// Modify replaces the word at the offset with update(old) as one
// transaction. No other access can happen between the read and the write.
func (h *PortHandle) Modify(offset uint64, update func(old uint32) uint32) {
	h.mux.acquire(h.index)
	defer h.mux.release()

	old := h.mux.resource.ReadWord(offset)
	h.mux.resource.WriteWord(offset, update(old))
}
