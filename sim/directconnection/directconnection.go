// Package directconnection provides a connection that delivers messages
// between the plugged ports in the cycle after they are sent.
package directconnection

import (
	"fmt"

	"github.com/sarchlab/upsilonsoc/sim"
)

// Comp is a DirectConnection connects two components without latency
type Comp struct {
	*sim.TickingComponent
	sim.MiddlewareHolder

	nextPortID int
	portList   []sim.Port
	ports      map[sim.RemotePort]sim.Port
}

// PlugIn marks the port connects to this DirectConnection.
func (c *Comp) PlugIn(port sim.Port) {
	c.Lock()
	defer c.Unlock()

	if _, found := c.ports[port.AsRemote()]; found {
		panic(fmt.Sprintf("port %s already plugged in to %s",
			port.AsRemote(), c.Name()))
	}

	c.portList = append(c.portList, port)
	c.ports[port.AsRemote()] = port

	port.SetConnection(c)
}

// Unplug marks the port no longer connects to this DirectConnection.
func (c *Comp) Unplug(port sim.Port) {
	c.Lock()
	defer c.Unlock()

	delete(c.ports, port.AsRemote())

	for i, p := range c.portList {
		if p == port {
			c.portList = append(c.portList[:i], c.portList[i+1:]...)
			break
		}
	}

	if len(c.portList) > 0 {
		c.nextPortID %= len(c.portList)
	} else {
		c.nextPortID = 0
	}
}

// NotifyAvailable is called by a port to notify that the connection can
// deliver to the port again.
func (c *Comp) NotifyAvailable(p sim.Port) {
	for _, port := range c.portList {
		if port == p {
			continue
		}

		port.NotifyAvailable()
	}

	c.TickNow()
}

// NotifySend is called by a port to notify that the connection can start
// to tick now
func (c *Comp) NotifySend() {
	c.TickNow()
}

// Tick forwards the messages waiting in the plugged ports.
func (c *Comp) Tick() bool {
	return c.MiddlewareHolder.Tick()
}

type middleware struct {
	*Comp
}

// Tick updates the states of the connection and delivers messages.
func (m *middleware) Tick() bool {
	if len(m.portList) == 0 {
		return false
	}

	madeProgress := false

	for i := 0; i < len(m.portList); i++ {
		portID := (i + m.nextPortID) % len(m.portList)
		port := m.portList[portID]
		madeProgress = m.forwardMany(port) || madeProgress
	}

	m.nextPortID = (m.nextPortID + 1) % len(m.portList)

	return madeProgress
}

func (m *middleware) forwardMany(
	port sim.Port,
) bool {
	madeProgress := false

	for {
		head := port.PeekOutgoing()
		if head == nil {
			break
		}

		dst, found := m.ports[head.Meta().Dst]
		if !found {
			panic(fmt.Sprintf("%s: destination %s is not plugged in",
				m.Name(), head.Meta().Dst))
		}

		err := dst.Deliver(head)
		if err != nil {
			break
		}

		madeProgress = true

		port.RetrieveOutgoing()
	}

	return madeProgress
}
