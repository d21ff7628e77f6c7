package mem

import "github.com/sarchlab/upsilonsoc/sim"

// AddressToPortMapper helps a bus master find the port that serves a certain
// address.
type AddressToPortMapper interface {
	Find(address uint64) sim.RemotePort
}

// SinglePortMapper is used when a master is connected with only one
// slave.
type SinglePortMapper struct {
	Port sim.RemotePort
}

// Find simply returns the solo port that it connects to
func (f *SinglePortMapper) Find(_ uint64) sim.RemotePort {
	return f.Port
}
