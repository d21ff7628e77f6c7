// Package spi models the SPI master register blocks that drive the DACs and
// ADCs of the SoC. A Master is a resource with one native port. It is meant
// to sit behind an arbiter, which also provides its clock.
package spi

import (
	"github.com/sarchlab/upsilonsoc/regmap"
)

// The registers of an SPI master.
const (
	RegFinished   = "finished"
	RegReadyToArm = "ready_to_arm"
	RegFromSlave  = "from_slave"
	RegWaitCycles = "wait_cycles"
	RegArm        = "arm"
	RegToSlave    = "to_slave"
)

type state int

const (
	stateIdle state = iota
	stateTransferring
	stateFinished
)

// Descriptors returns the registers of a master with the given parameters.
func Descriptors(p Params) []regmap.Descriptor {
	return []regmap.Descriptor{
		regmap.Status(RegFinished, 1),
		regmap.Status(RegReadyToArm, 1),
		regmap.Status(RegFromSlave, p.Width),
		regmap.Storage(RegWaitCycles, 16),
		regmap.Storage(RegArm, 1),
		regmap.Storage(RegToSlave, p.Width),
	}
}

// A Master is an SPI master controlled through its registers.
//
// Software writes the frame to to_slave and sets arm. The master waits
// wait_cycles cycles, shifts the frame, stores the answer in from_slave and
// raises finished. Clearing arm drops finished and raises ready_to_arm.
type Master struct {
	*regmap.Bank

	params Params
	device Device

	state     state
	countdown uint64
	transfers uint64
}

// NewMaster creates a master that talks to the device.
func NewMaster(name string, p Params, device Device) *Master {
	m := &Master{
		Bank:   regmap.MustCompile(Descriptors(p), 0).Bind(name),
		params: p,
		device: device,
	}

	m.MustRegister(RegReadyToArm).Set(1)
	m.MustRegister(RegWaitCycles).Set(p.DefaultWaitCycles)

	return m
}

// Device returns the device that the master talks to.
func (m *Master) Device() Device {
	return m.device
}

// Transfers returns the number of frames exchanged so far.
func (m *Master) Transfers() uint64 {
	return m.transfers
}

// Tick advances the master by one cycle.
func (m *Master) Tick() bool {
	switch m.state {
	case stateIdle:
		return m.startIfArmed()
	case stateTransferring:
		return m.shift()
	case stateFinished:
		return m.disarmIfCleared()
	default:
		panic("unknown SPI master state")
	}
}

func (m *Master) armed() bool {
	return m.MustRegister(RegArm).Value() != 0
}

func (m *Master) startIfArmed() bool {
	if !m.armed() {
		return false
	}

	m.MustRegister(RegReadyToArm).Set(0)

	wait := m.MustRegister(RegWaitCycles).Value()
	m.countdown = wait + 2*uint64(m.params.HalfPeriod)*uint64(m.params.Width)
	m.state = stateTransferring

	return true
}

func (m *Master) shift() bool {
	if m.countdown > 0 {
		m.countdown--
		return true
	}

	mosi := m.MustRegister(RegToSlave).Value() & m.params.mask()
	miso := m.device.Exchange(mosi) & m.params.mask()

	m.MustRegister(RegFromSlave).Set(miso)
	m.MustRegister(RegFinished).Set(1)
	m.transfers++
	m.state = stateFinished

	return true
}

func (m *Master) disarmIfCleared() bool {
	if m.armed() {
		return false
	}

	m.MustRegister(RegFinished).Set(0)
	m.MustRegister(RegReadyToArm).Set(1)
	m.state = stateIdle

	return true
}
