package spi

// Params describes the frames that an SPI master exchanges with its slave.
type Params struct {
	// Width is the number of bits in a frame.
	Width uint

	// HalfPeriod is the number of clock cycles in half an SCK period.
	HalfPeriod int

	// DefaultWaitCycles is the reset value of the wait_cycles register, the
	// number of cycles the master waits with SS asserted before clocking the
	// first bit.
	DefaultWaitCycles uint64
}

// AD5791Params drives an AD5791 20-bit DAC. A frame carries a read bit, a
// 3-bit register address and 20 data bits.
var AD5791Params = Params{
	Width:             24,
	HalfPeriod:        2,
	DefaultWaitCycles: 5,
}

// LTADCParams drives an 18-bit LT ADC. The ADC only talks back.
var LTADCParams = Params{
	Width:             18,
	HalfPeriod:        1,
	DefaultWaitCycles: 0x7f,
}

func (p Params) mask() uint64 {
	if p.Width >= 64 {
		return ^uint64(0)
	}

	return uint64(1)<<p.Width - 1
}
