package spi

// A Device is the slave on the other end of the SPI bus.
type Device interface {
	// Exchange shifts one frame out to the device and returns the frame
	// that the device shifts back at the same time.
	Exchange(mosi uint64) (miso uint64)
}

// AD5791 is a model of the AD5791 DAC. It answers a read command in the
// frame that follows the command, as the real part does.
type AD5791 struct {
	registers [8]uint64
	readback  uint64
}

// The registers of the AD5791.
const (
	AD5791DACRegister     = 1
	AD5791ControlRegister = 2
)

const (
	ad5791ReadBit   = uint64(1) << 23
	ad5791DataMask  = uint64(1)<<20 - 1
	ad5791AddrShift = 20
)

// Exchange applies a write command or queues the answer of a read command.
func (d *AD5791) Exchange(mosi uint64) uint64 {
	miso := d.readback
	d.readback = 0

	addr := (mosi >> ad5791AddrShift) & 0x7
	if mosi&ad5791ReadBit != 0 {
		d.readback = mosi&^ad5791DataMask | d.registers[addr]
		return miso
	}

	d.registers[addr] = mosi & ad5791DataMask

	return miso
}

// Output returns the code that the DAC currently drives.
func (d *AD5791) Output() uint64 {
	return d.registers[AD5791DACRegister]
}

// AD5791WriteFrame builds the frame that writes a register.
func AD5791WriteFrame(register, value uint64) uint64 {
	return register<<ad5791AddrShift | value&ad5791DataMask
}

// AD5791ReadFrame builds the frame that reads a register.
func AD5791ReadFrame(register uint64) uint64 {
	return ad5791ReadBit | register<<ad5791AddrShift
}

// LTADC is a model of an LT ADC. Every frame starts a conversion and
// returns the sample.
type LTADC struct {
	// Source produces the next sample. A nil Source produces a ramp.
	Source func() uint64

	next uint64
}

// Exchange returns the next sample. The ADC ignores its input.
func (d *LTADC) Exchange(_ uint64) uint64 {
	if d.Source != nil {
		return d.Source()
	}

	sample := d.next
	d.next++

	return sample
}
