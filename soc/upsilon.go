package soc

import (
	"github.com/sarchlab/upsilonsoc/peripheral/spi"
	"github.com/sarchlab/upsilonsoc/sim"
)

// The layout of the auxiliary core of the reference design.
const (
	Pico0             = "pico0"
	Pico0RAMSize      = 0x1000
	Pico0RAMOrigin    = 0x10000
	Pico0ControlLoop  = 0x100000
	DAC0              = "dac0"
	DAC0Origin        = 0x200000
	ADC0              = "adc0"
	ADC0Origin        = 0x300000
	TFTPServerPortKey = "TFTP_SERVER_PORT"
)

// BuildUpsilon composes the reference design. One auxiliary core runs the
// control loop and drives a 20-bit DAC and an 18-bit ADC. The host reaches
// all of them through Port 0 of their arbiters.
func BuildUpsilon(cfg Config, engine sim.Engine) (*Composer, *Table, error) {
	c := NewComposer(cfg, engine)

	_ = c.AddIP(cfg.LocalIP, "LOCALIP")
	_ = c.AddIP(cfg.RemoteIP, "REMOTEIP")
	_ = c.AddConstant(TFTPServerPortKey, uint64(cfg.TFTPPort))

	_ = c.AddAuxCore(Pico0, Pico0RAMSize, Pico0RAMOrigin)
	_ = c.AddControlLoopParams(Pico0, Pico0ControlLoop)

	_ = c.AddPeripheral(DAC0, Peripheral{
		Params: spi.AD5791Params,
		Device: &spi.AD5791{},
	}, Pico0, DAC0Origin)

	_ = c.AddPeripheral(ADC0, Peripheral{
		Params: spi.LTADCParams,
		Device: &spi.LTADC{},
	}, Pico0, ADC0Origin)

	t, err := c.Finalize()
	if err != nil {
		return nil, nil, err
	}

	return c, t, nil
}
