package soc

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/sarchlab/upsilonsoc/sim"
	"github.com/xyproto/env/v2"
)

// Config holds the parameters of a SoC.
type Config struct {
	// LocalIP is the address the host uses on the network.
	LocalIP string

	// RemoteIP is the address of the TFTP server that the host boots from.
	RemoteIP string

	// TFTPPort is the port of the TFTP server.
	TFTPPort int

	// FreqMHz is the clock of the bus and of every component on it.
	FreqMHz int

	// MemLatency is the number of cycles a memory controller takes to
	// serve a word.
	MemLatency int

	// ArbiterLatency is the number of cycles a shared resource takes to
	// serve a word.
	ArbiterLatency int

	ROMSize     uint64
	SRAMSize    uint64
	MainRAMSize uint64

	// CSRPaging is the number of bytes between two CSR blocks.
	CSRPaging uint64

	// IOOrigin is where the uncached I/O region of the host starts.
	IOOrigin uint64
}

// The fixed places of the host regions.
const (
	ROMBase       = 0x00000000
	SRAMBase      = 0x10000000
	MainRAMBase   = 0x40000000
	CSRRegionBase = 0xf0000000
	CSRSize       = 0x10000
	HostLimit     = 0x100000000
)

// DefaultConfig returns the configuration of the reference board.
func DefaultConfig() Config {
	return Config{
		LocalIP:        "192.168.2.50",
		RemoteIP:       "192.168.2.100",
		TFTPPort:       6969,
		FreqMHz:        100,
		MemLatency:     2,
		ArbiterLatency: 1,
		ROMSize:        0x20000,
		SRAMSize:       0x2000,
		MainRAMSize:    0x10000000,
		CSRPaging:      0x800,
		IOOrigin:       0x80000000,
	}
}

// LoadConfig reads the configuration from UPSILON_* environment variables.
// If envFile is not empty, the variables in the file are loaded first.
// Variables that are already set win over the file. Missing variables keep
// their default values.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	env.Load()

	cfg := DefaultConfig()

	cfg.LocalIP = env.Str("UPSILON_LOCAL_IP", cfg.LocalIP)
	cfg.RemoteIP = env.Str("UPSILON_REMOTE_IP", cfg.RemoteIP)
	cfg.TFTPPort = env.Int("UPSILON_TFTP_PORT", cfg.TFTPPort)
	cfg.FreqMHz = env.Int("UPSILON_FREQ_MHZ", cfg.FreqMHz)
	cfg.MemLatency = env.Int("UPSILON_MEM_LATENCY", cfg.MemLatency)
	cfg.ArbiterLatency = env.Int("UPSILON_ARBITER_LATENCY",
		cfg.ArbiterLatency)
	cfg.MainRAMSize = uint64(env.Int("UPSILON_MAIN_RAM_SIZE",
		int(cfg.MainRAMSize)))

	return cfg, cfg.Validate()
}

// Validate checks that the configuration can build a SoC.
func (c Config) Validate() error {
	if c.FreqMHz <= 0 {
		return fmt.Errorf("frequency must be positive, got %d MHz", c.FreqMHz)
	}

	if c.MemLatency <= 0 || c.ArbiterLatency <= 0 {
		return fmt.Errorf("latencies must be positive")
	}

	if c.TFTPPort <= 0 || c.TFTPPort > 0xffff {
		return fmt.Errorf("TFTP port %d is out of range", c.TFTPPort)
	}

	if c.CSRPaging == 0 || c.CSRPaging%4 != 0 {
		return fmt.Errorf("CSR paging 0x%x is not a word multiple", c.CSRPaging)
	}

	return nil
}

// Freq returns the clock of the SoC.
func (c Config) Freq() sim.Freq {
	return sim.Freq(c.FreqMHz) * sim.MHz
}
