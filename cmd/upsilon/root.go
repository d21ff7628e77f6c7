package main

import (
	"io"
	"log"
	"os"

	"github.com/sarchlab/upsilonsoc/sim"
	"github.com/sarchlab/upsilonsoc/soc"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "upsilon",
	Short: "Upsilon composes the SoC and generates its address map.",
	Long: `Upsilon composes the Upsilon SoC from its configuration. It ` +
		`exports the address table, writes firmware headers and runs ` +
		`simulations of the bus.`,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("env", "", "Load UPSILON_* variables from this file first")
	flags.String("local-ip", "", "IPv4 address of the SoC")
	flags.String("remote-ip", "", "IPv4 address of the TFTP server")
	flags.Int("tftp-port", 0, "Port of the TFTP server")
	flags.Int("freq-mhz", 0, "Clock of the SoC in MHz")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

// loadConfig reads the environment and applies the flags that are set.
func loadConfig(cmd *cobra.Command) soc.Config {
	envFile, _ := cmd.Flags().GetString("env")

	cfg, err := soc.LoadConfig(envFile)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	if cmd.Flags().Changed("local-ip") {
		cfg.LocalIP, _ = cmd.Flags().GetString("local-ip")
	}

	if cmd.Flags().Changed("remote-ip") {
		cfg.RemoteIP, _ = cmd.Flags().GetString("remote-ip")
	}

	if cmd.Flags().Changed("tftp-port") {
		cfg.TFTPPort, _ = cmd.Flags().GetInt("tftp-port")
	}

	if cmd.Flags().Changed("freq-mhz") {
		cfg.FreqMHz, _ = cmd.Flags().GetInt("freq-mhz")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Error in configuration: %v", err)
	}

	return cfg
}

func newEngine() sim.Engine {
	return sim.NewSerialEngine()
}

// buildTable composes the SoC and returns its table.
func buildTable(cmd *cobra.Command) *soc.Table {
	engine := newEngine()

	_, table, err := soc.BuildUpsilon(loadConfig(cmd), engine)
	if err != nil {
		log.Fatalf("Error composing the SoC: %v", err)
	}

	return table
}

// openOutput returns the file named by the --output flag, or stdout.
func openOutput(cmd *cobra.Command) (io.WriteCloser, error) {
	path, _ := cmd.Flags().GetString("output")
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}

	return os.Create(path)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}
