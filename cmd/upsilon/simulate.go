package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/pkg/browser"
	"github.com/sarchlab/upsilonsoc/master"
	"github.com/sarchlab/upsilonsoc/peripheral/spi"
	"github.com/sarchlab/upsilonsoc/sim"
	"github.com/sarchlab/upsilonsoc/simulation"
	"github.com/sarchlab/upsilonsoc/soc"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the host and pico0 against the SoC.",
	Long: "The host loads a word into the RAM of pico0 and enables it. " +
		"pico0 then copies the word to the DAC until the deadline, while the " +
		"host keeps reading the RAM through the same arbiter.",
	Run: func(cmd *cobra.Command, _ []string) {
		cfg := loadConfig(cmd)

		noMonitor, _ := cmd.Flags().GetBool("no-monitor")
		monitorPort, _ := cmd.Flags().GetInt("monitor-port")
		openBrowser, _ := cmd.Flags().GetBool("open")
		wait, _ := cmd.Flags().GetBool("wait")
		output, _ := cmd.Flags().GetString("output")
		until, _ := cmd.Flags().GetFloat64("until")

		b := simulation.MakeBuilder().
			WithConfig(cfg).
			WithOutputFileName(output)
		if noMonitor {
			b = b.WithoutMonitoring()
		} else if monitorPort > 0 {
			b = b.WithMonitorPort(monitorPort)
		}

		s, err := b.Build()
		if err != nil {
			log.Fatalf("Error building the simulation: %v", err)
		}
		defer s.Terminate()

		if openBrowser && s.MonitorURL() != "" {
			if err := browser.OpenURL(s.MonitorURL()); err != nil {
				fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
			}
		}

		host, core := addDemoMasters(s)

		if err := s.RunUntil(sim.VTimeInSec(until)); err != nil {
			log.Fatalf("Error running the simulation: %v", err)
		}

		host.Stop()
		core.Stop()

		if err := s.Run(); err != nil {
			log.Fatalf("Error running the simulation: %v", err)
		}

		report(s, host, core)

		if wait && s.MonitorURL() != "" {
			fmt.Fprintf(os.Stderr,
				"Simulation done, monitor at %s, press Ctrl-C to exit\n",
				s.MonitorURL())

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt)
			<-sig
		}
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	flags := simulateCmd.Flags()
	flags.Bool("no-monitor", false, "Do not start the monitoring server")
	flags.Int("monitor-port", 0, "Port of the monitoring server")
	flags.Bool("open", false, "Open the monitor in a browser")
	flags.Bool("wait", false, "Keep the monitor running after the simulation")
	flags.String("output", "", "Name of the SQLite recording, without suffix")
	flags.Float64("until", 20e-6, "Simulated seconds before the masters stop")
}

func lookup(s *simulation.Simulation, space, name string) uint64 {
	addr, found := s.Table().Lookup(space, name)
	if !found {
		log.Fatalf("Symbol %s is not in the %s space", name, space)
	}

	return addr
}

func addDemoMasters(s *simulation.Simulation) (host, core *master.Comp) {
	frame := uint32(spi.AD5791WriteFrame(spi.AD5791DACRegister, 0x80000))

	ram := lookup(s, soc.HostSpace, "pico0_ram_base")

	host = s.AddHostMaster("Host", master.MakeBuilder().
		WithRepeat(true).
		WithProgram(
			master.WriteOp(ram, frame),
			master.WriteOp(lookup(s, soc.HostSpace, "pico0_enable"), 1),
			master.ReadOp(ram),
		))

	core, err := s.AddCoreMaster(soc.Pico0, master.MakeBuilder().
		WithRepeat(true).
		WithProgram(
			master.ReadOp(lookup(s, soc.Pico0, "main_base")),
			master.WriteOp(lookup(s, soc.Pico0, "dac0_to_slave"), frame),
			master.WriteOp(lookup(s, soc.Pico0, "dac0_arm"), 1),
			master.WriteOp(lookup(s, soc.Pico0, "dac0_arm"), 0),
		))
	if err != nil {
		log.Fatalf("Error adding pico0: %v", err)
	}

	return host, core
}

func report(s *simulation.Simulation, host, core *master.Comp) {
	fmt.Printf("host: %d operations\n", len(host.Records()))
	fmt.Printf("pico0: %d operations\n", len(core.Records()))

	for _, arb := range s.SoC().Arbiters() {
		stats := arb.Stats()
		fmt.Printf("%s: granted %v, committed %v, preemptions %d\n",
			arb.Name(), stats.Granted, stats.Committed, stats.Preemptions)

		if u, found := s.ArbiterUsage(arb.Name()); found && u.Transactions > 0 {
			fmt.Printf("%s: average latency %.3gs, max %.3gs, busy %.3gs\n",
				arb.Name(), float64(u.AverageLatency), float64(u.MaxLatency),
				float64(u.BusyTime))
		}
	}

	if dac, found := s.SoC().Peripheral(soc.DAC0); found {
		fmt.Printf("dac0: %d transfers\n", dac.Transfers())
	}
}
