package main

import (
	"log"

	"github.com/sarchlab/upsilonsoc/export"
	"github.com/sarchlab/upsilonsoc/soc"
	"github.com/spf13/cobra"
)

var headerCmd = &cobra.Command{
	Use:   "header",
	Short: "Write a firmware header for one address space.",
	Long: "`header --format c --space pico0` writes the C defines of the " +
		"space of pico0. `header --format micropython` writes the mmio " +
		"module of the host.",
	Run: func(cmd *cobra.Command, _ []string) {
		format, _ := cmd.Flags().GetString("format")
		space, _ := cmd.Flags().GetString("space")

		table := buildTable(cmd)

		out, err := openOutput(cmd)
		if err != nil {
			log.Fatalf("Error opening output: %v", err)
		}
		defer out.Close()

		switch format {
		case "c":
			err = export.WriteCHeader(out, table, space)
		case "micropython":
			if space != soc.HostSpace {
				log.Fatalf("The MicroPython module only covers the %s space",
					soc.HostSpace)
			}
			err = export.WriteMicroPython(out, table)
		default:
			log.Fatalf("Unknown header format %q", format)
		}

		if err != nil {
			log.Fatalf("Error writing header: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(headerCmd)
	headerCmd.Flags().String("format", "c", "Header format: c or micropython")
	headerCmd.Flags().String("space", soc.HostSpace, "Address space to describe")
	headerCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
}
