package main

import (
	"log"

	"github.com/sarchlab/upsilonsoc/export"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the address table as JSON.",
	Run: func(cmd *cobra.Command, _ []string) {
		table := buildTable(cmd)

		out, err := openOutput(cmd)
		if err != nil {
			log.Fatalf("Error opening output: %v", err)
		}
		defer out.Close()

		if err := export.WriteJSON(out, table); err != nil {
			log.Fatalf("Error writing table: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
}
