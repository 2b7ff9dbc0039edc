// Package cmd - bands and validate commands
package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"merlin-pricing/core/policy"
)

// bandsCmd prints the active margin band table
var bandsCmd = &cobra.Command{
	Use:   "bands",
	Short: "Print the margin band table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolvePolicy()
		if err != nil {
			return err
		}

		fmt.Printf("Policy %s (pricing source %s)\n\n", cfg.Version, cfg.PricingSourceVersion)
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "BAND\tRANGE\tFLOOR\tTARGET\tCEILING")
		for _, b := range cfg.Bands {
			upper := "open"
			if b.MaxDealSize != nil {
				upper = "$" + b.MaxDealSize.String()
			}
			fmt.Fprintf(tw, "%s\t$%s - %s\t%s\t%s\t%s\n",
				b.ID, b.MinDealSize, upper, b.MarginFloor, b.MarginTarget, b.MarginCeiling)
		}
		return tw.Flush()
	},
}

// validateCmd validates a policy table file
var validateCmd = &cobra.Command{
	Use:   "validate [policy file]",
	Short: "Validate a policy table file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := policy.LoadFile(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("OK: policy %s, %d bands, %d product margins, %d price guards\n",
			cfg.Version, len(cfg.Bands), len(cfg.ProductMargins), len(cfg.PriceGuards))
		return nil
	},
}
