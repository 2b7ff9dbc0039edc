// Package cmd provides the CLI commands for merlin-pricing.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"merlin-pricing/internal/config"
	"merlin-pricing/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "merlin-pricing",
	Short: "Price energy-system quotes under the margin policy",
	Long: `merlin-pricing converts a quantified bill of materials into final,
auditable, guard-railed sell prices for energy-system quotes.

Margin is applied exactly once, on obtainable cost, under deal-size bands,
per-category price guards and negative-margin protection.

Examples:
  merlin-pricing price quote.json
  merlin-pricing price --format json quote.json
  merlin-pricing bands
  merlin-pricing validate policy.yaml`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.merlin-pricing.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(priceCmd)
	rootCmd.AddCommand(bandsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.Set(cfg)

	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("merlin-pricing version 0.1.0")
	},
}
