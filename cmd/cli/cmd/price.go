// Package cmd - price command
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"merlin-pricing/core/output"
	"merlin-pricing/core/policy"
	"merlin-pricing/core/types"
	"merlin-pricing/internal/config"
	"merlin-pricing/internal/logging"
)

var (
	outputFormat string
	policyFile   string
)

// priceCmd represents the price command
var priceCmd = &cobra.Command{
	Use:   "price [quote file]",
	Short: "Price a quote under the margin policy",
	Long: `Read a margin policy input document (JSON) and print the priced,
guard-railed result.

Examples:
  merlin-pricing price quote.json
  merlin-pricing price --format json quote.json
  merlin-pricing price --policy policy.yaml quote.json`,
	Args: cobra.ExactArgs(1),
	RunE: runPrice,
}

func init() {
	priceCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format (cli, json)")
	priceCmd.Flags().StringVarP(&policyFile, "policy", "p", "", "policy table file (default: built-in tables)")
}

func runPrice(cmd *cobra.Command, args []string) error {
	cfg, err := resolvePolicy()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading quote file: %w", err)
	}
	var input types.MarginPolicyInput
	if err := json.Unmarshal(data, &input); err != nil {
		return fmt.Errorf("parsing quote file: %w", err)
	}

	result, err := policy.Apply(cfg, &input)
	if err != nil {
		return err
	}
	logging.Debug("quote priced",
		zap.String("request_id", result.RequestID),
		zap.String("band", string(result.MarginBandID)),
		zap.Int("line_items", len(result.LineItems)))

	appCfg := config.Get()
	format := outputFormat
	if format == "" {
		format = appCfg.Output.DefaultFormat
	}
	formatter := output.New(format, appCfg.Output.ShowClampTrail)
	return formatter.Render(os.Stdout, result)
}

// resolvePolicy loads the policy tables from the --policy flag, the app
// config, or falls back to the built-in defaults.
func resolvePolicy() (*policy.PolicyConfig, error) {
	path := policyFile
	if path == "" {
		path = config.Get().PolicyFile
	}
	if path == "" {
		return policy.DefaultPolicyConfig(), nil
	}
	return policy.LoadFile(path)
}
