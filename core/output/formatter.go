// Package output renders pricing results for humans and machines.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"merlin-pricing/core/types"
)

var hundred = decimal.NewFromInt(100)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render writes the pricing result
	Render(w io.Writer, result *types.MarginPolicyResult) error
}

// New returns the formatter for a format name, defaulting to CLI
func New(format string, showClampTrail bool) Formatter {
	switch Format(format) {
	case FormatJSON:
		return &JSONFormatter{}
	default:
		return &CLIFormatter{ShowClampTrail: showClampTrail}
	}
}

// JSONFormatter renders the full result as indented JSON
type JSONFormatter struct{}

// Format returns the format type
func (f *JSONFormatter) Format() Format { return FormatJSON }

// Render writes the result as JSON
func (f *JSONFormatter) Render(w io.Writer, result *types.MarginPolicyResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// CLIFormatter renders a human-readable quote summary
type CLIFormatter struct {
	// ShowClampTrail includes each line's clamp events
	ShowClampTrail bool
}

// Format returns the format type
func (f *CLIFormatter) Format() Format { return FormatCLI }

// Render writes the result as a terminal table
func (f *CLIFormatter) Render(w io.Writer, result *types.MarginPolicyResult) error {
	fmt.Fprintf(w, "Quote %s  (band: %s, policy %s, pricing %s)\n\n",
		result.RequestID, result.MarginBandDescription, result.PolicyVersion, result.PricingSourceVersion)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SKU\tCATEGORY\tQTY\tMARKET\tOBTAINABLE\tSELL\tMARGIN%\tFLAGS")
	for i := range result.LineItems {
		li := &result.LineItems[i]
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%s\t%s\t%s\t%s\t%s\n",
			li.SKU, li.Category,
			li.Quantity, li.Unit,
			li.MarketCost.Round(2), li.ObtainableCost.Round(2), li.SellPrice.Round(2),
			li.AppliedMarginPercent.Mul(hundred).Round(2),
			lineFlags(li))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nMarket cost total:      %s\n", result.MarketCostTotal.Round(2))
	fmt.Fprintf(w, "Procurement buffer:     %s\n", result.ProcurementBufferTotal.Round(2))
	fmt.Fprintf(w, "Obtainable cost total:  %s\n", result.ObtainableCostTotal.Round(2))
	fmt.Fprintf(w, "Sell price total:       %s\n", result.SellPriceTotal.Round(2))
	fmt.Fprintf(w, "Total margin:           %s (%s%%)\n",
		result.TotalMarginDollars.Round(2), result.BlendedMarginPercent.Mul(hundred).Round(2))

	if f.ShowClampTrail && result.WasClamped() {
		for _, ev := range result.AllClampEvents() {
			scope := "line"
			if ev.Reason.IsQuoteLevel() {
				scope = "quote"
			}
			fmt.Fprintf(w, "  clamp [%s %s] %s: %s -> %s\n",
				scope, ev.Reason, ev.GuardName, ev.OriginalValue.Round(2), ev.ClampedValue.Round(2))
		}
	}
	for _, ev := range result.ReviewEvents {
		fmt.Fprintf(w, "  review [%s] %s: %s\n", ev.Severity, ev.SKU, ev.Reason)
	}
	for _, warning := range result.QuoteLevelWarnings {
		fmt.Fprintf(w, "  quote-level warning: %s\n", warning)
	}
	if !result.PassesQuoteLevelGuards {
		fmt.Fprintln(w, "  QUOTE-LEVEL GUARDS FAILED")
	}
	if result.NeedsHumanReview {
		fmt.Fprintln(w, "  NEEDS HUMAN REVIEW")
	}
	return nil
}

func lineFlags(li *types.LineItemResult) string {
	flags := ""
	if li.ProcurementBufferApplied {
		flags += "B"
	}
	if li.WasClampedFloor {
		flags += "F"
	}
	if li.WasClampedCeiling {
		flags += "C"
	}
	if flags == "" {
		return "-"
	}
	return flags
}
