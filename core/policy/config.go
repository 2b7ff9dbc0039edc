// Package policy - Immutable policy configuration
package policy

import (
	"github.com/shopspring/decimal"

	"merlin-pricing/core/types"
	"merlin-pricing/internal/errors"
)

// PolicyConfig is the complete, immutable policy table set for one
// process lifetime. It is built once at startup, validated, and never
// mutated afterwards; hot reload swaps a whole new config atomically
// through a PolicyStore.
type PolicyConfig struct {
	// Version is the policy table version stamped on every result
	Version string `json:"version"`

	// PricingSourceVersion identifies the benchmark cost dataset
	PricingSourceVersion string `json:"pricing_source_version"`

	// Bands is the deal-size margin band table
	Bands BandTable `json:"bands"`

	// ProductMargins maps categories to margin treatment
	ProductMargins []ProductMarginConfig `json:"product_margins"`

	// RiskAdders maps risk levels to additive margin fractions
	RiskAdders map[types.RiskLevel]decimal.Decimal `json:"risk_adders"`

	// SegmentMultipliers maps customer segments to margin multipliers
	SegmentMultipliers map[types.CustomerSegment]decimal.Decimal `json:"segment_multipliers"`

	// PriceGuards holds the per-category unit price rails
	PriceGuards []PriceGuard `json:"price_guards"`
}

// Validate checks every startup-time invariant on the table set.
// A config that fails validation must never reach the engine; malformed
// tables are a fatal startup condition, not a request-time error.
func (c *PolicyConfig) Validate() error {
	if c.Version == "" {
		return errors.Config("policy version is required")
	}
	if err := c.Bands.Validate(); err != nil {
		return err
	}

	seenProducts := make(map[types.ProductClass]bool)
	for i := range c.ProductMargins {
		pm := &c.ProductMargins[i]
		if seenProducts[pm.Category] {
			return errors.Configf("duplicate product margin config for %s", pm.Category)
		}
		seenProducts[pm.Category] = true
		if err := pm.Validate(); err != nil {
			return err
		}
	}

	for seg, mult := range c.SegmentMultipliers {
		if !mult.IsPositive() {
			return errors.Configf("segment %s: multiplier must be positive, got %s", seg, mult)
		}
	}

	seenGuards := make(map[types.ProductClass]bool)
	for i := range c.PriceGuards {
		g := &c.PriceGuards[i]
		if seenGuards[g.Category] {
			return errors.Configf("duplicate price guard for %s", g.Category)
		}
		seenGuards[g.Category] = true
		if err := g.Validate(); err != nil {
			return err
		}
	}
	return nil
}
