// Package policy - Product margin resolution
package policy

import (
	"github.com/shopspring/decimal"

	"merlin-pricing/core/types"
	"merlin-pricing/internal/errors"
)

// ProductMarginMode selects how a category's margin is derived
type ProductMarginMode string

const (
	// MarginMultiplicative scales the band-derived margin
	MarginMultiplicative ProductMarginMode = "multiplicative"

	// MarginAdditive replaces the band-derived margin with a fixed
	// percentage. Labor-type margins are policy-fixed, not
	// deal-size-scaled.
	MarginAdditive ProductMarginMode = "additive"
)

// ProductMarginConfig maps a product category to its margin treatment.
// Exactly one mode applies per category; Value is the multiplier for
// multiplicative mode or the fixed margin fraction for additive mode.
type ProductMarginConfig struct {
	// Category is the product category
	Category types.ProductClass `json:"category"`

	// Mode is the margin derivation mode
	Mode ProductMarginMode `json:"mode"`

	// Value is the multiplier or the fixed adder, depending on Mode
	Value decimal.Decimal `json:"value"`
}

// Validate checks a single product margin config
func (c *ProductMarginConfig) Validate() error {
	switch c.Mode {
	case MarginMultiplicative:
		if !c.Value.IsPositive() {
			return errors.Configf("product %s: multiplier must be positive, got %s",
				c.Category, c.Value)
		}
	case MarginAdditive:
		if c.Value.IsNegative() {
			return errors.Configf("product %s: fixed adder must be non-negative, got %s",
				c.Category, c.Value)
		}
	default:
		return errors.Configf("product %s: unknown margin mode %q", c.Category, c.Mode)
	}
	return nil
}

// defaultProductMargin is the fallback for categories with no explicit
// config. Unknown categories never fail; they degrade to standard margin.
var defaultProductMargin = ProductMarginConfig{
	Mode:  MarginMultiplicative,
	Value: decimal.NewFromInt(1),
}

// ProductMargin resolves the margin config for a category.
// Unknown categories return the neutral 1.0x multiplier.
func (c *PolicyConfig) ProductMargin(category types.ProductClass) ProductMarginConfig {
	for i := range c.ProductMargins {
		if c.ProductMargins[i].Category == category {
			return c.ProductMargins[i]
		}
	}
	fallback := defaultProductMargin
	fallback.Category = category
	return fallback
}
