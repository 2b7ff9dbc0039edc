// Package policy - Per-category unit price guards
package policy

import (
	"github.com/shopspring/decimal"

	"merlin-pricing/core/types"
	"merlin-pricing/internal/errors"
)

// PriceGuard holds the unit-economics rails for one product category.
// Floor and ceiling are per-unit prices in the category's native unit
// ($/kWh for BESS, $/kW for solar, $/MVA for transformers, ...).
type PriceGuard struct {
	// Category is the guarded product category
	Category types.ProductClass `json:"category"`

	// Unit is the unit the guard prices are expressed in
	Unit types.Unit `json:"unit"`

	// FloorPrice is the minimum defensible sell price per unit
	FloorPrice decimal.Decimal `json:"floor_price"`

	// CeilingPrice is the maximum defensible sell price per unit
	CeilingPrice decimal.Decimal `json:"ceiling_price"`

	// LastMarketPrice is the most recent benchmark observation.
	// It must lie within [FloorPrice, CeilingPrice].
	LastMarketPrice decimal.Decimal `json:"last_market_price"`

	// ReviewBelowPrice flags market costs below this for human review
	ReviewBelowPrice *decimal.Decimal `json:"review_below_price,omitempty"`

	// ProcurementTriggerPrice marks a market unit price as
	// too-good-to-be-true; below it the procurement buffer applies
	ProcurementTriggerPrice *decimal.Decimal `json:"procurement_trigger_price,omitempty"`

	// ProcurementBufferPct is the sourcing markup applied below the trigger
	ProcurementBufferPct decimal.Decimal `json:"procurement_buffer_pct,omitempty"`

	// QuoteFloorPrice is an optional stricter floor for whole-quote pricing
	QuoteFloorPrice *decimal.Decimal `json:"quote_floor_price,omitempty"`
}

// EffectiveFloor returns the unit floor, raised to QuoteFloorPrice when
// that is defined and higher.
func (g *PriceGuard) EffectiveFloor() decimal.Decimal {
	floor := g.FloorPrice
	if g.QuoteFloorPrice != nil && g.QuoteFloorPrice.GreaterThan(floor) {
		floor = *g.QuoteFloorPrice
	}
	return floor
}

// Validate enforces the static-table invariants on one guard
func (g *PriceGuard) Validate() error {
	if g.FloorPrice.IsNegative() {
		return errors.Configf("guard %s: negative floor price %s", g.Category, g.FloorPrice)
	}
	if g.FloorPrice.GreaterThan(g.CeilingPrice) {
		return errors.Configf("guard %s: floor %s exceeds ceiling %s",
			g.Category, g.FloorPrice, g.CeilingPrice)
	}
	if g.LastMarketPrice.LessThan(g.FloorPrice) || g.LastMarketPrice.GreaterThan(g.CeilingPrice) {
		return errors.Configf("guard %s: last market price %s outside [%s, %s]",
			g.Category, g.LastMarketPrice, g.FloorPrice, g.CeilingPrice)
	}
	if g.ProcurementBufferPct.IsNegative() {
		return errors.Configf("guard %s: negative procurement buffer %s",
			g.Category, g.ProcurementBufferPct)
	}
	if g.ReviewBelowPrice != nil && g.ReviewBelowPrice.GreaterThan(g.FloorPrice) {
		return errors.Configf("guard %s: review threshold %s above floor %s",
			g.Category, g.ReviewBelowPrice, g.FloorPrice)
	}
	return nil
}

// Guard resolves the price guard for a category, if one is configured
func (c *PolicyConfig) Guard(category types.ProductClass) (*PriceGuard, bool) {
	for i := range c.PriceGuards {
		if c.PriceGuards[i].Category == category {
			return &c.PriceGuards[i], true
		}
	}
	return nil, false
}
