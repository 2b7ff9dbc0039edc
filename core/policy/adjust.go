// Package policy - Risk and customer-segment context adjusters
package policy

import (
	"github.com/shopspring/decimal"

	"merlin-pricing/core/types"
)

// RiskAdder returns the additive margin fraction for a risk level.
// It is applied after the product multiplier. Unknown levels are neutral.
func (c *PolicyConfig) RiskAdder(level types.RiskLevel) decimal.Decimal {
	if level == "" {
		level = types.RiskStandard
	}
	if adder, ok := c.RiskAdders[level]; ok {
		return adder
	}
	return decimal.Zero
}

// SegmentMultiplier returns the multiplicative discount or premium for a
// customer segment. Unknown segments are neutral.
func (c *PolicyConfig) SegmentMultiplier(segment types.CustomerSegment) decimal.Decimal {
	if segment == "" {
		segment = types.SegmentDirect
	}
	if mult, ok := c.SegmentMultipliers[segment]; ok {
		return mult
	}
	return decimal.NewFromInt(1)
}

// targetMargin composes the band, product and context layers into the
// margin fraction for one line item, before guard clamping:
//
//	clamp(bandTarget x productMultiplier + riskAdder, floor, ceiling) x segmentMultiplier
//
// Additive product categories ignore the band-derived percentage and the
// band clamp: labor-type margins are policy-fixed, not deal-size-scaled.
// For multiplicative categories the band clamp runs before the segment
// multiplier: a segment discount is an explicit channel concession and may
// realize below the band floor, otherwise a discounted and an undiscounted
// quote could collapse onto the same floor price.
func targetMargin(cfg *PolicyConfig, band MarginBand, category types.ProductClass,
	risk types.RiskLevel, segment types.CustomerSegment) decimal.Decimal {

	pm := cfg.ProductMargin(category)

	var margin decimal.Decimal
	if pm.Mode == MarginAdditive {
		margin = pm.Value.Add(cfg.RiskAdder(risk))
	} else {
		margin = band.MarginTarget.Mul(pm.Value).Add(cfg.RiskAdder(risk))
		if margin.LessThan(band.MarginFloor) {
			margin = band.MarginFloor
		}
		if margin.GreaterThan(band.MarginCeiling) {
			margin = band.MarginCeiling
		}
	}

	margin = margin.Mul(cfg.SegmentMultiplier(segment))
	if margin.IsNegative() {
		margin = decimal.Zero
	}
	return margin
}
