// Package policy - Three-layer cost stack
package policy

import (
	"github.com/shopspring/decimal"

	"merlin-pricing/core/types"
)

// costBasis is the procurement-adjusted cost layer for one line item.
// Margin is ALWAYS applied to ObtainableCost, never to MarketCost; this is
// what prevents double margin when the procurement buffer and the margin
// percentage compose.
type costBasis struct {
	// MarketCost is the raw observed cost for the line
	MarketCost decimal.Decimal

	// MarketUnitPrice is MarketCost / Quantity
	MarketUnitPrice decimal.Decimal

	// ObtainableCost is the cost a supplier can actually be procured at
	ObtainableCost decimal.Decimal

	// BufferApplied reports whether the procurement buffer fired
	BufferApplied bool

	// BufferPct is the buffer fraction applied (zero if none)
	BufferPct decimal.Decimal
}

// resolveCostBasis computes marketCost -> obtainableCost for one line.
// When the market unit price sits below the category's procurement trigger,
// the market quote is treated as unprocurable as-is and a sourcing markup
// is assumed before any margin math runs.
func resolveCostBasis(item *types.LineItem, guard *PriceGuard) costBasis {
	basis := costBasis{
		MarketCost:      item.BaseCost,
		MarketUnitPrice: item.BaseCost.Div(item.Quantity),
		ObtainableCost:  item.BaseCost,
	}

	if guard == nil || guard.ProcurementTriggerPrice == nil {
		return basis
	}
	if basis.MarketUnitPrice.GreaterThanOrEqual(*guard.ProcurementTriggerPrice) {
		return basis
	}

	basis.BufferApplied = true
	basis.BufferPct = guard.ProcurementBufferPct
	one := decimal.NewFromInt(1)
	basis.ObtainableCost = basis.MarketCost.Mul(one.Add(guard.ProcurementBufferPct))
	return basis
}

// sellBeforeGuards applies the margin fraction to the obtainable cost
func (b costBasis) sellBeforeGuards(marginPct decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	return b.ObtainableCost.Mul(one.Add(marginPct))
}
