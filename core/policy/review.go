// Package policy - Review event emitter
package policy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"merlin-pricing/core/types"
)

// alertFraction: a market price below this fraction of the review
// threshold escalates from warning to alert.
var alertFraction = decimal.RequireFromString("0.8")

// reviewLine checks a line's market unit price against the category's
// review threshold. Review events are advisory only and independent of
// clamping: a clamp fixes the customer-facing price arithmetically, but
// the upstream cost observation may still be fraudulent, stale or
// mis-entered.
func reviewLine(item *types.LineItem, guard *PriceGuard, marketUnitPrice decimal.Decimal) *types.ReviewEvent {
	if guard == nil || guard.ReviewBelowPrice == nil {
		return nil
	}
	threshold := *guard.ReviewBelowPrice
	if marketUnitPrice.GreaterThanOrEqual(threshold) {
		return nil
	}

	severity := types.ReviewWarning
	if marketUnitPrice.LessThan(threshold.Mul(alertFraction)) {
		severity = types.ReviewAlert
	}
	return &types.ReviewEvent{
		SKU:      item.SKU,
		Severity: severity,
		Reason: fmt.Sprintf("market price %s/%s below review threshold %s (source: %s)",
			marketUnitPrice.Round(2), guard.Unit, threshold, sourceLabel(item)),
	}
}

func sourceLabel(item *types.LineItem) string {
	if item.CostSource == "" {
		return "unknown"
	}
	return item.CostSource
}
