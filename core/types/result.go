// Package types - Pricing result and audit-trail types
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClampReason is the closed set of reasons a price can be forced to a bound
type ClampReason string

const (
	// ClampUnitFloor raises an underpriced line to its unit floor
	ClampUnitFloor ClampReason = "unit_floor"

	// ClampUnitCeiling lowers an overpriced line toward its unit ceiling
	ClampUnitCeiling ClampReason = "unit_ceiling"

	// ClampNegativeMarginProtection stops a ceiling clamp at cost basis
	ClampNegativeMarginProtection ClampReason = "negative_margin_protection"

	// ClampHardCap enforces a caller-specified max margin
	ClampHardCap ClampReason = "hard_cap"

	// ClampQuoteLevelFloor flags an aggregate $/unit below the category floor
	ClampQuoteLevelFloor ClampReason = "quote_level_floor"

	// ClampQuoteLevelCeiling flags an aggregate $/unit above the category ceiling
	ClampQuoteLevelCeiling ClampReason = "quote_level_ceiling"
)

// IsQuoteLevel reports whether the reason is a quote-level aggregate check
func (r ClampReason) IsQuoteLevel() bool {
	return r == ClampQuoteLevelFloor || r == ClampQuoteLevelCeiling
}

// ClampEvent is an audit record of a price forced to a boundary value.
// Events are ordered by insertion; order is the timestamp.
type ClampEvent struct {
	// Reason is why the clamp fired
	Reason ClampReason `json:"reason"`

	// GuardName identifies the guard that fired
	GuardName string `json:"guard_name"`

	// OriginalValue is the value before clamping
	OriginalValue decimal.Decimal `json:"original_value"`

	// ClampedValue is the value after clamping
	ClampedValue decimal.Decimal `json:"clamped_value"`
}

// ReviewSeverity grades a review flag
type ReviewSeverity string

const (
	ReviewWarning ReviewSeverity = "warning"
	ReviewAlert   ReviewSeverity = "alert"
)

// ReviewEvent flags a cost input that needs human verification.
// It never changes a price; a clamp can fix bad arithmetic but the
// underlying market observation may still be stale or mis-entered.
type ReviewEvent struct {
	// SKU is the flagged line item
	SKU string `json:"sku"`

	// Severity grades how far below the review threshold the cost fell
	Severity ReviewSeverity `json:"severity"`

	// Reason is a human-readable explanation
	Reason string `json:"reason"`
}

// LineItemResult is the priced outcome for a single line item
type LineItemResult struct {
	LineItem

	// MarketCost is the raw observed cost (same as BaseCost)
	MarketCost decimal.Decimal `json:"market_cost"`

	// ObtainableCost is MarketCost adjusted by the procurement buffer.
	// Margin is always applied to this, never to MarketCost.
	ObtainableCost decimal.Decimal `json:"obtainable_cost"`

	// SellPrice is the final customer-facing total for this line
	SellPrice decimal.Decimal `json:"sell_price"`

	// SellUnitPrice is SellPrice / Quantity
	SellUnitPrice decimal.Decimal `json:"sell_unit_price"`

	// MarginDollars is SellPrice - ObtainableCost
	MarginDollars decimal.Decimal `json:"margin_dollars"`

	// AppliedMarginPercent is the realized margin on obtainable cost
	AppliedMarginPercent decimal.Decimal `json:"applied_margin_percent"`

	// ProcurementBufferApplied reports whether the buffer fired
	ProcurementBufferApplied bool `json:"procurement_buffer_applied"`

	// ProcurementBufferPct is the buffer percentage applied (zero if none)
	ProcurementBufferPct decimal.Decimal `json:"procurement_buffer_pct"`

	// WasClampedFloor reports a unit floor clamp
	WasClampedFloor bool `json:"was_clamped_floor"`

	// WasClampedCeiling reports a unit ceiling clamp
	WasClampedCeiling bool `json:"was_clamped_ceiling"`

	// ClampEvents is the ordered clamp trail for this line
	ClampEvents []ClampEvent `json:"clamp_events,omitempty"`

	// MarginBandID is the band the quote priced under
	MarginBandID BandID `json:"margin_band_id"`
}

// MarginPolicyResult is the complete, fully populated pricing output
type MarginPolicyResult struct {
	// RequestID uniquely identifies this pricing pass
	RequestID string `json:"request_id"`

	// LineItems are the per-line results
	LineItems []LineItemResult `json:"line_items"`

	// MarketCostTotal is the sum of raw market costs
	MarketCostTotal decimal.Decimal `json:"market_cost_total"`

	// ObtainableCostTotal is the sum of procurement-adjusted costs
	ObtainableCostTotal decimal.Decimal `json:"obtainable_cost_total"`

	// ProcurementBufferTotal is ObtainableCostTotal - MarketCostTotal
	ProcurementBufferTotal decimal.Decimal `json:"procurement_buffer_total"`

	// SellPriceTotal is the sum of sell prices
	SellPriceTotal decimal.Decimal `json:"sell_price_total"`

	// TotalMarginDollars is SellPriceTotal - ObtainableCostTotal
	TotalMarginDollars decimal.Decimal `json:"total_margin_dollars"`

	// BlendedMarginPercent is TotalMarginDollars / ObtainableCostTotal
	BlendedMarginPercent decimal.Decimal `json:"blended_margin_percent"`

	// MarginBandID is the selected deal-size band
	MarginBandID BandID `json:"margin_band_id"`

	// MarginBandDescription is the band's human-readable label
	MarginBandDescription string `json:"margin_band_description"`

	// ClampEvents holds quote-level events (per-line events live on lines)
	ClampEvents []ClampEvent `json:"clamp_events,omitempty"`

	// ReviewEvents flags cost inputs needing human verification
	ReviewEvents []ReviewEvent `json:"review_events,omitempty"`

	// NeedsHumanReview is true when any review event was emitted
	NeedsHumanReview bool `json:"needs_human_review"`

	// QuoteLevelWarnings are advisory aggregate-guard messages
	QuoteLevelWarnings []string `json:"quote_level_warnings,omitempty"`

	// PassesQuoteLevelGuards is false only when an aggregate guard is
	// violated beyond its hard-fail threshold
	PassesQuoteLevelGuards bool `json:"passes_quote_level_guards"`

	// PolicyVersion is the policy table version used
	PolicyVersion string `json:"policy_version"`

	// PricingAsOf is when this result was computed
	PricingAsOf time.Time `json:"pricing_as_of"`

	// PricingSourceVersion identifies the benchmark cost dataset
	PricingSourceVersion string `json:"pricing_source_version"`
}

// AllClampEvents returns quote-level events followed by each line's trail
func (r *MarginPolicyResult) AllClampEvents() []ClampEvent {
	events := make([]ClampEvent, 0, len(r.ClampEvents))
	events = append(events, r.ClampEvents...)
	for _, li := range r.LineItems {
		events = append(events, li.ClampEvents...)
	}
	return events
}

// WasClamped reports whether any line or quote-level clamp fired
func (r *MarginPolicyResult) WasClamped() bool {
	if len(r.ClampEvents) > 0 {
		return true
	}
	for _, li := range r.LineItems {
		if len(li.ClampEvents) > 0 {
			return true
		}
	}
	return false
}
