// Package policy - Margin policy engine
package policy

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"merlin-pricing/core/types"
	"merlin-pricing/internal/errors"
)

// Engine prices quotes against one immutable policy snapshot.
// It is a pure function over its inputs: no I/O, no shared mutable state,
// safe for concurrent use from any number of callers.
type Engine struct {
	cfg *PolicyConfig
}

// NewEngine creates an engine over a validated policy snapshot
func NewEngine(cfg *PolicyConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// ApplyMarginPolicy converts a quantified bill of materials into a final,
// guard-railed, fully audited sell price. Every call constructs its result
// from scratch; nothing is cached or mutated.
func (e *Engine) ApplyMarginPolicy(input *types.MarginPolicyInput) (*types.MarginPolicyResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	dealSize := input.TotalBaseCost
	if dealSize.IsZero() {
		for i := range input.LineItems {
			dealSize = dealSize.Add(input.LineItems[i].BaseCost)
		}
	}
	band := e.cfg.Bands.Select(dealSize)

	result := &types.MarginPolicyResult{
		RequestID:              uuid.NewString(),
		MarginBandID:           band.ID,
		MarginBandDescription:  band.Description,
		PassesQuoteLevelGuards: true,
		PolicyVersion:          e.cfg.Version,
		PricingSourceVersion:   e.cfg.PricingSourceVersion,
		PricingAsOf:            time.Now().UTC(),
	}

	for i := range input.LineItems {
		item := &input.LineItems[i]
		guard, _ := e.cfg.Guard(item.Category)

		basis := resolveCostBasis(item, guard)

		marginPct := e.lineMargin(band, item.Category, input)
		sell := basis.sellBeforeGuards(marginPct)

		clamp := applyLineGuards(guard, basis, item.Quantity, sell, input.MaxMarginPercent)

		lr := types.LineItemResult{
			LineItem:                 *item,
			MarketCost:               basis.MarketCost,
			ObtainableCost:           basis.ObtainableCost,
			SellPrice:                clamp.SellPrice,
			SellUnitPrice:            clamp.SellPrice.Div(item.Quantity),
			MarginDollars:            clamp.SellPrice.Sub(basis.ObtainableCost),
			ProcurementBufferApplied: basis.BufferApplied,
			ProcurementBufferPct:     basis.BufferPct,
			WasClampedFloor:          clamp.ClampedFloor,
			WasClampedCeiling:        clamp.ClampedCeiling,
			ClampEvents:              clamp.Events,
			MarginBandID:             band.ID,
		}
		lr.AppliedMarginPercent = realizedMargin(lr.MarginDollars, basis.ObtainableCost)

		if ev := reviewLine(item, guard, basis.MarketUnitPrice); ev != nil {
			result.ReviewEvents = append(result.ReviewEvents, *ev)
			result.NeedsHumanReview = true
		}

		result.LineItems = append(result.LineItems, lr)
		result.MarketCostTotal = result.MarketCostTotal.Add(basis.MarketCost)
		result.ObtainableCostTotal = result.ObtainableCostTotal.Add(basis.ObtainableCost)
		result.SellPriceTotal = result.SellPriceTotal.Add(clamp.SellPrice)
	}

	result.ProcurementBufferTotal = result.ObtainableCostTotal.Sub(result.MarketCostTotal)
	result.TotalMarginDollars = result.SellPriceTotal.Sub(result.ObtainableCostTotal)
	result.BlendedMarginPercent = realizedMargin(result.TotalMarginDollars, result.ObtainableCostTotal)

	quoteLevel := evaluateQuoteGuards(e.cfg, result.LineItems, input.QuoteUnits)
	result.ClampEvents = quoteLevel.Events
	result.QuoteLevelWarnings = quoteLevel.Warnings
	result.PassesQuoteLevelGuards = quoteLevel.Passes

	return result, nil
}

// lineMargin picks the margin fraction for one line. A force override wins
// over all band, product and context math; it remains subject to the guard
// rails and the hard cap downstream.
func (e *Engine) lineMargin(band MarginBand, category types.ProductClass,
	input *types.MarginPolicyInput) decimal.Decimal {

	if input.ForceMarginPercent != nil {
		forced := *input.ForceMarginPercent
		if forced.IsNegative() {
			return decimal.Zero
		}
		return forced
	}
	return targetMargin(e.cfg, band, category, input.RiskLevel, input.CustomerSegment)
}

// realizedMargin is marginDollars / costBasis, zero on a zero basis
func realizedMargin(marginDollars, costBasis decimal.Decimal) decimal.Decimal {
	if costBasis.IsZero() {
		return decimal.Zero
	}
	return marginDollars.Div(costBasis)
}

// validateInput rejects malformed inputs before any policy math runs.
// The engine assumes well-formed positive quantities and costs; accepting
// them would produce division by zero rather than a priced quote.
func validateInput(input *types.MarginPolicyInput) error {
	if input == nil {
		return errors.Input("input is nil")
	}
	if len(input.LineItems) == 0 {
		return errors.Input("no line items")
	}
	if input.TotalBaseCost.IsNegative() {
		return errors.Inputf("negative total base cost %s", input.TotalBaseCost)
	}
	for i := range input.LineItems {
		item := &input.LineItems[i]
		if item.SKU == "" {
			return errors.Inputf("line %d: missing sku", i)
		}
		if !item.Quantity.IsPositive() {
			return errors.Inputf("line %s: quantity must be positive, got %s", item.SKU, item.Quantity)
		}
		if item.BaseCost.IsNegative() {
			return errors.Inputf("line %s: negative base cost %s", item.SKU, item.BaseCost)
		}
	}
	if input.MaxMarginPercent != nil && input.MaxMarginPercent.IsNegative() {
		return errors.Inputf("negative max margin percent %s", input.MaxMarginPercent)
	}
	return nil
}

// Apply prices a quote against a config without constructing an Engine
func Apply(cfg *PolicyConfig, input *types.MarginPolicyInput) (*types.MarginPolicyResult, error) {
	engine, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	return engine.ApplyMarginPolicy(input)
}
