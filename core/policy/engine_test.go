// Package policy - Margin policy engine behavioural tests
package policy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merlin-pricing/core/types"
	"merlin-pricing/internal/errors"
)

var tolerance = decimal.RequireFromString("0.000001")

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(DefaultPolicyConfig())
	require.NoError(t, err)
	return engine
}

func bessLine(sku string, quantityKWh, baseCost string) types.LineItem {
	qty := d(quantityKWh)
	cost := d(baseCost)
	return types.LineItem{
		SKU:        sku,
		Category:   types.ProductBESS,
		BaseCost:   cost,
		Quantity:   qty,
		UnitCost:   cost.Div(qty),
		Unit:       types.UnitKWh,
		CostSource: "benchmark",
	}
}

func line(sku string, category types.ProductClass, unit types.Unit, quantity, baseCost string) types.LineItem {
	qty := d(quantity)
	cost := d(baseCost)
	item := types.LineItem{
		SKU:      sku,
		Category: category,
		BaseCost: cost,
		Quantity: qty,
		Unit:     unit,
	}
	// Malformed quantities must reach the engine, not blow up here.
	if !qty.IsZero() {
		item.UnitCost = cost.Div(qty)
	}
	return item
}

func TestApplyMarginPolicyBasicQuote(t *testing.T) {
	engine := newTestEngine(t)

	input := &types.MarginPolicyInput{
		LineItems:     []types.LineItem{bessLine("BESS-1", "1000", "135000")},
		TotalBaseCost: d("135000"),
	}
	result, err := engine.ApplyMarginPolicy(input)
	require.NoError(t, err)

	// Micro band, BESS 1.0x multiplier, direct segment: target 35%.
	assert.Equal(t, types.BandMicro, result.MarginBandID)
	require.Len(t, result.LineItems, 1)
	li := result.LineItems[0]

	// $135/kWh is above the procurement trigger, so no buffer.
	assert.False(t, li.ProcurementBufferApplied)
	assert.True(t, li.ObtainableCost.Equal(li.MarketCost))
	assert.True(t, li.SellPrice.Equal(d("182250")), "got %s", li.SellPrice)
	assert.True(t, result.BlendedMarginPercent.Sub(d("0.35")).Abs().LessThan(tolerance))

	assert.NotEmpty(t, result.RequestID)
	assert.Equal(t, DefaultPolicyVersion, result.PolicyVersion)
	assert.Equal(t, DefaultPricingSourceVersion, result.PricingSourceVersion)
	assert.False(t, result.PricingAsOf.IsZero())
	assert.True(t, result.PassesQuoteLevelGuards)
}

// TestNeverNegativeMargin is the trust anchor: sell >= obtainable >= 0 and
// sell >= base, across a spread of pathological inputs.
func TestNeverNegativeMargin(t *testing.T) {
	engine := newTestEngine(t)

	inputs := []*types.MarginPolicyInput{
		// Way above ceiling: protection degrades to zero margin.
		{LineItems: []types.LineItem{bessLine("B1", "1000", "300000")}, TotalBaseCost: d("300000")},
		// Way below floor: floor clamp raises.
		{LineItems: []types.LineItem{bessLine("B2", "1000", "60000")}, TotalBaseCost: d("60000")},
		// Hard cap at zero margin.
		{
			LineItems:        []types.LineItem{bessLine("B3", "1000", "140000")},
			TotalBaseCost:    d("140000"),
			MaxMarginPercent: dp("0"),
		},
		// Heavy segment discount on a mega deal.
		{
			LineItems:       []types.LineItem{bessLine("B4", "400000", "52000000")},
			TotalBaseCost:   d("52000000"),
			CustomerSegment: types.SegmentReseller,
		},
	}

	for _, input := range inputs {
		result, err := engine.ApplyMarginPolicy(input)
		require.NoError(t, err)

		assert.True(t, result.ObtainableCostTotal.GreaterThanOrEqual(decimal.Zero))
		assert.True(t, result.SellPriceTotal.GreaterThanOrEqual(result.ObtainableCostTotal),
			"sell %s < obtainable %s", result.SellPriceTotal, result.ObtainableCostTotal)
		assert.True(t, result.SellPriceTotal.GreaterThanOrEqual(result.MarketCostTotal),
			"sell %s < market %s", result.SellPriceTotal, result.MarketCostTotal)
		assert.False(t, result.BlendedMarginPercent.IsNegative())
	}
}

// TestBlendedMarginArithmetic verifies the no-double-margin identity:
// blended margin is computed on obtainable cost, never on market cost.
func TestBlendedMarginArithmetic(t *testing.T) {
	engine := newTestEngine(t)

	// BESS below the procurement trigger so buffer fires and the two cost
	// layers diverge.
	input := &types.MarginPolicyInput{
		LineItems: []types.LineItem{
			bessLine("B1", "2000", "190000"), // $95/kWh, buffered
			line("SOL-1", types.ProductSolar, types.UnitKW, "500", "400000"),
			line("LAB-1", types.ProductConstructionLabor, types.UnitEach, "1", "250000"),
		},
	}
	result, err := engine.ApplyMarginPolicy(input)
	require.NoError(t, err)

	assert.True(t, result.ObtainableCostTotal.GreaterThan(result.MarketCostTotal),
		"procurement buffer must widen the cost basis")

	identity := result.TotalMarginDollars.Div(result.ObtainableCostTotal)
	assert.True(t, result.BlendedMarginPercent.Sub(identity).Abs().LessThan(tolerance))

	wrongBasis := result.TotalMarginDollars.Div(result.MarketCostTotal)
	assert.False(t, result.BlendedMarginPercent.Sub(wrongBasis).Abs().LessThan(tolerance),
		"blended margin computed on market cost would double-count the buffer")
}

// TestThreeLayerConsistency checks the exact additive identities across a
// mixed multi-category quote.
func TestThreeLayerConsistency(t *testing.T) {
	engine := newTestEngine(t)

	input := &types.MarginPolicyInput{
		LineItems: []types.LineItem{
			bessLine("B1", "4000", "380000"),                                      // $95/kWh, buffered
			line("SOL-1", types.ProductSolar, types.UnitKW, "800", "440000"),      // $550/kW, buffered
			line("PCS-1", types.ProductInverterPCS, types.UnitKW, "1200", "110000"),
			line("ENG-1", types.ProductEngineering, types.UnitEach, "1", "90000"),
			line("MISC-1", "scaffolding", types.UnitEach, "10", "20000"),
		},
	}
	result, err := engine.ApplyMarginPolicy(input)
	require.NoError(t, err)

	assert.True(t, result.ObtainableCostTotal.Equal(result.MarketCostTotal.Add(result.ProcurementBufferTotal)),
		"obtainable != market + buffer")
	assert.True(t, result.SellPriceTotal.Equal(result.ObtainableCostTotal.Add(result.TotalMarginDollars)),
		"sell != obtainable + margin")

	var market, obtainable, sell decimal.Decimal
	for _, li := range result.LineItems {
		market = market.Add(li.MarketCost)
		obtainable = obtainable.Add(li.ObtainableCost)
		sell = sell.Add(li.SellPrice)
	}
	assert.True(t, result.MarketCostTotal.Equal(market))
	assert.True(t, result.ObtainableCostTotal.Equal(obtainable))
	assert.True(t, result.SellPriceTotal.Equal(sell))
}

// TestHardCapBeatsBandFloor: a $2M deal prices in a band whose floor sits
// far above a 5% cap; the cap must still win.
func TestHardCapBeatsBandFloor(t *testing.T) {
	engine := newTestEngine(t)

	input := &types.MarginPolicyInput{
		LineItems:        []types.LineItem{bessLine("B1", "16000", "2000000")},
		TotalBaseCost:    d("2000000"),
		MaxMarginPercent: dp("0.05"),
	}
	result, err := engine.ApplyMarginPolicy(input)
	require.NoError(t, err)

	assert.Equal(t, types.BandSmallPlus, result.MarginBandID)
	assert.True(t, result.BlendedMarginPercent.LessThanOrEqual(d("0.051")),
		"blended %s exceeds hard cap", result.BlendedMarginPercent)

	require.Len(t, result.LineItems, 1)
	reasons := clampReasons(result.LineItems[0].ClampEvents)
	assert.Contains(t, reasons, types.ClampHardCap)
}

// TestReprocessingCompoundsMargin demonstrates the documented anti-pattern:
// feeding a sell price back in as a base cost applies margin twice.
func TestReprocessingCompoundsMargin(t *testing.T) {
	engine := newTestEngine(t)

	first := &types.MarginPolicyInput{
		LineItems:     []types.LineItem{bessLine("B1", "6000", "800000")},
		TotalBaseCost: d("800000"),
	}
	firstResult, err := engine.ApplyMarginPolicy(first)
	require.NoError(t, err)

	singlePass := firstResult.SellPriceTotal.Div(d("800000"))
	assert.True(t, singlePass.LessThan(d("1.3")), "single pass ratio %s", singlePass)

	second := &types.MarginPolicyInput{
		LineItems:     []types.LineItem{bessLine("B1", "6000", firstResult.SellPriceTotal.String())},
		TotalBaseCost: firstResult.SellPriceTotal,
	}
	secondResult, err := engine.ApplyMarginPolicy(second)
	require.NoError(t, err)

	compounded := secondResult.SellPriceTotal.Div(d("800000"))
	assert.True(t, compounded.GreaterThan(d("1.3")),
		"reprocessing must compound margin, got %s", compounded)
}

// TestSegmentDiscountsLowerMargin: partner and government channels realize
// strictly less margin than direct for an identical quote.
func TestSegmentDiscountsLowerMargin(t *testing.T) {
	engine := newTestEngine(t)

	blended := func(segment types.CustomerSegment) decimal.Decimal {
		input := &types.MarginPolicyInput{
			LineItems: []types.LineItem{
				bessLine("B1", "1500", "210000"),
				line("PCS-1", types.ProductInverterPCS, types.UnitKW, "900", "85000"),
			},
			TotalBaseCost:   d("295000"),
			CustomerSegment: segment,
		}
		result, err := engine.ApplyMarginPolicy(input)
		require.NoError(t, err)
		return result.BlendedMarginPercent
	}

	direct := blended(types.SegmentDirect)
	epc := blended(types.SegmentEPCPartner)
	government := blended(types.SegmentGovernment)

	assert.True(t, epc.LessThan(direct), "epc %s !< direct %s", epc, direct)
	assert.True(t, government.LessThan(direct), "government %s !< direct %s", government, direct)
}

func TestRiskAdderRaisesMargin(t *testing.T) {
	engine := newTestEngine(t)

	base := &types.MarginPolicyInput{
		LineItems:     []types.LineItem{bessLine("B1", "1500", "210000")},
		TotalBaseCost: d("210000"),
	}
	standard, err := engine.ApplyMarginPolicy(base)
	require.NoError(t, err)

	elevated := *base
	elevated.RiskLevel = types.RiskElevated
	elevatedResult, err := engine.ApplyMarginPolicy(&elevated)
	require.NoError(t, err)

	assert.True(t, elevatedResult.BlendedMarginPercent.GreaterThan(standard.BlendedMarginPercent))
}

// TestAdditiveMarginIgnoresBand: labor margins are policy-fixed, not
// deal-size-scaled, even when the band floor is higher.
func TestAdditiveMarginIgnoresBand(t *testing.T) {
	engine := newTestEngine(t)

	input := &types.MarginPolicyInput{
		LineItems:     []types.LineItem{line("LAB-1", types.ProductConstructionLabor, types.UnitEach, "1", "100000")},
		TotalBaseCost: d("100000"), // micro band, floor 30%
	}
	result, err := engine.ApplyMarginPolicy(input)
	require.NoError(t, err)

	assert.True(t, result.BlendedMarginPercent.Sub(d("0.18")).Abs().LessThan(tolerance),
		"labor margin %s should be the fixed 18%% adder", result.BlendedMarginPercent)
}

// TestUnknownCategoryDegrades: an unknown category never fails, it prices
// at the neutral 1.0x multiplier with no guards.
func TestUnknownCategoryDegrades(t *testing.T) {
	engine := newTestEngine(t)

	input := &types.MarginPolicyInput{
		LineItems:     []types.LineItem{line("X-1", "quantum_flux_capacitor", types.UnitEach, "2", "50000")},
		TotalBaseCost: d("50000"),
	}
	result, err := engine.ApplyMarginPolicy(input)
	require.NoError(t, err)

	assert.True(t, result.BlendedMarginPercent.Sub(d("0.35")).Abs().LessThan(tolerance))
	assert.Empty(t, result.LineItems[0].ClampEvents)
	assert.Empty(t, result.ReviewEvents)
}

// TestForceMarginWins: a force override bypasses band, product and context
// math entirely, including the band floor.
func TestForceMarginWins(t *testing.T) {
	engine := newTestEngine(t)

	input := &types.MarginPolicyInput{
		LineItems:     []types.LineItem{bessLine("B1", "1000", "140000")},
		TotalBaseCost: d("140000"), // micro band, floor 30%
		ForceMarginPercent: dp("0.08"),
	}
	result, err := engine.ApplyMarginPolicy(input)
	require.NoError(t, err)

	// 140,000 * 1.08 = 151,200 -> $151.20/kWh, inside the guard rails.
	assert.True(t, result.BlendedMarginPercent.Sub(d("0.08")).Abs().LessThan(tolerance),
		"force margin must win over the 30%% band floor, got %s", result.BlendedMarginPercent)
}

func TestForceMarginStillGuardRailed(t *testing.T) {
	engine := newTestEngine(t)

	// Forced to 80%: 140,000 * 1.8 = 252,000 -> $252/kWh, above the
	// $250/kWh ceiling. The guard rails still apply to forced margins.
	input := &types.MarginPolicyInput{
		LineItems:     []types.LineItem{bessLine("B1", "1000", "140000")},
		TotalBaseCost: d("140000"),
		ForceMarginPercent: dp("0.8"),
	}
	result, err := engine.ApplyMarginPolicy(input)
	require.NoError(t, err)

	assert.True(t, result.SellPriceTotal.Equal(d("250000")))
	reasons := clampReasons(result.LineItems[0].ClampEvents)
	assert.Contains(t, reasons, types.ClampUnitCeiling)
}

func TestInputValidation(t *testing.T) {
	engine := newTestEngine(t)

	cases := []struct {
		name  string
		input *types.MarginPolicyInput
	}{
		{"nil input", nil},
		{"no line items", &types.MarginPolicyInput{}},
		{"zero quantity", &types.MarginPolicyInput{
			LineItems: []types.LineItem{line("B1", types.ProductBESS, types.UnitKWh, "0", "1000")},
		}},
		{"negative quantity", &types.MarginPolicyInput{
			LineItems: []types.LineItem{line("B1", types.ProductBESS, types.UnitKWh, "-10", "1000")},
		}},
		{"negative base cost", &types.MarginPolicyInput{
			LineItems: []types.LineItem{line("B1", types.ProductBESS, types.UnitKWh, "10", "-5")},
		}},
		{"missing sku", &types.MarginPolicyInput{
			LineItems: []types.LineItem{line("", types.ProductBESS, types.UnitKWh, "10", "1000")},
		}},
		{"negative max margin", &types.MarginPolicyInput{
			LineItems:        []types.LineItem{bessLine("B1", "10", "1300")},
			MaxMarginPercent: dp("-0.1"),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.ApplyMarginPolicy(tc.input)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeInput))
		})
	}
}

func TestDealSizeDerivedFromLines(t *testing.T) {
	engine := newTestEngine(t)

	input := &types.MarginPolicyInput{
		LineItems: []types.LineItem{
			bessLine("B1", "5000", "700000"),
			line("SOL-1", types.ProductSolar, types.UnitKW, "1000", "900000"),
		},
		// TotalBaseCost omitted: 1.6M total puts this in small_plus.
	}
	result, err := engine.ApplyMarginPolicy(input)
	require.NoError(t, err)
	assert.Equal(t, types.BandSmallPlus, result.MarginBandID)
}

func clampReasons(events []types.ClampEvent) []types.ClampReason {
	reasons := make([]types.ClampReason, 0, len(events))
	for _, ev := range events {
		reasons = append(reasons, ev.Reason)
	}
	return reasons
}
