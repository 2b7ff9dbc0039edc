// Package policy - Default policy tables
// These are static configuration, loaded once at process start. Benchmark
// prices reflect the 2025Q3 cost dataset.
package policy

import (
	"github.com/shopspring/decimal"

	"merlin-pricing/core/types"
)

// DefaultPolicyVersion is the in-tree policy table version
const DefaultPolicyVersion = "2025.3"

// DefaultPricingSourceVersion identifies the benchmark dataset behind the
// default guard prices
const DefaultPricingSourceVersion = "benchmark-2025Q3"

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

// DefaultPolicyConfig builds the in-tree policy tables. The result passes
// Validate; that is asserted by the test suite.
func DefaultPolicyConfig() *PolicyConfig {
	return &PolicyConfig{
		Version:              DefaultPolicyVersion,
		PricingSourceVersion: DefaultPricingSourceVersion,

		Bands: BandTable{
			{ID: types.BandMicro, Description: "Micro (<$500k)", MinDealSize: d("0"), MaxDealSize: dp("500000"), MarginFloor: d("0.30"), MarginTarget: d("0.35"), MarginCeiling: d("0.45")},
			{ID: types.BandSmall, Description: "Small ($500k-$1.5M)", MinDealSize: d("500000"), MaxDealSize: dp("1500000"), MarginFloor: d("0.22"), MarginTarget: d("0.28"), MarginCeiling: d("0.38")},
			{ID: types.BandSmallPlus, Description: "Small+ ($1.5M-$3M)", MinDealSize: d("1500000"), MaxDealSize: dp("3000000"), MarginFloor: d("0.18"), MarginTarget: d("0.24"), MarginCeiling: d("0.32")},
			{ID: types.BandMid, Description: "Mid ($3M-$6M)", MinDealSize: d("3000000"), MaxDealSize: dp("6000000"), MarginFloor: d("0.15"), MarginTarget: d("0.20"), MarginCeiling: d("0.28")},
			{ID: types.BandMidPlus, Description: "Mid+ ($6M-$10M)", MinDealSize: d("6000000"), MaxDealSize: dp("10000000"), MarginFloor: d("0.12"), MarginTarget: d("0.17"), MarginCeiling: d("0.24")},
			{ID: types.BandLarge, Description: "Large ($10M-$20M)", MinDealSize: d("10000000"), MaxDealSize: dp("20000000"), MarginFloor: d("0.10"), MarginTarget: d("0.14"), MarginCeiling: d("0.20")},
			{ID: types.BandEnterprise, Description: "Enterprise ($20M-$40M)", MinDealSize: d("20000000"), MaxDealSize: dp("40000000"), MarginFloor: d("0.08"), MarginTarget: d("0.12"), MarginCeiling: d("0.17")},
			{ID: types.BandMega, Description: "Mega ($40M+)", MinDealSize: d("40000000"), MarginFloor: d("0.06"), MarginTarget: d("0.10"), MarginCeiling: d("0.15")},
		},

		ProductMargins: []ProductMarginConfig{
			{Category: types.ProductBESS, Mode: MarginMultiplicative, Value: d("1.0")},
			{Category: types.ProductSolar, Mode: MarginMultiplicative, Value: d("0.9")},
			{Category: types.ProductInverterPCS, Mode: MarginMultiplicative, Value: d("1.05")},
			{Category: types.ProductGenerator, Mode: MarginMultiplicative, Value: d("1.1")},
			{Category: types.ProductTransformer, Mode: MarginMultiplicative, Value: d("1.15")},
			{Category: types.ProductEVCharger, Mode: MarginMultiplicative, Value: d("1.1")},
			{Category: types.ProductMicrogridController, Mode: MarginMultiplicative, Value: d("1.25")},
			{Category: types.ProductEMSSoftware, Mode: MarginMultiplicative, Value: d("1.4")},
			{Category: types.ProductConstructionLabor, Mode: MarginAdditive, Value: d("0.18")},
			{Category: types.ProductEngineering, Mode: MarginAdditive, Value: d("0.15")},
		},

		RiskAdders: map[types.RiskLevel]decimal.Decimal{
			types.RiskStandard:       d("0"),
			types.RiskElevated:       d("0.02"),
			types.RiskHighComplexity: d("0.04"),
		},

		SegmentMultipliers: map[types.CustomerSegment]decimal.Decimal{
			types.SegmentDirect:          d("1.0"),
			types.SegmentEPCPartner:      d("0.85"),
			types.SegmentGovernment:      d("0.9"),
			types.SegmentReseller:        d("0.8"),
			types.SegmentNationalAccount: d("0.92"),
		},

		PriceGuards: []PriceGuard{
			{
				Category: types.ProductBESS, Unit: types.UnitKWh,
				FloorPrice: d("105"), CeilingPrice: d("250"), LastMarketPrice: d("135"),
				ReviewBelowPrice:        dp("95"),
				ProcurementTriggerPrice: dp("110"), ProcurementBufferPct: d("0.12"),
				QuoteFloorPrice:         dp("118"),
			},
			{
				Category: types.ProductSolar, Unit: types.UnitKW,
				FloorPrice: d("550"), CeilingPrice: d("1400"), LastMarketPrice: d("820"),
				ReviewBelowPrice:        dp("480"),
				ProcurementTriggerPrice: dp("600"), ProcurementBufferPct: d("0.10"),
			},
			{
				Category: types.ProductInverterPCS, Unit: types.UnitKW,
				FloorPrice: d("55"), CeilingPrice: d("180"), LastMarketPrice: d("92"),
				ReviewBelowPrice: dp("48"),
			},
			{
				Category: types.ProductGenerator, Unit: types.UnitKW,
				FloorPrice: d("300"), CeilingPrice: d("900"), LastMarketPrice: d("520"),
				ReviewBelowPrice: dp("260"),
			},
			{
				Category: types.ProductTransformer, Unit: types.UnitMVA,
				FloorPrice: d("9000"), CeilingPrice: d("45000"), LastMarketPrice: d("21000"),
				ReviewBelowPrice: dp("7500"),
			},
			{
				Category: types.ProductEVCharger, Unit: types.UnitEach,
				FloorPrice: d("28000"), CeilingPrice: d("90000"), LastMarketPrice: d("46000"),
			},
			{
				Category: types.ProductMicrogridController, Unit: types.UnitEach,
				FloorPrice: d("40000"), CeilingPrice: d("250000"), LastMarketPrice: d("95000"),
			},
			{
				Category: types.ProductEMSSoftware, Unit: types.UnitEach,
				FloorPrice: d("15000"), CeilingPrice: d("120000"), LastMarketPrice: d("42000"),
			},
		},
	}
}
