// Package types - Quote and line-item input types
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductClass identifies an equipment or service category
type ProductClass string

const (
	ProductBESS                ProductClass = "bess"
	ProductSolar               ProductClass = "solar"
	ProductInverterPCS         ProductClass = "inverter_pcs"
	ProductGenerator           ProductClass = "generator"
	ProductTransformer         ProductClass = "transformer"
	ProductEVCharger           ProductClass = "ev_charger"
	ProductMicrogridController ProductClass = "microgrid_controller"
	ProductEMSSoftware         ProductClass = "ems_software"
	ProductConstructionLabor   ProductClass = "construction_labor"
	ProductEngineering         ProductClass = "engineering"
)

// String returns the string representation
func (p ProductClass) String() string {
	return string(p)
}

// Unit is the quantity unit a line item is measured in
type Unit string

const (
	UnitKWh  Unit = "kWh"
	UnitKW   Unit = "kW"
	UnitW    Unit = "W"
	UnitMVA  Unit = "MVA"
	UnitEach Unit = "unit"
)

// RiskLevel categorizes project execution risk
type RiskLevel string

const (
	RiskStandard       RiskLevel = "standard"
	RiskElevated       RiskLevel = "elevated"
	RiskHighComplexity RiskLevel = "high_complexity"
)

// CustomerSegment identifies the commercial channel for a quote
type CustomerSegment string

const (
	SegmentDirect          CustomerSegment = "direct"
	SegmentEPCPartner      CustomerSegment = "epc_partner"
	SegmentGovernment      CustomerSegment = "government"
	SegmentReseller        CustomerSegment = "reseller"
	SegmentNationalAccount CustomerSegment = "national_account"
)

// BandID identifies a deal-size margin band
type BandID string

const (
	BandMicro      BandID = "micro"
	BandSmall      BandID = "small"
	BandSmallPlus  BandID = "small_plus"
	BandMid        BandID = "mid"
	BandMidPlus    BandID = "mid_plus"
	BandLarge      BandID = "large"
	BandEnterprise BandID = "enterprise"
	BandMega       BandID = "mega"
)

// LineItem is a single quantified bill-of-materials entry.
// Quantities come from the sizing engine, costs from the market data source;
// the pricing engine treats both as fixed inputs.
type LineItem struct {
	// SKU identifies the product
	SKU string `json:"sku"`

	// Category is the product category
	Category ProductClass `json:"category"`

	// Description is a human-readable label
	Description string `json:"description,omitempty"`

	// BaseCost is the total observed market cost for this line (all units)
	BaseCost decimal.Decimal `json:"base_cost"`

	// Quantity is the unit count (kWh, kW, MVA, units)
	Quantity decimal.Decimal `json:"quantity"`

	// UnitCost is BaseCost / Quantity
	UnitCost decimal.Decimal `json:"unit_cost"`

	// Unit is the quantity unit
	Unit Unit `json:"unit"`

	// CostSource records where the cost observation came from
	CostSource string `json:"cost_source,omitempty"`

	// CostAsOfDate is when the cost was observed
	CostAsOfDate time.Time `json:"cost_as_of_date,omitempty"`
}

// MarginPolicyInput is the complete input contract for one pricing pass.
// Sell prices must never be fed back in as base costs; the engine applies
// margin exactly once per quote.
type MarginPolicyInput struct {
	// LineItems is the quantified bill of materials
	LineItems []LineItem `json:"line_items"`

	// TotalBaseCost is the deal size used for band selection.
	// Zero means "derive from the line-item base costs".
	TotalBaseCost decimal.Decimal `json:"total_base_cost"`

	// RiskLevel is the project risk classification (default standard)
	RiskLevel RiskLevel `json:"risk_level,omitempty"`

	// CustomerSegment is the commercial channel (default direct)
	CustomerSegment CustomerSegment `json:"customer_segment,omitempty"`

	// ForceMarginPercent sets every line's margin directly, bypassing
	// band, product and context math
	ForceMarginPercent *decimal.Decimal `json:"force_margin_percent,omitempty"`

	// MaxMarginPercent is a hard cap on realized margin
	MaxMarginPercent *decimal.Decimal `json:"max_margin_percent,omitempty"`

	// QuoteUnits is total quantity per category across the whole quote,
	// used for quote-level aggregate guards
	QuoteUnits map[ProductClass]decimal.Decimal `json:"quote_units,omitempty"`
}
