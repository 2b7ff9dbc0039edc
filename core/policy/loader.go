// Package policy - Policy table file loading
// Policy files are YAML with all money and percent values written as
// strings, decoded through an explicit schema so decimals never pass
// through binary floating point.
package policy

import (
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"merlin-pricing/core/types"
	"merlin-pricing/internal/errors"
)

// policyFile is the YAML schema for a policy table file
type policyFile struct {
	Version              string            `yaml:"version"`
	PricingSourceVersion string            `yaml:"pricing_source_version"`
	Bands                []bandEntry       `yaml:"bands"`
	ProductMargins       []productEntry    `yaml:"product_margins"`
	RiskAdders           map[string]string `yaml:"risk_adders"`
	SegmentMultipliers   map[string]string `yaml:"segment_multipliers"`
	PriceGuards          []guardEntry      `yaml:"price_guards"`
}

type bandEntry struct {
	ID            string  `yaml:"id"`
	Description   string  `yaml:"description"`
	MinDealSize   string  `yaml:"min_deal_size"`
	MaxDealSize   *string `yaml:"max_deal_size"`
	MarginFloor   string  `yaml:"margin_floor"`
	MarginTarget  string  `yaml:"margin_target"`
	MarginCeiling string  `yaml:"margin_ceiling"`
}

type productEntry struct {
	Category string `yaml:"category"`
	Mode     string `yaml:"mode"`
	Value    string `yaml:"value"`
}

type guardEntry struct {
	Category                string  `yaml:"category"`
	Unit                    string  `yaml:"unit"`
	FloorPrice              string  `yaml:"floor_price"`
	CeilingPrice            string  `yaml:"ceiling_price"`
	LastMarketPrice         string  `yaml:"last_market_price"`
	ReviewBelowPrice        *string `yaml:"review_below_price"`
	ProcurementTriggerPrice *string `yaml:"procurement_trigger_price"`
	ProcurementBufferPct    string  `yaml:"procurement_buffer_pct"`
	QuoteFloorPrice         *string `yaml:"quote_floor_price"`
}

// LoadFile reads and validates a policy table file.
// Any failure is a CONFIG_ERROR and must abort startup.
func LoadFile(path string) (*PolicyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "reading policy file", err)
	}
	return Parse(data)
}

// Parse decodes and validates policy tables from YAML bytes
func Parse(data []byte) (*PolicyConfig, error) {
	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "parsing policy file", err)
	}

	cfg := &PolicyConfig{
		Version:              file.Version,
		PricingSourceVersion: file.PricingSourceVersion,
		RiskAdders:           make(map[types.RiskLevel]decimal.Decimal),
		SegmentMultipliers:   make(map[types.CustomerSegment]decimal.Decimal),
	}

	for _, b := range file.Bands {
		band := MarginBand{ID: types.BandID(b.ID), Description: b.Description}
		var err error
		if band.MinDealSize, err = parseDecimal("min_deal_size", b.ID, b.MinDealSize); err != nil {
			return nil, err
		}
		if b.MaxDealSize != nil {
			max, err := parseDecimal("max_deal_size", b.ID, *b.MaxDealSize)
			if err != nil {
				return nil, err
			}
			band.MaxDealSize = &max
		}
		if band.MarginFloor, err = parseDecimal("margin_floor", b.ID, b.MarginFloor); err != nil {
			return nil, err
		}
		if band.MarginTarget, err = parseDecimal("margin_target", b.ID, b.MarginTarget); err != nil {
			return nil, err
		}
		if band.MarginCeiling, err = parseDecimal("margin_ceiling", b.ID, b.MarginCeiling); err != nil {
			return nil, err
		}
		cfg.Bands = append(cfg.Bands, band)
	}

	for _, p := range file.ProductMargins {
		value, err := parseDecimal("value", p.Category, p.Value)
		if err != nil {
			return nil, err
		}
		cfg.ProductMargins = append(cfg.ProductMargins, ProductMarginConfig{
			Category: types.ProductClass(p.Category),
			Mode:     ProductMarginMode(p.Mode),
			Value:    value,
		})
	}

	for level, raw := range file.RiskAdders {
		adder, err := parseDecimal("risk_adder", level, raw)
		if err != nil {
			return nil, err
		}
		cfg.RiskAdders[types.RiskLevel(level)] = adder
	}

	for segment, raw := range file.SegmentMultipliers {
		mult, err := parseDecimal("segment_multiplier", segment, raw)
		if err != nil {
			return nil, err
		}
		cfg.SegmentMultipliers[types.CustomerSegment(segment)] = mult
	}

	for _, g := range file.PriceGuards {
		guard := PriceGuard{
			Category: types.ProductClass(g.Category),
			Unit:     types.Unit(g.Unit),
		}
		var err error
		if guard.FloorPrice, err = parseDecimal("floor_price", g.Category, g.FloorPrice); err != nil {
			return nil, err
		}
		if guard.CeilingPrice, err = parseDecimal("ceiling_price", g.Category, g.CeilingPrice); err != nil {
			return nil, err
		}
		if guard.LastMarketPrice, err = parseDecimal("last_market_price", g.Category, g.LastMarketPrice); err != nil {
			return nil, err
		}
		if guard.ReviewBelowPrice, err = parseOptional("review_below_price", g.Category, g.ReviewBelowPrice); err != nil {
			return nil, err
		}
		if guard.ProcurementTriggerPrice, err = parseOptional("procurement_trigger_price", g.Category, g.ProcurementTriggerPrice); err != nil {
			return nil, err
		}
		if g.ProcurementBufferPct != "" {
			if guard.ProcurementBufferPct, err = parseDecimal("procurement_buffer_pct", g.Category, g.ProcurementBufferPct); err != nil {
				return nil, err
			}
		}
		if guard.QuoteFloorPrice, err = parseOptional("quote_floor_price", g.Category, g.QuoteFloorPrice); err != nil {
			return nil, err
		}
		cfg.PriceGuards = append(cfg.PriceGuards, guard)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseDecimal(field, owner, raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Configf("%s: invalid %s %q", owner, field, raw)
	}
	return v, nil
}

func parseOptional(field, owner string, raw *string) (*decimal.Decimal, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	v, err := parseDecimal(field, owner, *raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
