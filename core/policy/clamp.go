// Package policy - Price guard clamp engine
package policy

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"merlin-pricing/core/types"
)

// lineClamp is the outcome of running one line through the guard rails
type lineClamp struct {
	// SellPrice is the final clamped total for the line
	SellPrice decimal.Decimal

	// Events is the ordered clamp trail
	Events []types.ClampEvent

	// ClampedFloor and ClampedCeiling report which rails fired
	ClampedFloor   bool
	ClampedCeiling bool
}

// applyLineGuards clamps a pre-guard sell price. The order is fixed:
// unit floor, then unit ceiling, then hard cap. Clamping runs after margin
// is applied, never before, and the floor clamp is monotone upward only.
//
// Negative-margin protection always wins: no clamp may push the sell price
// below the obtainable cost. When the hard cap and protection conflict,
// both events are recorded and the price degrades to cost basis.
func applyLineGuards(guard *PriceGuard, basis costBasis, quantity decimal.Decimal,
	sellPrice decimal.Decimal, maxMarginPct *decimal.Decimal) lineClamp {

	out := lineClamp{SellPrice: sellPrice}

	if guard != nil {
		// Unit floor: raise underpriced inventory, never lower anything.
		floor := guard.EffectiveFloor()
		floorTotal := floor.Mul(quantity)
		if out.SellPrice.LessThan(floorTotal) {
			out.Events = append(out.Events, types.ClampEvent{
				Reason:        types.ClampUnitFloor,
				GuardName:     guardName(guard.Category, types.ClampUnitFloor),
				OriginalValue: out.SellPrice,
				ClampedValue:  floorTotal,
			})
			out.SellPrice = floorTotal
			out.ClampedFloor = true
		}

		// Unit ceiling: lower toward the ceiling, but never below the
		// obtainable cost. An underwater ceiling degrades the line to
		// zero margin, not negative margin.
		ceilingTotal := guard.CeilingPrice.Mul(quantity)
		if out.SellPrice.GreaterThan(ceilingTotal) {
			if ceilingTotal.LessThan(basis.ObtainableCost) {
				out.Events = append(out.Events, types.ClampEvent{
					Reason:        types.ClampNegativeMarginProtection,
					GuardName:     guardName(guard.Category, types.ClampNegativeMarginProtection),
					OriginalValue: out.SellPrice,
					ClampedValue:  basis.ObtainableCost,
				})
				out.SellPrice = basis.ObtainableCost
			} else {
				out.Events = append(out.Events, types.ClampEvent{
					Reason:        types.ClampUnitCeiling,
					GuardName:     guardName(guard.Category, types.ClampUnitCeiling),
					OriginalValue: out.SellPrice,
					ClampedValue:  ceilingTotal,
				})
				out.SellPrice = ceilingTotal
			}
			out.ClampedCeiling = true
		}
	}

	// Hard cap: a human-specified ceiling always wins, even when it sits
	// below the band floor or undoes a unit floor clamp.
	if maxMarginPct != nil {
		one := decimal.NewFromInt(1)
		capped := basis.ObtainableCost.Mul(one.Add(*maxMarginPct))
		if out.SellPrice.GreaterThan(capped) {
			if capped.LessThan(basis.ObtainableCost) {
				// Cap below cost basis: record the cap, then degrade to
				// cost under negative-margin protection.
				out.Events = append(out.Events, types.ClampEvent{
					Reason:        types.ClampHardCap,
					GuardName:     "max_margin_percent",
					OriginalValue: out.SellPrice,
					ClampedValue:  capped,
				})
				out.Events = append(out.Events, types.ClampEvent{
					Reason:        types.ClampNegativeMarginProtection,
					GuardName:     "max_margin_percent",
					OriginalValue: capped,
					ClampedValue:  basis.ObtainableCost,
				})
				out.SellPrice = basis.ObtainableCost
			} else {
				out.Events = append(out.Events, types.ClampEvent{
					Reason:        types.ClampHardCap,
					GuardName:     "max_margin_percent",
					OriginalValue: out.SellPrice,
					ClampedValue:  capped,
				})
				out.SellPrice = capped
			}
		}
	}

	return out
}

func guardName(category types.ProductClass, reason types.ClampReason) string {
	return fmt.Sprintf("%s_%s", category, reason)
}

// quoteLevelOutcome is the advisory aggregate-guard result
type quoteLevelOutcome struct {
	Events   []types.ClampEvent
	Warnings []string
	Passes   bool
}

// hardFailTolerance: an aggregate violation beyond 25% past its bound
// fails the quote-level check instead of just warning.
var hardFailTolerance = decimal.RequireFromString("0.25")

// evaluateQuoteGuards compares the blended $/unit per category against the
// category's aggregate rails. Violations are advisory warnings, not clamps:
// re-clamping the aggregate after per-line clamps already ran would reopen
// the double-margin risk. Only a violation beyond the hard-fail threshold
// flips PassesQuoteLevelGuards.
func evaluateQuoteGuards(cfg *PolicyConfig, lines []types.LineItemResult,
	quoteUnits map[types.ProductClass]decimal.Decimal) quoteLevelOutcome {

	out := quoteLevelOutcome{Passes: true}
	if len(quoteUnits) == 0 {
		return out
	}

	sellByCategory := make(map[types.ProductClass]decimal.Decimal)
	for i := range lines {
		cat := lines[i].Category
		sellByCategory[cat] = sellByCategory[cat].Add(lines[i].SellPrice)
	}

	one := decimal.NewFromInt(1)
	for _, cat := range sortedCategories(quoteUnits) {
		units := quoteUnits[cat]
		if !units.IsPositive() {
			continue
		}
		guard, ok := cfg.Guard(cat)
		if !ok {
			continue
		}
		totalSell, ok := sellByCategory[cat]
		if !ok {
			continue
		}
		blended := totalSell.Div(units)

		switch {
		case blended.LessThan(guard.FloorPrice):
			out.Events = append(out.Events, types.ClampEvent{
				Reason:        types.ClampQuoteLevelFloor,
				GuardName:     guardName(cat, types.ClampQuoteLevelFloor),
				OriginalValue: blended,
				ClampedValue:  guard.FloorPrice,
			})
			out.Warnings = append(out.Warnings, fmt.Sprintf(
				"%s: blended %s/%s below aggregate floor %s", cat, blended, guard.Unit, guard.FloorPrice))
			hardFail := guard.FloorPrice.Mul(one.Sub(hardFailTolerance))
			if blended.LessThan(hardFail) {
				out.Passes = false
			}
		case blended.GreaterThan(guard.CeilingPrice):
			out.Events = append(out.Events, types.ClampEvent{
				Reason:        types.ClampQuoteLevelCeiling,
				GuardName:     guardName(cat, types.ClampQuoteLevelCeiling),
				OriginalValue: blended,
				ClampedValue:  guard.CeilingPrice,
			})
			out.Warnings = append(out.Warnings, fmt.Sprintf(
				"%s: blended %s/%s above aggregate ceiling %s", cat, blended, guard.Unit, guard.CeilingPrice))
			hardFail := guard.CeilingPrice.Mul(one.Add(hardFailTolerance))
			if blended.GreaterThan(hardFail) {
				out.Passes = false
			}
		}
	}
	return out
}

// sortedCategories returns map keys in stable order so warning and event
// ordering is deterministic across runs.
func sortedCategories(m map[types.ProductClass]decimal.Decimal) []types.ProductClass {
	cats := make([]types.ProductClass, 0, len(m))
	for c := range m {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}
