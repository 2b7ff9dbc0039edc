// Package policy implements the margin and pricing policy engine.
// It converts raw line-item costs into a final, auditable, guard-railed
// sell price under a layered cost-to-price policy.
package policy

import (
	"github.com/shopspring/decimal"

	"merlin-pricing/core/types"
	"merlin-pricing/internal/errors"
)

// MarginBand is a deal-size bracket with its own margin limits.
// Bands are immutable once loaded into a PolicyConfig.
type MarginBand struct {
	// ID identifies the band
	ID types.BandID `json:"id"`

	// Description is a human-readable label
	Description string `json:"description"`

	// MinDealSize is the inclusive lower bound in dollars
	MinDealSize decimal.Decimal `json:"min_deal_size"`

	// MaxDealSize is the exclusive upper bound (nil = open-ended)
	MaxDealSize *decimal.Decimal `json:"max_deal_size,omitempty"`

	// MarginFloor is the minimum margin fraction for the band
	MarginFloor decimal.Decimal `json:"margin_floor"`

	// MarginTarget is the default margin fraction for the band
	MarginTarget decimal.Decimal `json:"margin_target"`

	// MarginCeiling is the maximum margin fraction for the band
	MarginCeiling decimal.Decimal `json:"margin_ceiling"`
}

// Contains reports whether a deal size falls in [MinDealSize, MaxDealSize).
// A deal exactly at a boundary belongs to the higher band.
func (b *MarginBand) Contains(dealSize decimal.Decimal) bool {
	if dealSize.LessThan(b.MinDealSize) {
		return false
	}
	if b.MaxDealSize == nil {
		return true
	}
	return dealSize.LessThan(*b.MaxDealSize)
}

// BandTable is the ordered set of margin bands, smallest first
type BandTable []MarginBand

// Select returns the band containing dealSize.
// The table is validated at load time to partition [0, inf), so lookup
// cannot fail at request time for non-negative deal sizes.
func (t BandTable) Select(dealSize decimal.Decimal) MarginBand {
	for i := range t {
		if t[i].Contains(dealSize) {
			return t[i]
		}
	}
	// Unreachable on a validated table; the open-ended last band catches
	// everything at or above its minimum.
	return t[len(t)-1]
}

// Validate enforces the band-table invariants: bands partition [0, inf)
// with no gaps or overlaps, floor <= target <= ceiling within each band,
// and targets monotonically non-increasing as deal size grows.
func (t BandTable) Validate() error {
	if len(t) == 0 {
		return errors.Config("band table is empty")
	}
	if !t[0].MinDealSize.IsZero() {
		return errors.Configf("first band %s must start at 0, starts at %s",
			t[0].ID, t[0].MinDealSize)
	}
	for i := range t {
		b := &t[i]
		if b.MarginFloor.GreaterThan(b.MarginTarget) || b.MarginTarget.GreaterThan(b.MarginCeiling) {
			return errors.Configf("band %s: floor/target/ceiling out of order (%s/%s/%s)",
				b.ID, b.MarginFloor, b.MarginTarget, b.MarginCeiling)
		}
		if b.MarginFloor.IsNegative() {
			return errors.Configf("band %s: negative margin floor %s", b.ID, b.MarginFloor)
		}
		if i < len(t)-1 {
			if b.MaxDealSize == nil {
				return errors.Configf("band %s: only the last band may be open-ended", b.ID)
			}
			if !b.MaxDealSize.GreaterThan(b.MinDealSize) {
				return errors.Configf("band %s: empty interval [%s, %s)",
					b.ID, b.MinDealSize, b.MaxDealSize)
			}
			next := &t[i+1]
			if !next.MinDealSize.Equal(*b.MaxDealSize) {
				return errors.Configf("gap or overlap between bands %s and %s: %s != %s",
					b.ID, next.ID, b.MaxDealSize, next.MinDealSize)
			}
			if next.MarginTarget.GreaterThan(b.MarginTarget) {
				return errors.Configf("band %s target %s exceeds smaller band %s target %s",
					next.ID, next.MarginTarget, b.ID, b.MarginTarget)
			}
		} else if b.MaxDealSize != nil {
			return errors.Configf("last band %s must be open-ended", b.ID)
		}
	}
	return nil
}
