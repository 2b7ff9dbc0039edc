// Package policy - Three-layer cost stack tests
package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merlin-pricing/core/types"
)

func TestProcurementBufferFiresBelowTrigger(t *testing.T) {
	cfg := DefaultPolicyConfig()
	guard, ok := cfg.Guard(types.ProductBESS)
	require.True(t, ok)

	// $95/kWh is under the $110 trigger.
	item := bessLine("B1", "1000", "95000")
	basis := resolveCostBasis(&item, guard)

	assert.True(t, basis.BufferApplied)
	assert.True(t, basis.BufferPct.Equal(d("0.12")))
	assert.True(t, basis.MarketCost.Equal(d("95000")))
	assert.True(t, basis.ObtainableCost.Equal(d("106400")), "got %s", basis.ObtainableCost)
}

func TestProcurementBufferSkippedAtTrigger(t *testing.T) {
	cfg := DefaultPolicyConfig()
	guard, ok := cfg.Guard(types.ProductBESS)
	require.True(t, ok)

	// Exactly at the trigger: no buffer.
	item := bessLine("B1", "1000", "110000")
	basis := resolveCostBasis(&item, guard)

	assert.False(t, basis.BufferApplied)
	assert.True(t, basis.ObtainableCost.Equal(basis.MarketCost))
}

func TestNoGuardMeansNoBuffer(t *testing.T) {
	item := line("X-1", "unknown_widget", types.UnitEach, "3", "4500")
	basis := resolveCostBasis(&item, nil)

	assert.False(t, basis.BufferApplied)
	assert.True(t, basis.ObtainableCost.Equal(d("4500")))
	assert.True(t, basis.MarketUnitPrice.Equal(d("1500")))
}

// TestMarginOnObtainableNotMarket pins the load-bearing invariant: the
// margin basis is the buffered cost, so buffer and margin compose once.
func TestMarginOnObtainableNotMarket(t *testing.T) {
	engine := newTestEngine(t)

	input := &types.MarginPolicyInput{
		LineItems:     []types.LineItem{bessLine("B1", "1000", "95000")},
		TotalBaseCost: d("95000"),
	}
	result, err := engine.ApplyMarginPolicy(input)
	require.NoError(t, err)

	li := result.LineItems[0]
	// obtainable 106,400 * 1.35 = 143,640; margin on market cost would give
	// 128,250 plus a separately stacked buffer.
	assert.True(t, li.SellPrice.Equal(d("143640")), "got %s", li.SellPrice)
	assert.True(t, li.MarginDollars.Equal(li.SellPrice.Sub(li.ObtainableCost)))
	assert.True(t, result.ProcurementBufferTotal.Equal(d("11400")))
}
