// Package policy - Review event emitter tests
package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merlin-pricing/core/types"
)

func TestReviewWarningBelowThreshold(t *testing.T) {
	engine := newTestEngine(t)

	// $85/kWh is below the $95 review threshold but above the 80%
	// alert cut at $76.
	input := &types.MarginPolicyInput{
		LineItems:     []types.LineItem{bessLine("B1", "1000", "85000")},
		TotalBaseCost: d("85000"),
	}
	result, err := engine.ApplyMarginPolicy(input)
	require.NoError(t, err)

	require.Len(t, result.ReviewEvents, 1)
	assert.Equal(t, types.ReviewWarning, result.ReviewEvents[0].Severity)
	assert.Equal(t, "B1", result.ReviewEvents[0].SKU)
	assert.True(t, result.NeedsHumanReview)
}

func TestReviewAlertFarBelowThreshold(t *testing.T) {
	engine := newTestEngine(t)

	// $70/kWh is under 80% of the $95 threshold.
	input := &types.MarginPolicyInput{
		LineItems:     []types.LineItem{bessLine("B1", "1000", "70000")},
		TotalBaseCost: d("70000"),
	}
	result, err := engine.ApplyMarginPolicy(input)
	require.NoError(t, err)

	require.Len(t, result.ReviewEvents, 1)
	assert.Equal(t, types.ReviewAlert, result.ReviewEvents[0].Severity)
}

// TestReviewIndependentOfClamping: the clamp fixes the customer-facing
// price, the review flag still fires on the suspicious input.
func TestReviewIndependentOfClamping(t *testing.T) {
	engine := newTestEngine(t)

	input := &types.MarginPolicyInput{
		LineItems:          []types.LineItem{bessLine("B1", "1000", "85000")},
		TotalBaseCost:      d("85000"),
		ForceMarginPercent: dp("0.02"),
	}
	result, err := engine.ApplyMarginPolicy(input)
	require.NoError(t, err)

	// The floor clamp "fixed" the price...
	assert.True(t, result.LineItems[0].WasClampedFloor)
	// ...and the review flag still fired on the underlying data.
	require.Len(t, result.ReviewEvents, 1)
	assert.True(t, result.NeedsHumanReview)
}

func TestNoReviewAboveThreshold(t *testing.T) {
	engine := newTestEngine(t)

	input := &types.MarginPolicyInput{
		LineItems:     []types.LineItem{bessLine("B1", "1000", "130000")},
		TotalBaseCost: d("130000"),
	}
	result, err := engine.ApplyMarginPolicy(input)
	require.NoError(t, err)

	assert.Empty(t, result.ReviewEvents)
	assert.False(t, result.NeedsHumanReview)
}
