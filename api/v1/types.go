// Package v1 - Versioned API request/response types
package v1

import (
	"merlin-pricing/core/policy"
	"merlin-pricing/core/types"
)

// PriceRequest is the body of POST /api/v1/price
type PriceRequest struct {
	// Input is the margin policy input contract
	Input types.MarginPolicyInput `json:"input"`

	// QuoteRef is an optional caller-side reference echoed back
	QuoteRef string `json:"quote_ref,omitempty"`
}

// PriceResponse is the body of a successful pricing call
type PriceResponse struct {
	// QuoteRef echoes the caller-side reference
	QuoteRef string `json:"quote_ref,omitempty"`

	// Result is the complete pricing result
	Result *types.MarginPolicyResult `json:"result"`

	// DurationMs is the server-side processing time
	DurationMs int64 `json:"duration_ms"`
}

// ErrorResponse is the body of a failed call
type ErrorResponse struct {
	// Code is a machine-readable error code
	Code string `json:"code"`

	// Message is a human-readable explanation
	Message string `json:"message"`
}

// BandsResponse is the body of GET /api/v1/bands
type BandsResponse struct {
	// PolicyVersion is the active policy table version
	PolicyVersion string `json:"policy_version"`

	// Bands is the active margin band table
	Bands policy.BandTable `json:"bands"`
}
