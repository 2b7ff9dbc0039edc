// Package v1 - API handler tests
package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merlin-pricing/core/policy"
)

type recordingAudit struct {
	entries []AuditEntry
}

func (a *recordingAudit) Log(entry AuditEntry) {
	a.entries = append(a.entries, entry)
}

func newTestServer(t *testing.T) (*httptest.Server, *recordingAudit) {
	t.Helper()
	store, err := policy.NewPolicyStore(policy.DefaultPolicyConfig())
	require.NoError(t, err)
	audit := &recordingAudit{}
	mux := http.NewServeMux()
	NewHandler(store, audit).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, audit
}

func TestPriceEndpoint(t *testing.T) {
	srv, audit := newTestServer(t)

	body := `{
		"quote_ref": "Q-2026-0042",
		"input": {
			"line_items": [{
				"sku": "BESS-CNTR-500",
				"category": "bess",
				"base_cost": "135000",
				"quantity": "1000",
				"unit_cost": "135",
				"unit": "kWh"
			}],
			"total_base_cost": "135000"
		}
	}`
	resp, err := http.Post(srv.URL+"/api/v1/price", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var priced PriceResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&priced))
	assert.Equal(t, "Q-2026-0042", priced.QuoteRef)
	require.NotNil(t, priced.Result)
	assert.NotEmpty(t, priced.Result.RequestID)
	// 135,000 in the micro band at 35% target.
	assert.Equal(t, "182250", priced.Result.SellPriceTotal.String())

	require.Len(t, audit.entries, 1)
	assert.Equal(t, priced.Result.RequestID, audit.entries[0].RequestID)
	assert.Empty(t, audit.entries[0].Error)
}

func TestPriceEndpointRejectsBadInput(t *testing.T) {
	srv, audit := newTestServer(t)

	// Empty line items is a caller error, not a server fault.
	resp, err := http.Post(srv.URL+"/api/v1/price", "application/json",
		strings.NewReader(`{"input": {"line_items": []}}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var apiErr ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&apiErr))
	assert.Equal(t, "INPUT_ERROR", apiErr.Code)

	require.Len(t, audit.entries, 1)
	assert.NotEmpty(t, audit.entries[0].Error)
}

func TestPriceEndpointRejectsMalformedJSON(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/price", "application/json",
		strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var apiErr ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&apiErr))
	assert.Equal(t, "INVALID_JSON", apiErr.Code)
}

func TestBandsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/bands")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var bands BandsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&bands))
	assert.Equal(t, policy.DefaultPolicyVersion, bands.PolicyVersion)
	assert.Len(t, bands.Bands, 8)
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, policy.DefaultPolicyVersion, health["policy_version"])
}
