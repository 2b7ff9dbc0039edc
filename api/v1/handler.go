// Package v1 - Versioned API handler
// Routes: POST /api/v1/price, GET /api/v1/bands, GET /api/v1/health
package v1

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"merlin-pricing/core/policy"
	"merlin-pricing/internal/errors"
	"merlin-pricing/internal/logging"
)

// Handler handles v1 API requests. It is stateless; every request prices
// against the store's current policy snapshot.
type Handler struct {
	store *policy.PolicyStore
	audit AuditLogger
}

// NewHandler creates a v1 handler over a policy store
func NewHandler(store *policy.PolicyStore, audit AuditLogger) *Handler {
	if audit == nil {
		audit = &ZapAuditLogger{}
	}
	return &Handler{store: store, audit: audit}
}

// RegisterRoutes registers v1 routes on the mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/price", h.handlePrice)
	mux.HandleFunc("GET /api/v1/bands", h.handleBands)
	mux.HandleFunc("GET /api/v1/health", h.handleHealth)
}

// handlePrice handles POST /api/v1/price
func (h *Handler) handlePrice(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req PriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	engine, err := policy.NewEngine(h.store.Current())
	if err != nil {
		h.writeError(w, string(errors.TypeConfig), err.Error(), http.StatusInternalServerError)
		return
	}

	result, err := engine.ApplyMarginPolicy(&req.Input)
	if err != nil {
		status := http.StatusInternalServerError
		code := string(errors.TypeInternal)
		if errors.IsType(err, errors.TypeInput) {
			status = http.StatusBadRequest
			code = string(errors.TypeInput)
		}
		h.audit.Log(newAuditEntry(r, &req, "", time.Since(start), err))
		h.writeError(w, code, err.Error(), status)
		return
	}

	h.audit.Log(newAuditEntry(r, &req, result.RequestID, time.Since(start), nil))
	h.writeJSON(w, PriceResponse{
		QuoteRef:   req.QuoteRef,
		Result:     result,
		DurationMs: time.Since(start).Milliseconds(),
	}, http.StatusOK)
}

// handleBands handles GET /api/v1/bands
func (h *Handler) handleBands(w http.ResponseWriter, r *http.Request) {
	cfg := h.store.Current()
	h.writeJSON(w, BandsResponse{
		PolicyVersion: cfg.Version,
		Bands:         cfg.Bands,
	}, http.StatusOK)
}

// handleHealth handles GET /api/v1/health
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	cfg := h.store.Current()
	h.writeJSON(w, map[string]interface{}{
		"status":         "healthy",
		"api_version":    "v1",
		"policy_version": cfg.Version,
		"pricing_source": cfg.PricingSourceVersion,
		"time":           time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

func (h *Handler) writeJSON(w http.ResponseWriter, body interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("writing response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, code, message string, status int) {
	h.writeJSON(w, ErrorResponse{Code: code, Message: message}, status)
}
