// Package v1 - Request audit logging
// Every pricing call is logged with enough context to replay it.
package v1

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"merlin-pricing/internal/logging"
)

// AuditEntry records one pricing request for the audit trail
type AuditEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
	QuoteRef   string    `json:"quote_ref,omitempty"`
	ClientIP   string    `json:"client_ip,omitempty"`
	LineItems  int       `json:"line_items"`
	DurationMs int64     `json:"duration_ms"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
}

// AuditLogger records pricing requests
type AuditLogger interface {
	Log(entry AuditEntry)
}

// ZapAuditLogger writes audit entries through the structured logger
type ZapAuditLogger struct{}

// Log logs an audit entry
func (l *ZapAuditLogger) Log(entry AuditEntry) {
	fields := []zap.Field{
		zap.String("request_id", entry.RequestID),
		zap.String("quote_ref", entry.QuoteRef),
		zap.String("client_ip", entry.ClientIP),
		zap.Int("line_items", entry.LineItems),
		zap.Int64("duration_ms", entry.DurationMs),
		zap.Bool("success", entry.Success),
	}
	if entry.Error != "" {
		fields = append(fields, zap.String("error", entry.Error))
		logging.Warn("pricing request failed", fields...)
		return
	}
	logging.Info("pricing request", fields...)
}

func newAuditEntry(r *http.Request, req *PriceRequest, requestID string, d time.Duration, err error) AuditEntry {
	entry := AuditEntry{
		Timestamp:  time.Now().UTC(),
		RequestID:  requestID,
		QuoteRef:   req.QuoteRef,
		ClientIP:   r.RemoteAddr,
		LineItems:  len(req.Input.LineItems),
		DurationMs: d.Milliseconds(),
		Success:    err == nil,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	return entry
}
