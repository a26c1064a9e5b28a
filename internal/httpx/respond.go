// Package httpx writes the wire envelopes shared by every endpoint.
// It is the only place that serializes failures to clients: handlers and
// middleware hand any error to Responder.Error, which classifies it once and
// renders the stable {"success":false,"error":...} shape.
package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"barberbook/internal/apperr"
)

// envelope is the JSON body of every error response. Detail carries the raw
// failure chain and is populated only in development mode; production clients
// never see internals.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Responder renders success and error envelopes. Construct one at startup and
// inject it everywhere; dev mode is fixed for the process lifetime.
type Responder struct {
	dev bool
	log *slog.Logger
}

// NewResponder constructs a Responder. dev enables the diagnostic detail
// field on error responses.
func NewResponder(dev bool, log *slog.Logger) *Responder {
	return &Responder{dev: dev, log: log}
}

// OK writes a success envelope with the given status and payload.
func (rs *Responder) OK(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// NoContent writes an empty 204 response.
func (rs *Responder) NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error classifies err and writes the matching error envelope. Every failure
// in the request lifecycle funnels through here exactly once, so the client
// vocabulary stays consistent no matter where the failure originated.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	rec := apperr.Classify(err)

	if rec.Status >= http.StatusInternalServerError {
		rs.log.ErrorContext(r.Context(), "request failed",
			"kind", string(rec.Kind),
			"status", rec.Status,
			"error", err,
		)
	} else {
		rs.log.DebugContext(r.Context(), "request rejected",
			"kind", string(rec.Kind),
			"status", rec.Status,
			"error", err,
		)
	}

	body := envelope{Error: rec.Message}
	if rs.dev {
		body.Detail = err.Error()
	}
	writeJSON(w, rec.Status, body)
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
