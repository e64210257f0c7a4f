// Package http provides the HTTP handlers and middleware of the ingestion
// API: the log ingestion endpoint, the status and health endpoints, the
// Prometheus metrics endpoint, and the shared middleware chain.
package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"logbridge/internal/handler/http/respond"
	"logbridge/internal/usecase/ingest"
)

// missingMessageError is the exact 400 body text for a missing or malformed
// payload. Probe scripts match on it, so it is part of the API contract.
const missingMessageError = "Missing 'message' field"

// LogHandler accepts structured log lines and runs them through the ingestion
// pipeline.
type LogHandler struct {
	Svc ingest.Service
	// Host is the Zabbix host name, echoed in the response summary.
	Host string
}

// ServeHTTP handles POST /log. The body must be a JSON object with a
// non-empty "message" field; anything else is rejected with 400 before any
// pipeline step runs. A valid message always yields 200 with the count of
// dispatched metrics, even when that count is zero or lower than the number
// of extracted samples.
func (h LogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		respond.Error(w, http.StatusBadRequest, missingMessageError)
		return
	}

	res := h.Svc.Ingest(r.Context(), req.Message)

	summary := fmt.Sprintf("Log received for host %s. %d metrics processed.", h.Host, res.Dispatched)
	if res.Failed > 0 {
		summary = fmt.Sprintf("Log received for host %s. %d metrics processed. Failed: %d.",
			h.Host, res.Dispatched, res.Failed)
	}
	respond.Success(w, summary)
}
