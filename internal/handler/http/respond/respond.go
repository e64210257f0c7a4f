// Package respond provides utilities for sending HTTP responses in JSON
// format. Every API response carries the same envelope: a status field
// ("success" or "error") and a human-readable message.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Status values used in the response envelope.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the JSON body shape shared by all API responses.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Headers are already sent, so the error can only be logged.
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Success writes a 200 response with a success envelope.
func Success(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, Envelope{Status: StatusSuccess, Message: message})
}

// Error writes an error envelope with the given status code.
func Error(w http.ResponseWriter, code int, message string) {
	JSON(w, code, Envelope{Status: StatusError, Message: message})
}
