package http

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"logbridge/internal/handler/http/respond"
)

// HealthResponse represents the JSON response for the health check endpoint.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// BreakerState reports whether the sink circuit breaker is currently open.
// Implemented by sink.BreakerSink; nil when the breaker is disabled.
type BreakerState interface {
	IsOpen() bool
}

// HealthHandler performs readiness checks: the tenant log directory must
// exist and the sink circuit breaker, if any, should be closed. An open
// breaker degrades the report but keeps the process alive, matching the
// pipeline's best-effort semantics.
type HealthHandler struct {
	// LogPath is the tenant log file path whose directory is checked.
	LogPath string
	Breaker BreakerState
	Version string
}

// ServeHTTP returns 200 when all checks pass, 503 otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]CheckStatus)
	allHealthy := true

	checks["log_directory"] = h.checkLogDirectory()
	if checks["log_directory"].Status == "unhealthy" {
		allHealthy = false
	}

	if h.Breaker != nil {
		if h.Breaker.IsOpen() {
			checks["sink"] = CheckStatus{
				Status:  "unhealthy",
				Message: "circuit breaker open, submissions are being rejected",
			}
			allHealthy = false
		} else {
			checks["sink"] = CheckStatus{Status: "healthy"}
		}
	}

	status := "healthy"
	code := http.StatusOK
	if !allHealthy {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

func (h *HealthHandler) checkLogDirectory() CheckStatus {
	dir := filepath.Dir(h.LogPath)
	info, err := os.Stat(dir)
	if err != nil {
		return CheckStatus{Status: "unhealthy", Message: "log directory not accessible: " + err.Error()}
	}
	if !info.IsDir() {
		return CheckStatus{Status: "unhealthy", Message: dir + " is not a directory"}
	}
	return CheckStatus{Status: "healthy"}
}

// LiveHandler is the liveness probe: it always answers 200 while the process
// can serve HTTP at all.
type LiveHandler struct{}

func (h LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "alive"})
}
