package trapper

import (
	"fmt"
	"time"

	"logbridge/pkg/config"
)

// Config holds the CDR poller settings, loaded from environment variables.
type Config struct {
	// CDRFilePath is the call detail record log appended to by the PBX.
	CDRFilePath string
	// CheckpointFile persists the byte offset of the last consumed line.
	CheckpointFile string
	// APIBaseURL is the ingest API base, e.g. http://127.0.0.1:20051.
	APIBaseURL string
	// Schedule is a cron expression or @every duration for polling runs.
	Schedule string
	// RequestTimeout bounds each report POST to the ingest API.
	RequestTimeout time.Duration
	// MetricsPort serves the Prometheus sidecar endpoint.
	MetricsPort int
}

// LoadConfig reads the poller configuration from the environment,
// falling back to defaults for anything unset.
func LoadConfig() (Config, error) {
	cfg := Config{
		CDRFilePath:    config.GetEnvString("CDR_FILE_PATH", "/var/lib/3cxpbx/Instance1/Data/Logs/CDRLogs/cdr.log"),
		CheckpointFile: config.GetEnvString("CHECKPOINT_FILE", "/var/log/app/cdr_checkpoint.txt"),
		APIBaseURL:     config.GetEnvString("LOG_API_HOST", "http://127.0.0.1:20051"),
		Schedule:       config.GetEnvString("TRAPPER_SCHEDULE", "@every 1m"),
		RequestTimeout: config.GetEnvDuration("TRAPPER_REQUEST_TIMEOUT", 10*time.Second),
		MetricsPort:    config.GetEnvInt("METRICS_PORT", 9090),
	}
	if cfg.CDRFilePath == "" {
		return Config{}, fmt.Errorf("CDR_FILE_PATH must not be empty")
	}
	if cfg.CheckpointFile == "" {
		return Config{}, fmt.Errorf("CHECKPOINT_FILE must not be empty")
	}
	if cfg.MetricsPort < 1 || cfg.MetricsPort > 65535 {
		return Config{}, fmt.Errorf("METRICS_PORT out of range: %d", cfg.MetricsPort)
	}
	return cfg, nil
}
