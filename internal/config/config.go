// Package config assembles the immutable process configuration for the
// ingestion server. Everything is read from environment variables exactly once
// at startup; the resulting struct is passed explicitly into each component.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"logbridge/pkg/config"
)

// Sink transport selection values for SinkTransport.
const (
	// TransportSender shells out to the zabbix_sender binary per data point.
	TransportSender = "sender"
	// TransportTrapper speaks the Zabbix trapper protocol directly over TCP.
	TransportTrapper = "trapper"
)

// Config holds the fixed, process-lifetime configuration of the ingestion
// server. The tenant identifier, monitoring target, and log file path never
// change while the process runs.
type Config struct {
	// ClientID identifies the tenant this process instance serves.
	ClientID string

	// ZabbixHost is the host name registered in Zabbix for this tenant.
	// It must match the "Host name" of the host object carrying the
	// trapper items.
	ZabbixHost string

	// ZabbixServer is the address of the Zabbix server (or proxy) that
	// receives trapper values.
	ZabbixServer string

	// ZabbixPort is the trapper port on the Zabbix server, 10051 by default.
	ZabbixPort int

	// Port is the HTTP listen port of the ingestion API.
	Port int

	// LogDir is the directory holding the per-tenant remote log file.
	LogDir string

	// SinkTransport selects how data points reach Zabbix: TransportSender
	// or TransportTrapper.
	SinkTransport string

	// SenderPath is the zabbix_sender binary invoked by the sender transport.
	SenderPath string

	// SinkTimeout bounds one submission, whichever transport is in use.
	SinkTimeout time.Duration

	// BreakerEnabled wraps the sink in a circuit breaker when true.
	BreakerEnabled bool

	// MetricConfigFile optionally replaces the compiled-in metric
	// definitions with definitions loaded from a YAML file.
	MetricConfigFile string

	// Version is the reported application version.
	Version string
}

// Load reads the server configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		ClientID:         config.GetEnvString("CLIENT_ID", "default_client"),
		ZabbixHost:       config.GetEnvString("ZABBIX_HOST_NAME", "Client-1-Log-API"),
		ZabbixServer:     config.GetEnvString("ZABBIX_SERVER_IP", "zabbix-server"),
		ZabbixPort:       config.GetEnvInt("ZABBIX_SERVER_PORT", 10051),
		Port:             config.GetEnvInt("PORT", 8080),
		LogDir:           config.GetEnvString("LOG_DIR", "/var/log/app"),
		SinkTransport:    config.GetEnvString("SINK_TRANSPORT", TransportSender),
		SenderPath:       config.GetEnvString("ZABBIX_SENDER_PATH", "zabbix_sender"),
		SinkTimeout:      config.GetEnvDuration("SINK_TIMEOUT", 5*time.Second),
		BreakerEnabled:   config.GetEnvBool("SINK_BREAKER_ENABLED", true),
		MetricConfigFile: config.GetEnvString("METRIC_CONFIG_FILE", ""),
		Version:          config.GetEnvString("VERSION", "dev"),
	}

	if cfg.SinkTransport != TransportSender && cfg.SinkTransport != TransportTrapper {
		return Config{}, fmt.Errorf("invalid SINK_TRANSPORT %q: must be %q or %q",
			cfg.SinkTransport, TransportSender, TransportTrapper)
	}
	if cfg.ZabbixPort <= 0 || cfg.ZabbixPort > 65535 {
		return Config{}, fmt.Errorf("invalid ZABBIX_SERVER_PORT %d", cfg.ZabbixPort)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	return cfg, nil
}

// LogFilePath returns the tenant's remote log file path under LogDir.
func (c Config) LogFilePath() string {
	return filepath.Join(c.LogDir, c.ClientID+"_remote_logs.log")
}
