// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Extraction miss reasons. The two cases behave identically toward the caller
// but are counted separately so operators can tell a silent log format change
// (no_match) from a pattern capturing garbage (parse_error).
const (
	MissNoMatch    = "no_match"
	MissParseError = "parse_error"
)

// Dispatch outcomes.
const (
	OutcomeOK            = "ok"
	OutcomePartial       = "partial_failure"
	OutcomeDispatchError = "dispatch_error"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestsInFlight tracks requests currently being served
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)
)

// Pipeline metrics track the ingestion-extraction-forwarding pipeline
var (
	// LinesIngestedTotal counts log lines accepted by the ingestion endpoint
	LinesIngestedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logbridge_lines_ingested_total",
			Help: "Total number of log lines accepted for processing",
		},
	)

	// ExtractionHitsTotal counts successful metric extractions per item key
	ExtractionHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logbridge_extraction_hits_total",
			Help: "Total number of metric values extracted from log lines",
		},
		[]string{"metric"},
	)

	// ExtractionMissesTotal counts lines where a configured metric produced
	// no value, by reason (no_match, parse_error)
	ExtractionMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logbridge_extraction_misses_total",
			Help: "Total number of extraction misses per metric and reason",
		},
		[]string{"metric", "reason"},
	)

	// AppendFailuresTotal counts failed writes to the tenant log file
	AppendFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logbridge_log_append_failures_total",
			Help: "Total number of failed appends to the tenant log file",
		},
	)

	// DispatchesTotal counts Zabbix submissions by item key and outcome
	DispatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logbridge_dispatches_total",
			Help: "Total number of data point submissions by outcome",
		},
		[]string{"metric", "outcome"},
	)

	// DispatchDuration measures the duration of one Zabbix submission
	DispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "logbridge_dispatch_duration_seconds",
			Help:    "Time taken to submit one data point to Zabbix",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		},
	)
)

// Trapper metrics track the CDR polling side
var (
	// TrapperRunsTotal counts CDR polling runs by result
	TrapperRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logbridge_trapper_runs_total",
			Help: "Total number of CDR polling runs",
		},
		[]string{"result"}, // result: success, failure
	)

	// TrapperRecordsTotal counts CDR records parsed from the log
	TrapperRecordsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logbridge_trapper_records_total",
			Help: "Total number of CDR records parsed",
		},
	)
)
