package metrics

import (
	"time"
)

// RecordHTTPRequest records an HTTP request with its metadata.
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordExtractionHit records one successfully extracted metric value.
func RecordExtractionHit(metric string) {
	ExtractionHitsTotal.WithLabelValues(metric).Inc()
}

// RecordExtractionMiss records a configured metric that produced no value for
// a line. Reason should be MissNoMatch or MissParseError.
func RecordExtractionMiss(metric, reason string) {
	ExtractionMissesTotal.WithLabelValues(metric, reason).Inc()
}

// RecordDispatch records the outcome and duration of one Zabbix submission.
// Outcome should be OutcomeOK, OutcomePartial, or OutcomeDispatchError.
func RecordDispatch(metric, outcome string, duration time.Duration) {
	DispatchesTotal.WithLabelValues(metric, outcome).Inc()
	DispatchDuration.Observe(duration.Seconds())
}

// RecordTrapperRun records the result of one CDR polling run.
func RecordTrapperRun(success bool, records int) {
	result := "success"
	if !success {
		result = "failure"
	}
	TrapperRunsTotal.WithLabelValues(result).Inc()
	if records > 0 {
		TrapperRecordsTotal.Add(float64(records))
	}
}
