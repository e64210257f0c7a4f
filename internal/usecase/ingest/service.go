// Package ingest orchestrates the pipeline run for one received log message:
// best-effort append to the tenant log file, metric extraction, and
// independent best-effort dispatch of every extracted sample to Zabbix.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"logbridge/internal/domain/entity"
	"logbridge/internal/observability/metrics"
	"logbridge/internal/sink"
)

// Appender persists one raw message to the tenant log file.
type Appender interface {
	Append(message string) error
}

// Extractor produces metric samples from a raw message.
type Extractor interface {
	Extract(message string) []entity.MetricSample
}

// Service runs the ingestion pipeline. It holds no per-request state, so one
// instance serves all concurrent requests.
type Service struct {
	Appender  Appender
	Extractor Extractor
	Sink      sink.Sink

	// Target is the Zabbix host name data points are submitted under.
	Target string

	Logger *slog.Logger
}

// Result summarizes one pipeline run. Dispatched counts data points the
// backend acknowledged; Failed counts extracted samples whose submission
// failed either partially or at dispatch. Zero dispatched with zero failed is
// a normal outcome for messages without metrics.
type Result struct {
	Dispatched int
	Failed     int
}

// Ingest processes one validated, non-empty message. Log append failures and
// per-sample sink failures are recorded as diagnostics and never abort the
// run; each sample is dispatched on its own merit, sequentially in definition
// order.
func (s Service) Ingest(ctx context.Context, message string) Result {
	logger := s.logger()
	metrics.LinesIngestedTotal.Inc()

	if err := s.Appender.Append(message); err != nil {
		metrics.AppendFailuresTotal.Inc()
		logger.Warn("failed to append to remote log file",
			slog.Any("error", err))
	}

	samples := s.Extractor.Extract(message)

	var res Result
	for _, sample := range samples {
		start := time.Now()
		err := s.Sink.Submit(ctx, s.Target, sample.Key, sample.Value)
		duration := time.Since(start)

		var partial *sink.PartialError
		switch {
		case err == nil:
			metrics.RecordDispatch(sample.Key, metrics.OutcomeOK, duration)
			logger.Info("data point sent to zabbix",
				slog.String("key", sample.Key),
				slog.Float64("value", sample.Value),
				slog.String("target", s.Target))
			res.Dispatched++
		case errors.As(err, &partial):
			metrics.RecordDispatch(sample.Key, metrics.OutcomePartial, duration)
			logger.Warn("zabbix did not accept data point",
				slog.String("key", sample.Key),
				slog.Float64("value", sample.Value),
				slog.Any("error", err))
			res.Failed++
		default:
			metrics.RecordDispatch(sample.Key, metrics.OutcomeDispatchError, duration)
			logger.Error("failed to dispatch data point",
				slog.String("key", sample.Key),
				slog.Float64("value", sample.Value),
				slog.Any("error", err))
			res.Failed++
		}
	}
	return res
}

func (s Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
