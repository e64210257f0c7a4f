// Package extractor turns raw log messages into metric samples by matching a
// fixed, ordered set of metric definitions against each message.
package extractor

import (
	"log/slog"
	"strconv"

	"logbridge/internal/domain/entity"
	"logbridge/internal/observability/metrics"
)

// Extractor holds the compiled metric definitions for the lifetime of the
// process. It is safe for concurrent use: the definition list is never
// mutated after construction.
type Extractor struct {
	defs   []entity.MetricDefinition
	logger *slog.Logger
}

// New creates an Extractor over the given definitions. The iteration order of
// defs is preserved, which fixes the order of extracted samples and of the
// subsequent dispatches.
func New(defs []entity.MetricDefinition, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{defs: defs, logger: logger}
}

// Definitions returns the configured definitions in extraction order.
func (e *Extractor) Definitions() []entity.MetricDefinition {
	return e.defs
}

// Extract scans message with every configured definition and returns the
// samples that matched and parsed, in definition order. A definition that
// does not match, or that captures text which is not a valid float, yields
// nothing for its key: both cases are recorded as diagnostics and never fail
// the extraction. The returned slice may be empty, never nil.
func (e *Extractor) Extract(message string) []entity.MetricSample {
	samples := make([]entity.MetricSample, 0, len(e.defs))
	for _, def := range e.defs {
		m := def.Pattern.FindStringSubmatch(message)
		if m == nil {
			metrics.RecordExtractionMiss(def.Key, metrics.MissNoMatch)
			e.logger.Debug("metric not found in message",
				slog.String("metric", def.Key))
			continue
		}
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			metrics.RecordExtractionMiss(def.Key, metrics.MissParseError)
			e.logger.Debug("captured value is not numeric",
				slog.String("metric", def.Key),
				slog.String("captured", m[1]))
			continue
		}
		metrics.RecordExtractionHit(def.Key)
		samples = append(samples, entity.MetricSample{Key: def.Key, Value: value})
	}
	return samples
}
