// Package sink submits extracted metric data points to the Zabbix monitoring
// backend. Two transports implement the same narrow interface: one shells out
// to the zabbix_sender binary, the other speaks the trapper protocol directly
// over TCP. The pipeline never depends on which transport is in use.
package sink

import (
	"context"
	"fmt"
	"strconv"
)

// Sink submits one data point to the monitoring backend. Implementations make
// exactly one external call per invocation and never queue, batch, or retry.
type Sink interface {
	// Submit sends (target host, item key, value) as one data point. A nil
	// return means the backend acknowledged the value. Failures are
	// reported as *PartialError or *DispatchError; the caller decides how
	// to isolate them.
	Submit(ctx context.Context, target, key string, value float64) error
}

// PartialError reports that the submission mechanism ran but the backend did
// not accept the value, e.g. an unknown item key or a disabled host. The
// transport itself is healthy.
type PartialError struct {
	Key    string
	Output string
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("zabbix rejected item %s: %s", e.Key, e.Output)
}

// DispatchError reports that the submission mechanism could not be invoked or
// failed at the process/transport level: missing binary, non-zero exit,
// connection refused, malformed protocol response.
type DispatchError struct {
	Key string
	Err error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch failed for item %s: %v", e.Key, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// formatValue renders a metric value the way Zabbix expects it: a plain
// decimal string without exponent notation.
func formatValue(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
