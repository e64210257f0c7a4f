package sink

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// zabbix_sender prints a summary line on success, e.g.
// "info from server: processed: 1; failed: 0; total: 1; seconds spent: 0.000042".
// Both markers must be present for the data point to count as accepted.
const (
	markerProcessed = "processed: 1"
	markerNoFailed  = "failed: 0"
)

// SenderClient submits data points by invoking the zabbix_sender binary,
// one process per data point.
type SenderClient struct {
	// Path is the zabbix_sender binary, looked up on PATH when not absolute.
	Path string
	// Server is the Zabbix server or proxy address.
	Server string
	// Port is the trapper port, normally 10051.
	Port int
	// Timeout bounds one invocation. Zero means no timeout beyond ctx.
	Timeout time.Duration
	// Logger receives per-submission diagnostics. Defaults to slog.Default.
	Logger *slog.Logger
}

// Submit runs zabbix_sender with the point-submission arguments and
// interprets its output. See the Sink interface for the error contract.
func (c *SenderClient) Submit(ctx context.Context, target, key string, value float64) error {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	args := []string{
		"-z", c.Server,
		"-p", strconv.Itoa(c.Port),
		"-s", target,
		"-k", key,
		"-o", formatValue(value),
	}
	cmd := exec.CommandContext(ctx, c.Path, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			err = fmt.Errorf("%w: %s", err, detail)
		}
		return &DispatchError{Key: key, Err: err}
	}

	out := stdout.String()
	if strings.Contains(out, markerProcessed) && strings.Contains(out, markerNoFailed) {
		c.logger().Debug("data point accepted",
			slog.String("key", key),
			slog.Float64("value", value))
		return nil
	}

	// zabbix_sender exited zero but the server did not take the value,
	// e.g. an item key with no matching trapper item.
	return &PartialError{Key: key, Output: strings.TrimSpace(out)}
}

func (c *SenderClient) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
