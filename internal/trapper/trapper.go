// Package trapper polls a 3CX call detail record (CDR) log for quality
// scores the PBX measured on completed calls. Each run reads the lines
// appended since the previous run, averages the MOS column, and reports
// the average to the ingest API as a log line. A checkpoint file holds
// the byte offset of the last consumed line so records are processed
// exactly once across runs and restarts.
package trapper

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"logbridge/internal/observability/metrics"
)

// cdrPattern matches the trailing quality fields of a 3CX CDR line:
// average jitter, average packet loss, MOS, and the call ID.
var cdrPattern = regexp.MustCompile(`,([\d.]+),([\d.]+),([\d.]+),([\w-]+),$`)

// Stats summarizes one polling run.
type Stats struct {
	// Records is the number of new CDR lines carrying a positive MOS.
	Records int
	// AverageMOS is the mean of those scores; zero when Records is zero.
	AverageMOS float64
	// Reported is true when the average was delivered to the ingest API.
	Reported bool
}

// Trapper reads new CDR records and reports their average MOS.
type Trapper struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// New builds a Trapper. A nil logger falls back to slog.Default().
func New(cfg Config, logger *slog.Logger) *Trapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Trapper{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.RequestTimeout},
		logger: logger,
	}
}

// Run executes one polling cycle: read new complete lines from the CDR
// file, advance the checkpoint past them, and report the average MOS.
// The checkpoint is not advanced when reading fails, so the same records
// are retried on the next run.
func (t *Trapper) Run(ctx context.Context) (Stats, error) {
	stats, err := t.collect()
	if err != nil {
		metrics.RecordTrapperRun(false, 0)
		return Stats{}, err
	}
	metrics.RecordTrapperRun(true, stats.Records)

	if stats.Records == 0 {
		t.logger.Info("no new cdr records")
		return stats, nil
	}

	t.logger.Info("cdr records collected",
		slog.Int("records", stats.Records),
		slog.Float64("average_mos", stats.AverageMOS))

	if err := t.report(ctx, stats.AverageMOS); err != nil {
		t.logger.Error("failed to report average mos", slog.Any("error", err))
		return stats, err
	}
	stats.Reported = true
	return stats, nil
}

// collect reads new complete lines since the checkpoint and averages the
// MOS column. A trailing partial line (no newline yet) is left for the
// next run. A checkpoint beyond the current file size means the file was
// rotated or truncated, so reading restarts from the beginning.
func (t *Trapper) collect() (Stats, error) {
	offset := t.lastPosition()

	f, err := os.Open(t.cfg.CDRFilePath)
	if err != nil {
		return Stats{}, fmt.Errorf("open cdr file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Stats{}, fmt.Errorf("stat cdr file: %w", err)
	}
	if offset > info.Size() {
		t.logger.Warn("checkpoint beyond file size, restarting from start",
			slog.Int64("checkpoint", offset),
			slog.Int64("size", info.Size()))
		offset = 0
	}

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return Stats{}, fmt.Errorf("seek cdr file: %w", err)
	}

	reader := bufio.NewReader(f)
	var (
		sum   float64
		count int
	)
	for {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return Stats{}, fmt.Errorf("read cdr file: %w", err)
		}
		if !strings.HasSuffix(line, "\n") {
			// Incomplete trailing line; pick it up next run.
			break
		}
		offset += int64(len(line))
		if mos, ok := parseMOS(line); ok {
			sum += mos
			count++
		}
		if errors.Is(err, io.EOF) {
			break
		}
	}

	if err := t.saveCheckpoint(offset); err != nil {
		return Stats{}, err
	}

	stats := Stats{Records: count}
	if count > 0 {
		stats.AverageMOS = sum / float64(count)
	}
	return stats, nil
}

// parseMOS extracts the MOS field from one CDR line. Zero scores are
// skipped: 3CX writes 0 for calls without RTP quality data.
func parseMOS(line string) (float64, bool) {
	m := cdrPattern.FindStringSubmatch(strings.TrimRight(line, "\r\n"))
	if m == nil {
		return 0, false
	}
	mos, err := strconv.ParseFloat(m[3], 64)
	if err != nil || mos <= 0 {
		return 0, false
	}
	return mos, true
}

// report posts the average score to the ingest API as a log line. The
// extractor on the API side picks up the actual_mos field.
func (t *Trapper) report(ctx context.Context, average float64) error {
	body, err := json.Marshal(map[string]string{
		"message": fmt.Sprintf("cdr summary actual_mos=%.2f", average),
	})
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	url := strings.TrimRight(t.cfg.APIBaseURL, "/") + "/log"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build report request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("post report: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("report rejected: status %d", resp.StatusCode)
	}
	return nil
}

// lastPosition reads the checkpointed byte offset. A missing or corrupt
// checkpoint restarts reading from the beginning of the file.
func (t *Trapper) lastPosition() int64 {
	data, err := os.ReadFile(t.cfg.CheckpointFile)
	if err != nil {
		t.logger.Warn("checkpoint not readable, starting from the beginning",
			slog.Any("error", err))
		return 0
	}
	pos, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil || pos < 0 {
		t.logger.Warn("checkpoint invalid, starting from the beginning",
			slog.String("content", strings.TrimSpace(string(data))))
		return 0
	}
	return pos
}

func (t *Trapper) saveCheckpoint(offset int64) error {
	dir := filepath.Dir(t.cfg.CheckpointFile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}
	if err := os.WriteFile(t.cfg.CheckpointFile, []byte(strconv.FormatInt(offset, 10)), 0o644); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}
