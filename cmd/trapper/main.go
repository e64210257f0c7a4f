// Command trapper periodically polls the PBX call detail record log,
// averages the MOS scores of newly completed calls, and reports the
// average to the ingestion API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"logbridge/internal/observability/logging"
	"logbridge/internal/trapper"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	cfg, err := trapper.LoadConfig()
	if err != nil {
		logger.Error("configuration invalid", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("trapper configured",
		slog.String("cdr_file", cfg.CDRFilePath),
		slog.String("checkpoint", cfg.CheckpointFile),
		slog.String("api", cfg.APIBaseURL),
		slog.String("schedule", cfg.Schedule))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tr := trapper.New(cfg, logger)

	c := cron.New()
	if _, err := c.AddFunc(cfg.Schedule, func() {
		runOnce(ctx, logger, tr)
	}); err != nil {
		logger.Error("invalid schedule", slog.String("schedule", cfg.Schedule), slog.Any("error", err))
		os.Exit(1)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c.Start()
		<-ctx.Done()
		logger.Info("stopping scheduler, waiting for running job")
		<-c.Stop().Done()
		return nil
	})

	g.Go(func() error {
		return runMetricsServer(ctx, logger, cfg.MetricsPort)
	})

	// One immediate run so a fresh deployment reports without waiting a
	// full schedule interval.
	runOnce(ctx, logger, tr)

	if err := g.Wait(); err != nil {
		logger.Error("trapper terminated", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("trapper stopped")
}

func runOnce(ctx context.Context, logger *slog.Logger, tr *trapper.Trapper) {
	start := time.Now()
	stats, err := tr.Run(ctx)
	if err != nil {
		logger.Error("polling run failed", slog.Any("error", err))
		return
	}
	logger.Info("polling run completed",
		slog.Int("records", stats.Records),
		slog.Bool("reported", stats.Reported),
		slog.Duration("duration", time.Since(start)))
}

// runMetricsServer serves the Prometheus endpoint and a liveness probe
// until ctx is canceled.
func runMetricsServer(ctx context.Context, logger *slog.Logger, port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
