// Command api runs the log ingestion server: it accepts remote log lines
// over HTTP, appends them to the tenant log file, extracts quality metrics,
// and forwards each data point to Zabbix.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"logbridge/internal/config"
	"logbridge/internal/extractor"
	hhttp "logbridge/internal/handler/http"
	"logbridge/internal/handler/http/requestid"
	"logbridge/internal/logfile"
	"logbridge/internal/observability/logging"
	"logbridge/internal/observability/tracing"
	"logbridge/internal/sink"
	"logbridge/internal/usecase/ingest"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", slog.Any("error", err))
		os.Exit(1)
	}

	shutdownTracing := tracing.Init()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("tracing shutdown failed", slog.Any("error", err))
		}
	}()

	ext, err := buildExtractor(cfg, logger)
	if err != nil {
		logger.Error("metric definitions invalid", slog.Any("error", err))
		os.Exit(1)
	}

	dataSink, breaker := buildSink(cfg, logger)
	appender := logfile.New(cfg.LogFilePath())

	svc := ingest.Service{
		Appender:  appender,
		Extractor: ext,
		Sink:      dataSink,
		Target:    cfg.ZabbixHost,
		Logger:    logger,
	}

	handler := applyMiddleware(logger, setupRoutes(cfg, svc, appender, breaker))
	runServer(logger, cfg, handler)
}

// buildExtractor compiles the metric definitions, preferring the YAML file
// when one is configured.
func buildExtractor(cfg config.Config, logger *slog.Logger) (*extractor.Extractor, error) {
	defs := extractor.DefaultDefinitions()
	if cfg.MetricConfigFile != "" {
		loaded, err := extractor.LoadDefinitions(cfg.MetricConfigFile)
		if err != nil {
			return nil, err
		}
		defs = loaded
		logger.Info("metric definitions loaded",
			slog.String("file", cfg.MetricConfigFile),
			slog.Int("count", len(defs)))
	}
	return extractor.New(defs, logger), nil
}

// buildSink assembles the Zabbix submission path for the configured
// transport, optionally wrapped in a circuit breaker. The breaker is also
// returned separately so the health endpoint can inspect its state.
func buildSink(cfg config.Config, logger *slog.Logger) (sink.Sink, *sink.BreakerSink) {
	var inner sink.Sink
	switch cfg.SinkTransport {
	case config.TransportTrapper:
		inner = &sink.TrapperClient{
			Server:  cfg.ZabbixServer,
			Port:    cfg.ZabbixPort,
			Timeout: cfg.SinkTimeout,
		}
	default:
		inner = &sink.SenderClient{
			Path:    cfg.SenderPath,
			Server:  cfg.ZabbixServer,
			Port:    cfg.ZabbixPort,
			Timeout: cfg.SinkTimeout,
			Logger:  logger,
		}
	}
	logger.Info("sink configured",
		slog.String("transport", cfg.SinkTransport),
		slog.String("server", cfg.ZabbixServer),
		slog.Int("port", cfg.ZabbixPort),
		slog.Bool("breaker", cfg.BreakerEnabled))

	if !cfg.BreakerEnabled {
		return inner, nil
	}
	breaker := sink.NewBreakerSink(inner)
	return breaker, breaker
}

// setupRoutes registers the HTTP surface of the bridge.
func setupRoutes(cfg config.Config, svc ingest.Service, appender *logfile.Appender, breaker *sink.BreakerSink) *http.ServeMux {
	health := &hhttp.HealthHandler{
		LogPath: appender.Path(),
		Version: cfg.Version,
	}
	if breaker != nil {
		health.Breaker = breaker
	}

	mux := http.NewServeMux()
	mux.Handle("POST /log", hhttp.LogHandler{Svc: svc, Host: cfg.ZabbixHost})
	mux.Handle("GET /{$}", hhttp.StatusHandler{
		ClientID:     cfg.ClientID,
		ZabbixTarget: fmt.Sprintf("%s:%d", cfg.ZabbixServer, cfg.ZabbixPort),
		Version:      cfg.Version,
	})
	mux.Handle("GET /health", health)
	mux.Handle("GET /live", hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())
	return mux
}

// applyMiddleware wraps the router with the middleware chain.
// Order: Request ID → Tracing → Recovery → Logging → Body Limit → Metrics.
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	chain := http.Handler(handler)
	chain = hhttp.MetricsMiddleware(chain)
	chain = hhttp.LimitRequestBody(1 << 20)(chain)
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = tracing.Middleware(chain)
	chain = requestid.Middleware(chain)
	return chain
}

// runServer starts the HTTP server and blocks until SIGINT or SIGTERM,
// then drains in-flight requests before exiting.
func runServer(logger *slog.Logger, cfg config.Config, handler http.Handler) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("client_id", cfg.ClientID),
			slog.String("zabbix_host", cfg.ZabbixHost),
			slog.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
