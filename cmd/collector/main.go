package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	httpadapter "orion-collector/internal/adapter/http"
	kafkaadapter "orion-collector/internal/adapter/kafka"
	mqttadapter "orion-collector/internal/adapter/mqtt"
	"orion-collector/internal/adapter/station"
	"orion-collector/internal/adapter/stdout"
	"orion-collector/internal/config"
	"orion-collector/internal/observability"
	"orion-collector/internal/pipeline"
	"orion-collector/internal/poller"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	_ = godotenv.Load() // .env is optional

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat, version)
	slog.SetDefault(logger)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	schedule, err := poller.NewSchedule(cfg.PollsPerMinute, cfg.PollLeadSeconds)
	if err != nil {
		logger.Error("invalid poll schedule", "error", err)
		os.Exit(1)
	}

	fetcher := station.NewClient(cfg.StationURL, cfg.StationTimeout, logger)
	source := poller.New(fetcher, poller.Config{
		Schedule:     schedule,
		SensorMap:    cfg.SensorMap,
		QuickRetries: cfg.QuickRetries,
		Policy:       poller.RetryPolicy(cfg.RetryPolicy),
		MaxAttempts:  cfg.RetryMaxAttempts,
	}, clockwork.NewRealClock(), logger, metrics)

	publisher, sinkCloser, err := newSink(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize sink", "sink", cfg.Sink, "error", err)
		os.Exit(1)
	}

	p := pipeline.New(source, publisher, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, version, p, logger)

	logger.Info("collector starting",
		"version", version,
		"station_url", cfg.StationURL,
		"polls_per_minute", cfg.PollsPerMinute,
		"sink", cfg.Sink,
	)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the collect-publish pipeline. A non-nil error means the bounded
	// retry policy gave up on the station.
	pipelineErr := make(chan error, 1)
	go func() { pipelineErr <- p.Run(ctx) }()

	var fatal bool
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-pipelineErr:
		if err != nil {
			logger.Error("pipeline failed", "error", err)
			fatal = true
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if sinkCloser != nil {
		if err := sinkCloser.Close(); err != nil {
			logger.Error("sink close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	if fatal {
		os.Exit(1)
	}
}

// newSink builds the configured publisher. The second return value is non-nil
// when the sink holds a connection that must be closed on shutdown.
func newSink(ctx context.Context, cfg *config.Config, logger *slog.Logger) (pipeline.Publisher, io.Closer, error) {
	switch cfg.Sink {
	case config.SinkKafka:
		w := kafkaadapter.NewWriter(cfg, logger)
		return w, w, nil
	case config.SinkMQTT:
		pub, err := mqttadapter.NewPublisher(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return pub, pub, nil
	default:
		return stdout.NewWriter(os.Stdout), nil, nil
	}
}
