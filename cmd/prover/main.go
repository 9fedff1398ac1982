// Command prover consumes verification requests from Pub/Sub, emulates
// proof generation, and publishes prover responses.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/0xer-org/zk/internal/adapters/pubsub"
	"github.com/0xer-org/zk/internal/config"
	"github.com/0xer-org/zk/internal/prover"
	"github.com/0xer-org/zk/pkg/logger"
	"github.com/0xer-org/zk/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Initialize logging
	initLogger := logger.Init
	if cfg.JSONLogging {
		initLogger = logger.InitJSON
	}
	if err := initLogger(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	client, err := pubsub.New(ctx,
		pubsub.WithProjectID(cfg.ProjectID),
		pubsub.WithEmulatorHost(cfg.EmulatorHost),
		pubsub.WithLogger(log),
	)
	if err != nil {
		os.Stderr.WriteString("failed to create pubsub client: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer client.Close()

	// The prover owns its consuming subscription and result topic.
	channels := []pubsub.Channel{
		{Topic: cfg.ProverTopic, Subscription: cfg.ProverSubscription},
		{Topic: cfg.ResultTopic, Subscription: cfg.ResultSubscription},
	}
	if err := client.Setup(ctx, channels...); err != nil {
		os.Stderr.WriteString("failed to provision channels: " + err.Error() + "\n")
		os.Exit(1)
	}

	svc := prover.New(client, cfg.ProverSubscription, cfg.ResultTopic,
		prover.WithMaxConcurrent(cfg.MaxConcurrentProofs),
		prover.WithProofTimeout(cfg.ProofTimeout),
		prover.WithProofLatency(
			time.Duration(cfg.ProofLatencyMinMS)*time.Millisecond,
			time.Duration(cfg.ProofLatencyMaxMS)*time.Millisecond,
		),
		prover.WithLogger(log),
	)

	// Metrics endpoint.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting metrics server", logger.String("addr", cfg.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("metrics server failed: " + err.Error() + "\n")
		}
	}()

	// Block consuming messages until the context is cancelled.
	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error(ctx, "prover service failed", logger.Error(err))
	}

	log.Info(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "metrics server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "prover stopped")
}
