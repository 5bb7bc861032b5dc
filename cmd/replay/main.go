// Kite - Synthetic card-payment fraud datasets with a known ground truth.
// Copyright (c) 2025 opensource.finance
// Licensed under the Apache License 2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/opensource-finance/kite/internal/api"
	"github.com/opensource-finance/kite/internal/bus"
	"github.com/opensource-finance/kite/internal/checkpoint"
	"github.com/opensource-finance/kite/internal/domain"
	"github.com/opensource-finance/kite/internal/publisher"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	cfg := domain.DefaultConfig()

	file := flag.String("file", "", "day file to replay (required)")
	busType := flag.String("bus", cfg.EventBus.Type, "transport: channel, nats or kafka")
	topic := flag.String("topic", domain.TopicTransactionsRaw, "topic to publish rows on")
	interval := flag.Duration("interval", 50*time.Millisecond, "pacing delay between rows")
	ckType := flag.String("checkpoint", cfg.Checkpoint.Type, "resume store: memory or redis")
	httpPort := flag.Int("http", 0, "port for the status surface, 0 disables")
	flag.Parse()

	// Initialize structured logger
	logLevel := slog.LevelInfo
	if os.Getenv("KITE_DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("starting replay",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	if *file == "" {
		fmt.Fprintln(os.Stderr, "replay: -file is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg.EventBus.Type = *busType
	cfg.Checkpoint.Type = *ckType
	applyEnv(cfg)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Initialize EventBus
	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		slog.Error("failed to initialize event bus", "error", err)
		os.Exit(1)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	// Initialize checkpoint store
	store, err := checkpoint.New(cfg.Checkpoint)
	if err != nil {
		slog.Error("failed to initialize checkpoint store", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("checkpoint store initialized", "type", cfg.Checkpoint.Type)

	pub := &publisher.Publisher{
		Bus:           busImpl,
		Store:         store,
		Topic:         *topic,
		Interval:      *interval,
		CheckpointTTL: cfg.Checkpoint.TTL,
	}

	// Optional status surface
	var srv *api.Server
	if *httpPort > 0 {
		cfg.Server.Port = *httpPort
		srv = api.NewServer(cfg.Server, pub, Version)
		go func() {
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				slog.Error("status server failed", "error", err)
			}
		}()
		slog.Info("status surface listening",
			"host", cfg.Server.Host,
			"port", cfg.Server.Port,
		)
	}

	err = pub.Replay(ctx, *file)

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			slog.Error("status server forced to shutdown", "error", shutdownErr)
		}
		shutdownCancel()
	}

	if err != nil {
		slog.Error("replay failed", "error", err)
		os.Exit(1)
	}

	slog.Info("replay complete", "file", *file, "topic", *topic)
}

// applyEnv overlays environment settings onto the configuration.
// Broker and store credentials never appear on the command line.
func applyEnv(cfg *domain.Config) {
	if v := os.Getenv("KITE_NATS_URL"); v != "" {
		cfg.EventBus.NATSUrl = v
	}
	if v := os.Getenv("KITE_NATS_TOKEN"); v != "" {
		cfg.EventBus.NATSToken = v
	}
	if v := os.Getenv("KITE_KAFKA_BROKERS"); v != "" {
		cfg.EventBus.KafkaBrokers = v
	}
	if v := os.Getenv("KITE_KAFKA_SECURITY_PROTOCOL"); v != "" {
		cfg.EventBus.KafkaSecurityProtocol = v
	}
	if v := os.Getenv("KITE_KAFKA_SASL_MECHANISM"); v != "" {
		cfg.EventBus.KafkaSASLMechanism = v
	}
	if v := os.Getenv("KITE_KAFKA_SASL_USERNAME"); v != "" {
		cfg.EventBus.KafkaSASLUsername = v
	}
	if v := os.Getenv("KITE_KAFKA_SASL_PASSWORD"); v != "" {
		cfg.EventBus.KafkaSASLPassword = v
	}
	if v := os.Getenv("KITE_REDIS_ADDR"); v != "" {
		cfg.Checkpoint.RedisAddr = v
	}
	if v := os.Getenv("KITE_REDIS_PASSWORD"); v != "" {
		cfg.Checkpoint.RedisPassword = v
	}
	if v := os.Getenv("KITE_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Checkpoint.RedisDB = db
		}
	}
}
