// Kite - Synthetic card-payment fraud datasets with a known ground truth.
// Copyright (c) 2025 opensource.finance
// Licensed under the Apache License 2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/opensource-finance/kite/internal/check"
	"github.com/opensource-finance/kite/internal/dataset"
	"github.com/opensource-finance/kite/internal/domain"
	"github.com/opensource-finance/kite/internal/repository"
	"github.com/opensource-finance/kite/internal/simulate"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	cfg := domain.DefaultConfig()

	out := flag.String("out", cfg.Output.Dir, "directory for daily dataset files")
	start := flag.String("start", "", "first simulated day, YYYY-MM-DD (required)")
	days := flag.Int("days", cfg.Simulation.Days, "number of days to generate")
	customers := flag.Int("customers", cfg.Simulation.Customers, "customer population size")
	terminals := flag.Int("terminals", cfg.Simulation.Terminals, "terminal population size")
	seed := flag.Int64("seed", cfg.Simulation.Seed, "random seed; identical seeds reproduce identical datasets")
	archive := flag.String("archive", cfg.Archive.Driver, "archive sink: none, sqlite or postgres")
	runChecks := flag.Bool("check", true, "run quality checks over each generated day")
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

	slog.Info("starting kite",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	if *start == "" {
		usageError("-start is required")
	}
	startDate, err := time.Parse("2006-01-02", *start)
	if err != nil {
		usageError(fmt.Sprintf("%v: start date %q is not YYYY-MM-DD", domain.ErrParameter, *start))
	}

	cfg.Output.Dir = *out
	cfg.Archive.Driver = *archive
	cfg.Simulation.StartDate = startDate
	cfg.Simulation.Days = *days
	cfg.Simulation.Customers = *customers
	cfg.Simulation.Terminals = *terminals
	cfg.Simulation.Seed = *seed
	applyEnv(cfg)

	if err := cfg.Simulation.Validate(); err != nil {
		usageError(err.Error())
	}

	slog.Info("configuration loaded",
		"start", startDate.Format("2006-01-02"),
		"days", cfg.Simulation.Days,
		"customers", cfg.Simulation.Customers,
		"terminals", cfg.Simulation.Terminals,
		"seed", cfg.Simulation.Seed,
		"archive", cfg.Archive.Driver,
		"checks", *runChecks,
	)

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

	writer, err := dataset.NewWriter(cfg.Output.Dir)
	if err != nil {
		slog.Error("failed to initialize output directory", "error", err)
		os.Exit(1)
	}

	var checker *check.Checker
	if *runChecks {
		checker, err = check.New(check.Builtin())
		if err != nil {
			slog.Error("failed to compile quality checks", "error", err)
			os.Exit(1)
		}
		slog.Info("quality checks compiled", "count", len(check.Builtin()))
	}

	var archiveRepo domain.Repository
	if cfg.Archive.Driver != "none" {
		archiveRepo, err = repository.New(cfg.Archive)
		if err != nil {
			slog.Error("failed to initialize archive", "error", err)
			os.Exit(1)
		}
		defer archiveRepo.Close()
		slog.Info("archive initialized", "driver", cfg.Archive.Driver)
	}

	sim, err := simulate.New(cfg.Simulation)
	if err != nil {
		slog.Error("failed to initialize simulator", "error", err)
		os.Exit(1)
	}
	slog.Info("population placed",
		"customers", len(sim.Customers()),
		"terminals", len(sim.Terminals()),
	)

	runner := &simulate.Runner{
		Sim:     sim,
		Writer:  writer,
		Checker: checker,
		Archive: archiveRepo,
	}

	runStart := time.Now()
	if err := runner.Run(ctx); err != nil {
		slog.Error("generation failed", "error", err)
		os.Exit(1)
	}

	slog.Info("generation complete",
		"run_id", runner.RunID,
		"days", cfg.Simulation.Days,
		"out", cfg.Output.Dir,
		"duration_ms", time.Since(runStart).Milliseconds(),
	)
}

// applyEnv overlays environment settings onto the configuration.
// Database credentials never appear on the command line.
func applyEnv(cfg *domain.Config) {
	if v := os.Getenv("KITE_SQLITE_PATH"); v != "" {
		cfg.Archive.SQLitePath = v
	}
	if v := os.Getenv("KITE_POSTGRES_HOST"); v != "" {
		cfg.Archive.PostgresHost = v
	}
	if v := os.Getenv("KITE_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Archive.PostgresPort = port
		}
	}
	if v := os.Getenv("KITE_POSTGRES_USER"); v != "" {
		cfg.Archive.PostgresUser = v
	}
	if v := os.Getenv("KITE_POSTGRES_PASSWORD"); v != "" {
		cfg.Archive.PostgresPassword = v
	}
	if v := os.Getenv("KITE_POSTGRES_DB"); v != "" {
		cfg.Archive.PostgresDB = v
	}
	if v := os.Getenv("KITE_POSTGRES_SSLMODE"); v != "" {
		cfg.Archive.PostgresSSLMode = v
	}
}

func usageError(msg string) {
	fmt.Fprintf(os.Stderr, "kite: %s\n\n", msg)
	flag.Usage()
	os.Exit(2)
}
