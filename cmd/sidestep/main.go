// Package main is the entry point for the sidestep binary.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boilerroom/sidestep/internal/server"
	"github.com/boilerroom/sidestep/pkg/config"
	"github.com/boilerroom/sidestep/pkg/logging"
	"github.com/boilerroom/sidestep/pkg/telemetry"
)

const defaultConfigPath = "sidestep.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	listenAddr := flag.String("listen", "", "Address to listen on (overrides config port)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error; overrides config)")
	prettyLogs := flag.Bool("pretty", false, "Enable pretty console logging")
	flag.Parse()

	// Config
	loader, err := config.NewLoader(*configPath)
	if err != nil {
		slog.Error("Failed to create config loader", "error", err)
		os.Exit(1)
	}
	defer loader.Close()

	cfg, err := loader.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Logging
	level := cfg.Logging.Level
	if *logLevel != "" {
		level = *logLevel
	}
	logger := logging.NewLogger(logging.Config{
		Level:  level,
		Pretty: *prettyLogs || cfg.Logging.Pretty,
	})
	slog.SetDefault(logger)

	logger.Info("Starting sidestep",
		"app", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"config", *configPath,
	)

	// Tracing
	shutdownTracing, err := telemetry.SetupProvider(context.Background(), telemetry.Config{
		ServiceName: "sidestep",
		Endpoint:    cfg.Telemetry.Endpoint,
		Environment: cfg.App.Environment,
		Insecure:    cfg.Telemetry.Insecure,
		Headers:     cfg.Telemetry.Headers,
	})
	if err != nil {
		logger.Error("Failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	// Server
	metrics := telemetry.NewMetrics()
	srv := server.New(cfg, logger, metrics)

	// Hot reload: chaos mode, readiness failure rate, and slow delay can be
	// flipped at runtime by editing the config file.
	loader.OnReloadError = func(err error) {
		metrics.RecordConfigReload("error")
		logger.Error("Config reload failed, keeping previous configuration", "error", err)
	}
	if err := loader.Watch(func(next *config.Config) {
		metrics.RecordConfigReload("success")
		logger.Info("Configuration reloaded")
		srv.ApplyConfig(next)
	}); err != nil {
		logger.Warn("Config watch unavailable", "error", err)
	}

	addr := cfg.ListenAddr()
	if *listenAddr != "" {
		addr = *listenAddr
	}
	if err := srv.Start(addr); err != nil {
		logger.Error("Failed to start server", "addr", addr, "error", err)
		os.Exit(1)
	}

	waitForShutdown(srv, shutdownTracing, cfg.Server.ShutdownTimeout, logger)
}

func waitForShutdown(srv *server.Server, shutdownTracing func(context.Context) error, timeout time.Duration, logger *slog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigCh

	logger.Info("Shutting down", "signal", sig.String())

	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Error("Tracing shutdown error", "error", err)
	}

	logger.Info("Shutdown complete")
}
