package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tjfontaine/n8n-gateway/internal/pkg/config"
	"github.com/tjfontaine/n8n-gateway/internal/telemetry"
	"github.com/tjfontaine/n8n-gateway/pkg/gateway"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	shutdownTracer, err := telemetry.InitTracer(cfg.Telemetry, logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	gw, err := gateway.New(
		gateway.WithConfig(cfg),
		gateway.WithLogger(logger),
	)
	if err != nil {
		log.Fatalf("Failed to create gateway: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := gw.Start(ctx); err != nil {
		log.Fatalf("Failed to start gateway: %v", err)
	}

	served := make(chan error, 1)
	go func() { served <- gw.Wait() }()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping gateway...")
	case err := <-served:
		if err != nil {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := gw.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
