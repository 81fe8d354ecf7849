// Package main implements the entry point for the plantainbanana server,
// which edits uploaded images with Gemini one request at a time.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nathfavour/plantainbanana/internal/config"
	"github.com/nathfavour/plantainbanana/internal/platform/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		stop()
		os.Exit(1)
	}
}

// run loads configuration, builds the application and serves until ctx is
// cancelled.
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		// The logger is not configured yet.
		log.Printf("failed to load configuration: %v", err)
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"gate_timeout_ms", cfg.Gate.DefaultTimeoutMs,
		"model", cfg.LLM.ModelName)

	app, err := newApplication(ctx, cfg, l)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}
