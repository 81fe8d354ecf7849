package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nathfavour/plantainbanana/internal/config"
	"github.com/nathfavour/plantainbanana/internal/events"
	"github.com/nathfavour/plantainbanana/internal/gate"
	"github.com/nathfavour/plantainbanana/internal/generation"
	"github.com/nathfavour/plantainbanana/internal/platform/gemini"
	"github.com/nathfavour/plantainbanana/internal/service"
)

// shutdownReason is the cancellation reason given to queued generations
// when the server stops.
const shutdownReason = "server shutting down"

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	generator generation.Generator
	gate      *gate.Gate

	// Event system
	eventEmitter *events.InMemoryEventEmitter
	stats        *events.StatsHandler

	imageService service.ImageService
}

// newApplication creates the application with the Gemini generator.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	generator, err := gemini.NewGeminiGenerator(
		ctx,
		logger.With("component", "image_generator"),
		cfg.LLM,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize image generator: %w", err)
	}
	logger.Info("Image generator initialized successfully", "model", cfg.LLM.ModelName)

	return newApplicationWithGenerator(cfg, logger, generator)
}

// newApplicationWithGenerator wires the gate, event handlers and services
// around an already constructed generator.
func newApplicationWithGenerator(
	cfg *config.Config,
	logger *slog.Logger,
	generator generation.Generator,
) (*application, error) {
	app := &application{
		config:    cfg,
		logger:    logger,
		generator: generator,
	}

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.stats = events.NewStatsHandler()
	app.eventEmitter.RegisterHandler(events.NewLoggingHandler(logger))
	app.eventEmitter.RegisterHandler(app.stats)

	app.gate = gate.New(
		gate.Config{DefaultTimeout: cfg.Gate.DefaultTimeout()},
		logger.With("component", "gate"),
		events.NewGateObserver(app.eventEmitter),
	)

	var err error
	app.imageService, err = service.NewImageService(app.gate, app.generator, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create image service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup drops every queued generation so waiting clients get an answer
// while the server drains. It runs once the listener has closed. The running
// generation is left to finish or hit its deadline.
func (app *application) cleanup() {
	dropped := app.imageService.CancelQueued(shutdownReason)
	app.logger.Info("Application shutdown completed", "dropped_queued", dropped)
}
