package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nathfavour/plantainbanana/internal/api"
	apiMiddleware "github.com/nathfavour/plantainbanana/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	imageHandler := api.NewImageHandler(app.imageService, app.config.Server.MaxUploadBytes)
	gateHandler := api.NewGateHandler(app.imageService, app.stats)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", imageHandler.Generate)
		r.Post("/actions/smile", imageHandler.Smile)

		r.Get("/gate", gateHandler.Status)
		r.Post("/gate/cancel", gateHandler.Cancel)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
