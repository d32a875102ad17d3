package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/extract-api/internal/api"
	apiMiddleware "github.com/phrazzld/extract-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	extractHandler := api.NewExtractHandler(
		app.service,
		app.config.Upload.MaxSizeBytes,
		app.config.Extraction.OCRLanguage,
		app.logger,
	)
	taskHandler := api.NewTaskHandler(app.service, app.logger)

	r.Post("/extract", extractHandler.ExtractFile)
	r.Post("/extract-url", extractHandler.ExtractURL)
	r.Get("/task-progress/{taskID}", taskHandler.GetProgress)
	r.Get("/task-result/{taskID}", taskHandler.GetResult)
	r.Get("/active-tasks", taskHandler.GetActiveTasks)
	r.Post("/clear-cache", taskHandler.ClearCache)
	r.Get("/health", api.Health)

	return r
}
