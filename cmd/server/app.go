package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/extract-api/internal/config"
	"github.com/phrazzld/extract-api/internal/extractor"
	"github.com/phrazzld/extract-api/internal/fetch"
	"github.com/phrazzld/extract-api/internal/platform/logger"
	"github.com/phrazzld/extract-api/internal/platform/pdf"
	"github.com/phrazzld/extract-api/internal/platform/tesseract"
	"github.com/phrazzld/extract-api/internal/service"
	"github.com/phrazzld/extract-api/internal/task"
)

// application holds the initialized dependencies of the server.
type application struct {
	config   *config.Config
	logger   *slog.Logger
	registry *task.Registry
	service  *service.ExtractionService

	sweepStop chan struct{}
	sweepDone chan struct{}
}

// initializeApp loads configuration, sets up logging and wires the
// extraction pipeline together.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"base_workers", cfg.Extraction.BaseWorkers)

	parser := pdf.NewParser(appLogger)
	rasterizer := pdf.NewRasterizer(appLogger)
	engine := tesseract.New(appLogger)

	ocr := extractor.NewOCRService(rasterizer, engine, cfg.Extraction.CacheTTL, appLogger)
	extractionSvc := extractor.NewService(parser, ocr, cfg.Extraction.CacheTTL, appLogger)
	workflow := extractor.NewWorkflow(extractionSvc, parser, cfg.Extraction.BaseWorkers, appLogger)
	downloader := fetch.NewDownloader(cfg.Extraction.CacheTTL, cfg.Upload.TempDir, appLogger)

	registry := task.NewRegistry(task.RegistryConfig{
		ActiveRemovalDelay: cfg.Extraction.ActiveRemovalDelay,
		Retention:          cfg.Extraction.TaskRetention,
	}, appLogger)

	svc := service.NewExtractionService(registry, workflow, extractionSvc, downloader,
		pdf.Validate, cfg.Upload.TempDir, appLogger)

	app := &application{
		config:    cfg,
		logger:    appLogger,
		registry:  registry,
		service:   svc,
		sweepStop: make(chan struct{}),
		sweepDone: make(chan struct{}),
	}
	app.startSweeper(cfg.Extraction.SweepInterval)

	return app, nil
}

// startSweeper periodically removes expired tasks and cache entries.
func (app *application) startSweeper(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer close(app.sweepDone)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				app.service.Sweep()
			case <-app.sweepStop:
				return
			}
		}
	}()
}

// cleanup releases background resources after the HTTP server has stopped.
func (app *application) cleanup() {
	close(app.sweepStop)
	<-app.sweepDone
	app.registry.Close()
}
