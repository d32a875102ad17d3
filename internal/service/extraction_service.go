package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/phrazzld/extract-api/internal/domain"
	"github.com/phrazzld/extract-api/internal/extractor"
	"github.com/phrazzld/extract-api/internal/fetch"
	"github.com/phrazzld/extract-api/internal/task"
)

// ValidateFunc checks that a file on disk is a processable document.
type ValidateFunc func(path string) error

// ExtractionService ties submission, the background workflow, and progress
// queries together. Submissions return a task id immediately; the workflow
// runs in its own goroutine and reports through the registry.
type ExtractionService struct {
	registry   *task.Registry
	workflow   *extractor.Workflow
	extractor  *extractor.Service
	downloader *fetch.Downloader
	validate   ValidateFunc
	tempDir    string
	logger     *slog.Logger
}

// NewExtractionService creates an ExtractionService.
func NewExtractionService(
	registry *task.Registry,
	workflow *extractor.Workflow,
	extractionSvc *extractor.Service,
	downloader *fetch.Downloader,
	validate ValidateFunc,
	tempDir string,
	logger *slog.Logger,
) *ExtractionService {
	return &ExtractionService{
		registry:   registry,
		workflow:   workflow,
		extractor:  extractionSvc,
		downloader: downloader,
		validate:   validate,
		tempDir:    tempDir,
		logger:     logger,
	}
}

// SubmitUpload accepts an uploaded document, validates it, and schedules its
// extraction. Returns the new task id. Input errors are reported here and no
// task is created for them.
func (s *ExtractionService) SubmitUpload(_ context.Context, src io.Reader, filename string, opts domain.ExtractionOptions) (string, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return "", fmt.Errorf("%w: only PDF files are supported", domain.ErrUnsupportedDocument)
	}

	path, err := fetch.SaveUpload(s.tempDir, src, filename)
	if err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}
	if err := s.validate(path); err != nil {
		return "", err
	}

	return s.schedule(func(context.Context) (string, error) {
		return path, nil
	}, opts), nil
}

// SubmitURL schedules extraction of a remote document. The download happens
// inside the workflow, so submission returns immediately even for slow hosts.
func (s *ExtractionService) SubmitURL(_ context.Context, url string, opts domain.ExtractionOptions) (string, error) {
	if url == "" {
		return "", fmt.Errorf("%w: pdf_url is required", domain.ErrMissingInput)
	}

	resolve := func(ctx context.Context) (string, error) {
		path, err := s.downloader.Download(ctx, url, opts.UseCache)
		if err != nil {
			return "", err
		}
		if !opts.UseCache {
			return path, nil
		}
		// The workflow deletes its input when done; hand it a private copy
		// so the shared cached download survives.
		return fetch.CopyToTemp(s.tempDir, path)
	}
	return s.schedule(resolve, opts), nil
}

// schedule registers a new task and starts its workflow goroutine.
func (s *ExtractionService) schedule(resolve extractor.InputResolver, opts domain.ExtractionOptions) string {
	taskID := uuid.New().String()
	tracker := s.registry.Create(taskID, extractor.TotalSteps, extractor.StepDescriptions)
	s.logger.Info("extraction task submitted", "task_id", taskID, "type", opts.Type)

	go s.workflow.Run(context.Background(), tracker, resolve, opts)
	return taskID
}

// Progress returns the current snapshot for a task.
func (s *ExtractionService) Progress(taskID string) (domain.TaskSnapshot, error) {
	snap, ok := s.registry.Get(taskID)
	if !ok {
		return domain.TaskSnapshot{}, domain.ErrTaskNotFound
	}
	return snap, nil
}

// Result returns the final snapshot of a completed task. A known but
// unfinished task yields ErrTaskNotCompleted.
func (s *ExtractionService) Result(taskID string) (domain.TaskSnapshot, error) {
	snap, ok := s.registry.Get(taskID)
	if !ok {
		return domain.TaskSnapshot{}, domain.ErrTaskNotFound
	}
	if snap.Status != domain.TaskStatusCompleted {
		return domain.TaskSnapshot{}, fmt.Errorf("%w: task is %s", domain.ErrTaskNotCompleted, snap.Status)
	}
	return snap, nil
}

// ActiveTasks returns snapshots of every task still in the active set.
func (s *ExtractionService) ActiveTasks() []domain.TaskSnapshot {
	return s.registry.ListActive()
}

// ClearCaches drops the extraction, OCR, and download caches.
func (s *ExtractionService) ClearCaches() {
	s.extractor.ClearCache()
	s.downloader.ClearCache()
	s.logger.Info("all caches cleared")
}

// Sweep expires finished tasks past retention and stale cache entries.
// Returns the total number of entries removed.
func (s *ExtractionService) Sweep() int {
	removed := s.registry.SweepExpired()
	removed += s.extractor.SweepCaches()
	removed += s.downloader.SweepExpired()
	return removed
}
