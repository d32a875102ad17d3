package extractor

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/phrazzld/extract-api/internal/domain"
	"github.com/phrazzld/extract-api/internal/optimizer"
	"github.com/phrazzld/extract-api/internal/redact"
	"github.com/phrazzld/extract-api/internal/task"
)

// Workflow step numbers. Progress is reported on a 0..100 scale so the step
// number doubles as a rough percentage.
const (
	TotalSteps      = 100
	stepInitialized = 0
	stepAnalyzed    = 20
	stepOptimized   = 40
	stepProcessing  = 60
	stepFinalizing  = 90
)

// StepDescriptions maps the workflow's known step numbers to human text for
// progress snapshots.
var StepDescriptions = map[int]string{
	stepInitialized: "Preparing input document",
	stepAnalyzed:    "Analyzing document characteristics",
	stepOptimized:   "Optimizing extraction parameters",
	stepProcessing:  "Extracting document content",
	stepFinalizing:  "Finalizing results",
	TotalSteps:      "Extraction complete",
}

// InputResolver materializes a task's input as a file on disk. Upload-backed
// tasks return an already-saved temp path; URL-backed tasks download first.
// The workflow owns the returned file and removes it when done.
type InputResolver func(ctx context.Context) (string, error)

// Workflow drives one extraction task end to end, reporting progress through
// the task tracker. Any failure marks the task errored; there is no retry.
type Workflow struct {
	extractor   *Service
	parser      Parser
	baseWorkers int
	logger      *slog.Logger
}

// NewWorkflow creates a Workflow around the extraction service. baseWorkers
// seeds the optimizer's worker heuristic.
func NewWorkflow(extractor *Service, parser Parser, baseWorkers int, logger *slog.Logger) *Workflow {
	return &Workflow{
		extractor:   extractor,
		parser:      parser,
		baseWorkers: baseWorkers,
		logger:      logger,
	}
}

// Run executes the workflow for one task: resolve the input, analyze it,
// tune parameters, extract, store the result, complete. It is meant to run
// in its own goroutine; errors are recorded on the tracker, never returned.
func (w *Workflow) Run(ctx context.Context, tracker *task.Tracker, resolve InputResolver, opts domain.ExtractionOptions) {
	start := time.Now()
	logger := w.logger.With("task_id", tracker.TaskID())

	path, err := resolve(ctx)
	if err != nil {
		w.fail(logger, tracker, "failed to prepare input", err)
		return
	}
	defer w.cleanupInput(logger, path)

	tracker.Update(stepInitialized, domain.TaskStatusAnalyzing, "Analyzing document...")

	analysisStart := time.Now()
	chars, err := w.analyze(ctx, path)
	if err != nil {
		w.fail(logger, tracker, "failed to analyze document", err)
		return
	}
	tracker.AddPerformanceStat("analysis_time", time.Since(analysisStart).Seconds())
	logger.Debug("document analyzed",
		"pages", chars.PageCount,
		"size_bytes", chars.FileSizeBytes,
		"scanned", chars.IsScanned)

	tracker.Update(stepAnalyzed, domain.TaskStatusOptimizing, "Analyzing document characteristics...")
	params := optimizer.Analyze(chars, w.baseWorkers, tracker)
	tracker.Update(stepOptimized, domain.TaskStatusProcessing, "Extraction parameters optimized")

	tracker.Update(stepProcessing, domain.TaskStatusProcessing, "Extracting content...")
	extractionStart := time.Now()
	result, err := w.extractor.Extract(ctx, path, opts, params, tracker)
	if err != nil {
		w.fail(logger, tracker, "extraction failed", err)
		return
	}
	tracker.AddPerformanceStat("extraction_time", time.Since(extractionStart).Seconds())

	tracker.Update(stepFinalizing, domain.TaskStatusFinalizing, "Storing results...")
	tracker.SetResultData(result)
	tracker.AddPerformanceStat("execution_time", time.Since(start).Seconds())

	tracker.Complete("Extraction completed successfully")
	logger.Info("extraction task completed",
		"pages", result.Pages,
		"type", result.Type,
		"duration", time.Since(start))
}

// analyze opens the document just long enough to derive its characteristics.
func (w *Workflow) analyze(ctx context.Context, path string) (domain.DocumentCharacteristics, error) {
	doc, err := w.parser.Open(ctx, path)
	if err != nil {
		return domain.DocumentCharacteristics{}, err
	}
	defer func() { _ = doc.Close() }()

	return AnalyzeDocument(ctx, doc, path, w.logger), nil
}

// fail records a terminal error on the tracker with a redacted message.
func (w *Workflow) fail(logger *slog.Logger, tracker *task.Tracker, stage string, err error) {
	logger.Error("extraction task failed", "stage", stage, "error", err)
	tracker.Error(stage + ": " + redact.Error(err))
}

// cleanupInput removes the task's input file. Best effort: a leftover temp
// file is worth a log line, not a failed task.
func (w *Workflow) cleanupInput(logger *slog.Logger, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to remove input file", "error", err)
	}
}
