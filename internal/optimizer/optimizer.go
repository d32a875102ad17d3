// Package optimizer tunes extraction parameters from document
// characteristics. Analyze is a pure function: identical inputs always yield
// identical parameters, and the optional decision log never affects the
// numeric outcome.
package optimizer

import (
	"fmt"

	"github.com/phrazzld/extract-api/internal/domain"
)

// Log categories for optimization decisions.
const (
	CategoryWorker        = "worker_optimization"
	CategoryDPI           = "dpi_optimization"
	CategoryPreprocessing = "preprocessing_optimization"
	CategoryChunking      = "chunking_optimization"
)

// DefaultBaseWorkers is used when the caller supplies a non-positive base.
const DefaultBaseWorkers = 4

// Page-size thresholds, in bytes.
const (
	largePageSize       = 1 * 1024 * 1024
	dpiReducePageSize   = 2 * 1024 * 1024
	dpiMinimumPageSize  = 5 * 1024 * 1024
	noPreprocessScanned = 4 * 1024 * 1024
	preprocessMaxSize   = 2 * 1024 * 1024
)

// Logger receives a one-line rationale for each optimization sub-decision.
// Implemented by *task.Tracker; a nil Logger disables logging.
type Logger interface {
	AddOptimizationLog(message, category string)
}

// Analyze derives the tuned parameter set for a document. baseWorkers is the
// configured worker budget the rules adjust from.
func Analyze(chars domain.DocumentCharacteristics, baseWorkers int, log Logger) domain.OptimizationParameters {
	if baseWorkers < 1 {
		baseWorkers = DefaultBaseWorkers
	}

	avgPageSize := chars.AvgPageSizeBytes()

	params := domain.OptimizationParameters{
		Workers:          optimalWorkers(chars, avgPageSize, baseWorkers),
		Resolution:       optimalDPI(avgPageSize),
		PreprocessImages: shouldPreprocess(chars.IsScanned, avgPageSize),
		ChunkSize:        chunkSize(chars.PageCount),
	}

	if log != nil {
		log.AddOptimizationLog(
			fmt.Sprintf("Optimized worker count: %d (based on %d pages, %.1fKB avg page size)",
				params.Workers, chars.PageCount, avgPageSize/1024),
			CategoryWorker)

		dpiMsg := fmt.Sprintf("Optimized OCR DPI: %d", params.Resolution)
		if params.Resolution < 300 {
			dpiMsg += " (reduced for performance)"
		}
		log.AddOptimizationLog(dpiMsg, CategoryDPI)

		log.AddOptimizationLog(
			fmt.Sprintf("Image preprocessing: %t", params.PreprocessImages),
			CategoryPreprocessing)

		if params.ChunkSize > 1 {
			log.AddOptimizationLog(
				fmt.Sprintf("Processing in chunks of %d pages", params.ChunkSize),
				CategoryChunking)
		}
	}

	return params
}

// optimalWorkers sizes the per-task worker budget. Small documents do not
// warrant a full pool; large and scanned documents get more headroom; very
// heavy pages pull the count back down to limit memory pressure.
func optimalWorkers(chars domain.DocumentCharacteristics, avgPageSize float64, baseWorkers int) int {
	workers := baseWorkers

	if chars.PageCount < 5 {
		workers = min(2, baseWorkers)
	} else if chars.PageCount > 50 {
		workers = min(baseWorkers+2, 8)
	}

	// OCR is CPU intensive; raise the floor for scanned documents but never
	// lower an already-higher value.
	if chars.IsScanned {
		workers = max(workers, min(baseWorkers+1, 6))
	}

	if avgPageSize > largePageSize {
		workers = max(2, workers-1)
	}

	return workers
}

// optimalDPI picks the rasterization resolution. The two thresholds are
// checked independently; the stricter one wins.
func optimalDPI(avgPageSize float64) int {
	dpi := 300
	if avgPageSize > dpiReducePageSize {
		dpi = 200
	}
	if avgPageSize > dpiMinimumPageSize {
		dpi = 150
	}
	return dpi
}

func shouldPreprocess(isScanned bool, avgPageSize float64) bool {
	if isScanned {
		// Skip preprocessing only for very large scanned pages.
		return avgPageSize <= noPreprocessScanned
	}
	return avgPageSize < preprocessMaxSize
}

// chunkSize picks the batch size for page processing. Small documents are
// processed in a single chunk.
func chunkSize(pageCount int) int {
	switch {
	case pageCount < 20:
		return max(1, pageCount)
	case pageCount < 50:
		return 10
	case pageCount < 100:
		return 20
	default:
		return 30
	}
}
