// Package extractor implements the extraction engine and the per-task
// workflow that drives it: document analysis, parameter optimization,
// parallel page processing through the parsing/OCR collaborators, and
// progress reporting.
package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/extract-api/internal/cache"
	"github.com/phrazzld/extract-api/internal/domain"
	"github.com/phrazzld/extract-api/internal/pages"
)

// Sequential-processing thresholds: below these page counts the worker pool
// is skipped. Structured extraction does more work per page, so it
// parallelizes earlier.
const (
	textSequentialBelow       = 5
	structuredSequentialBelow = 3
)

// Heading heuristic bounds for structured extraction.
const (
	headingMaxWords = 8
	headingMaxRunes = 100
)

// resultKey identifies one cached extraction: the input identity plus every
// parameter that affects the output.
type resultKey struct {
	path            string
	mode            domain.ExtractionType
	includeImages   bool
	includeMetadata bool
	fastMode        bool
}

// Service runs extractions against a document through the injected
// collaborators, caching full results per input+parameters.
type Service struct {
	parser Parser
	ocr    *OCRService
	logger *slog.Logger

	results *cache.Cache[resultKey, *domain.ExtractionResult]
}

// NewService creates an extraction Service. Cached results expire after ttl.
func NewService(parser Parser, ocr *OCRService, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		parser:  parser,
		ocr:     ocr,
		logger:  logger,
		results: cache.New[resultKey, *domain.ExtractionResult](ttl),
	}
}

// Extract runs one extraction over the document at path. params carries the
// optimizer's tuned values; stats receives per-phase measurements and may be
// nil.
func (s *Service) Extract(
	ctx context.Context,
	path string,
	opts domain.ExtractionOptions,
	params domain.OptimizationParameters,
	stats StatRecorder,
) (*domain.ExtractionResult, error) {
	key := resultKey{
		path:            path,
		mode:            opts.Type,
		includeImages:   opts.IncludeImages,
		includeMetadata: opts.IncludeMetadata,
		fastMode:        opts.FastMode,
	}
	if opts.UseCache {
		if result, ok := s.results.Get(key); ok {
			s.logger.Debug("using cached extraction result", "path", path, "type", opts.Type)
			return result, nil
		}
	}

	var result *domain.ExtractionResult
	var err error
	if opts.Type == domain.ExtractionTypeOCR {
		result, err = s.extractOCR(ctx, path, opts, params, stats)
	} else {
		result, err = s.extractParsed(ctx, path, opts, params, stats)
	}
	if err != nil {
		return nil, err
	}

	if opts.UseCache {
		s.results.Put(key, result)
	}
	return result, nil
}

// ClearCache drops all cached extraction and OCR results.
func (s *Service) ClearCache() {
	s.results.Clear()
	s.ocr.ClearCache()
}

// SweepCaches expires stale extraction and OCR cache entries and returns how
// many were removed.
func (s *Service) SweepCaches() int {
	return s.results.Sweep() + s.ocr.SweepCache()
}

// extractParsed handles the text and structured modes, which read the
// document's encoded text layer.
func (s *Service) extractParsed(
	ctx context.Context,
	path string,
	opts domain.ExtractionOptions,
	params domain.OptimizationParameters,
	stats StatRecorder,
) (*domain.ExtractionResult, error) {
	doc, err := s.parser.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer func() { _ = doc.Close() }()

	result := &domain.ExtractionResult{
		Type:  opts.Type,
		Pages: doc.PageCount(),
	}

	switch opts.Type {
	case domain.ExtractionTypeStructured:
		result.Structured = s.extractStructured(ctx, doc, opts, params, stats)
	default:
		result.Content = s.extractText(ctx, doc, opts, params, stats)
	}

	if opts.IncludeMetadata {
		metadata, err := doc.Metadata(ctx)
		if err != nil {
			s.logger.Warn("failed to extract metadata", "path", path, "error", err)
		} else {
			result.Metadata = metadata
		}
	}
	if opts.IncludeImages {
		result.Images = s.extractImageInfo(ctx, doc)
	}

	return result, nil
}

// extractText pulls plain text per page, fanning out across the tuned
// worker budget. A failed page yields empty content rather than failing the
// batch.
func (s *Service) extractText(
	ctx context.Context,
	doc Document,
	opts domain.ExtractionOptions,
	params domain.OptimizationParameters,
	stats StatRecorder,
) []domain.PageText {
	n := doc.PageCount()
	results := pages.Map(ctx, n, pages.Options{
		Workers:         params.Workers,
		SequentialBelow: textSequentialBelow,
		FastMode:        opts.FastMode,
		Logger:          s.logger,
	}, func(ctx context.Context, i int) (domain.PageText, error) {
		text, err := doc.PageText(ctx, i+1)
		return domain.PageText{Page: i + 1, Content: text}, err
	})

	recordFailures(stats, results)

	// A failed page still occupies its slot, with empty content.
	content := make([]domain.PageText, n)
	for i, r := range results {
		content[i] = r.Value
		content[i].Page = i + 1
		if r.Err != nil {
			content[i].Content = ""
		}
	}
	return content
}

// extractStructured pulls text plus tables per page and derives the page's
// element structure.
func (s *Service) extractStructured(
	ctx context.Context,
	doc Document,
	opts domain.ExtractionOptions,
	params domain.OptimizationParameters,
	stats StatRecorder,
) []domain.StructuredPage {
	n := doc.PageCount()
	results := pages.Map(ctx, n, pages.Options{
		Workers:         params.Workers,
		SequentialBelow: structuredSequentialBelow,
		FastMode:        opts.FastMode,
		Logger:          s.logger,
	}, func(ctx context.Context, i int) (domain.StructuredPage, error) {
		text, err := doc.PageText(ctx, i+1)
		if err != nil {
			return domain.StructuredPage{Page: i + 1}, err
		}

		// Table failures degrade the page rather than failing it.
		tables, err := doc.PageTables(ctx, i+1)
		if err != nil {
			s.logger.Warn("failed to extract tables", "page", i+1, "error", err)
			tables = nil
		}

		return structurePage(i+1, text, tables), nil
	})

	recordFailures(stats, results)

	structured := make([]domain.StructuredPage, n)
	for i, r := range results {
		structured[i] = r.Value
		structured[i].Page = i + 1
	}
	return structured
}

// extractOCR rasterizes the document and recognizes each page image.
func (s *Service) extractOCR(
	ctx context.Context,
	path string,
	opts domain.ExtractionOptions,
	params domain.OptimizationParameters,
	stats StatRecorder,
) (*domain.ExtractionResult, error) {
	content, err := s.ocr.ProcessPDF(ctx, path, ProcessOptions{
		UseCache:   opts.UseCache,
		Preprocess: params.PreprocessImages && !opts.FastMode,
		FastMode:   opts.FastMode,
		DPI:        params.Resolution,
		Workers:    params.Workers,
		Language:   opts.Language,
	}, stats)
	if err != nil {
		return nil, err
	}

	return &domain.ExtractionResult{
		Type:    domain.ExtractionTypeOCR,
		Pages:   len(content),
		Content: content,
	}, nil
}

// extractImageInfo collects descriptive image info across all pages.
func (s *Service) extractImageInfo(ctx context.Context, doc Document) []domain.ImageInfo {
	var info []domain.ImageInfo
	for page := 1; page <= doc.PageCount(); page++ {
		images, err := doc.PageImages(ctx, page)
		if err != nil {
			s.logger.Warn("failed to extract image info", "page", page, "error", err)
			continue
		}
		info = append(info, images...)
	}
	return info
}

// structurePage splits page text into paragraph blocks and classifies each
// as heading or paragraph.
func structurePage(page int, text string, tables []domain.Table) domain.StructuredPage {
	var elements []domain.Element
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		elements = append(elements, domain.Element{
			Type:    classifyBlock(block),
			Content: block,
		})
	}

	return domain.StructuredPage{
		Page:     page,
		Elements: elements,
		Tables:   tables,
		RawText:  text,
	}
}

// classifyBlock applies the heading heuristic: a short block with few words
// ending in terminal punctuation is a heading, everything else a paragraph.
func classifyBlock(block string) string {
	short := len(strings.Fields(block)) <= headingMaxWords &&
		len([]rune(block)) <= headingMaxRunes
	punctuated := strings.HasSuffix(block, ".") || strings.HasSuffix(block, ":") ||
		strings.HasSuffix(block, "?") || strings.HasSuffix(block, "!")
	if short && punctuated {
		return domain.ElementTypeHeading
	}
	return domain.ElementTypeParagraph
}

// StatRecorder receives named measurements during extraction. Implemented by
// *task.Tracker; a nil recorder discards measurements.
type StatRecorder interface {
	AddPerformanceStat(name string, value float64)
}

func recordFailures[T any](stats StatRecorder, results []pages.Result[T]) {
	if stats == nil {
		return
	}
	if failed := pages.Failed(results); failed > 0 {
		stats.AddPerformanceStat("pages_failed", float64(failed))
	}
}
