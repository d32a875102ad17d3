package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/extract-api/internal/cache"
	"github.com/phrazzld/extract-api/internal/domain"
	"github.com/phrazzld/extract-api/internal/pages"
)

const (
	// DefaultOCRLanguage is used when a request does not name one.
	DefaultOCRLanguage = "eng"

	// fastModeDPI overrides the tuned resolution when fast mode is on.
	fastModeDPI = 150
)

// ocrKey identifies one cached OCR run: the input plus every knob that
// changes recognition output.
type ocrKey struct {
	path       string
	dpi        int
	language   string
	preprocess bool
}

// ProcessOptions carries the per-run knobs for OCR processing.
type ProcessOptions struct {
	UseCache   bool
	Preprocess bool
	FastMode   bool
	DPI        int
	Workers    int
	Language   string
}

// OCRService rasterizes documents and recognizes page text in parallel,
// caching results per input+parameters.
type OCRService struct {
	rasterizer Rasterizer
	engine     OCREngine
	logger     *slog.Logger

	results *cache.Cache[ocrKey, []domain.PageText]
}

// NewOCRService creates an OCRService. Cached results expire after ttl.
func NewOCRService(rasterizer Rasterizer, engine OCREngine, ttl time.Duration, logger *slog.Logger) *OCRService {
	return &OCRService{
		rasterizer: rasterizer,
		engine:     engine,
		logger:     logger,
		results:    cache.New[ocrKey, []domain.PageText](ttl),
	}
}

// ProcessPDF recognizes every page of the document at path and returns the
// per-page text in page order. A page whose recognition fails contributes
// empty content rather than failing the run.
func (s *OCRService) ProcessPDF(ctx context.Context, path string, opts ProcessOptions, stats StatRecorder) ([]domain.PageText, error) {
	dpi := opts.DPI
	if opts.FastMode {
		dpi = fastModeDPI
	}
	language := opts.Language
	if language == "" {
		language = DefaultOCRLanguage
	}

	key := ocrKey{path: path, dpi: dpi, language: language, preprocess: opts.Preprocess}
	if opts.UseCache {
		if content, ok := s.results.Get(key); ok {
			s.logger.Debug("using cached OCR result", "path", path, "dpi", dpi)
			return content, nil
		}
	}

	s.logger.Debug("rasterizing document", "path", path, "dpi", dpi)
	images, err := s.rasterizer.Rasterize(ctx, path, dpi)
	if err != nil {
		return nil, fmt.Errorf("failed to rasterize document: %w", err)
	}

	results := pages.Map(ctx, len(images), pages.Options{
		Workers:  opts.Workers,
		FastMode: opts.FastMode,
		Logger:   s.logger,
	}, func(ctx context.Context, i int) (domain.PageText, error) {
		img := images[i]
		if opts.Preprocess {
			img = PreprocessImage(img)
		}
		text, err := s.engine.Recognize(ctx, img, language)
		return domain.PageText{Page: i + 1, Content: text}, err
	})

	recordFailures(stats, results)

	content := make([]domain.PageText, len(images))
	for i, r := range results {
		content[i] = r.Value
		content[i].Page = i + 1
		if r.Err != nil {
			s.logger.Error("OCR failed for page", "page", i+1, "error", r.Err)
			content[i].Content = ""
		}
	}

	if opts.UseCache {
		s.results.Put(key, content)
	}
	return content, nil
}

// ClearCache drops all cached OCR results.
func (s *OCRService) ClearCache() {
	s.results.Clear()
}

// SweepCache expires stale OCR cache entries and returns how many were
// removed.
func (s *OCRService) SweepCache() int {
	return s.results.Sweep()
}
