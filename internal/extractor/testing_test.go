package extractor

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/phrazzld/extract-api/internal/domain"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// fakeDocument serves canned per-page content and records which pages were
// read.
type fakeDocument struct {
	pageCount int
	texts     map[int]string
	tables    map[int][]domain.Table
	images    map[int][]domain.ImageInfo
	metadata  map[string]string

	textErr   map[int]error
	tablesErr map[int]error

	mu        sync.Mutex
	textReads []int
	closed    bool
}

func (d *fakeDocument) PageCount() int { return d.pageCount }

func (d *fakeDocument) PageText(_ context.Context, page int) (string, error) {
	d.mu.Lock()
	d.textReads = append(d.textReads, page)
	d.mu.Unlock()
	if err := d.textErr[page]; err != nil {
		return "", err
	}
	return d.texts[page], nil
}

func (d *fakeDocument) PageTables(_ context.Context, page int) ([]domain.Table, error) {
	if err := d.tablesErr[page]; err != nil {
		return nil, err
	}
	return d.tables[page], nil
}

func (d *fakeDocument) PageImages(_ context.Context, page int) ([]domain.ImageInfo, error) {
	return d.images[page], nil
}

func (d *fakeDocument) Metadata(_ context.Context) (map[string]string, error) {
	return d.metadata, nil
}

func (d *fakeDocument) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

// fakeParser hands out one fakeDocument and counts opens.
type fakeParser struct {
	doc     *fakeDocument
	openErr error
	opens   atomic.Int32
}

func (p *fakeParser) Open(_ context.Context, _ string) (Document, error) {
	p.opens.Add(1)
	if p.openErr != nil {
		return nil, p.openErr
	}
	return p.doc, nil
}

// fakeRasterizer returns blank images and records the requested DPI.
type fakeRasterizer struct {
	pageCount int
	err       error

	mu       sync.Mutex
	dpis     []int
	returned []image.Image
}

func (r *fakeRasterizer) Rasterize(_ context.Context, _ string, dpi int) ([]image.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dpis = append(r.dpis, dpi)
	if r.err != nil {
		return nil, r.err
	}
	images := make([]image.Image, r.pageCount)
	for i := range images {
		images[i] = image.NewNRGBA(image.Rect(0, 0, 4, 4))
	}
	r.returned = images
	return images, nil
}

func (r *fakeRasterizer) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.dpis)
}

// fakeOCREngine returns deterministic text per call and records the inputs it
// was handed.
type fakeOCREngine struct {
	err error

	mu        sync.Mutex
	languages []string
	inputs    []image.Image
	calls     int
}

func (e *fakeOCREngine) Recognize(_ context.Context, img image.Image, language string) (string, error) {
	e.mu.Lock()
	e.calls++
	n := e.calls
	e.languages = append(e.languages, language)
	e.inputs = append(e.inputs, img)
	e.mu.Unlock()
	if e.err != nil {
		return "", e.err
	}
	return fmt.Sprintf("recognized text %d", n), nil
}

// statRecorder captures performance stats for assertions.
type statRecorder struct {
	mu    sync.Mutex
	stats map[string]float64
}

func newStatRecorder() *statRecorder {
	return &statRecorder{stats: make(map[string]float64)}
}

func (s *statRecorder) AddPerformanceStat(name string, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[name] = value
}

func (s *statRecorder) get(name string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.stats[name]
	return v, ok
}

// textDocument builds a fakeDocument whose pages carry predictable text.
func textDocument(pageCount int) *fakeDocument {
	texts := make(map[int]string, pageCount)
	for page := 1; page <= pageCount; page++ {
		texts[page] = fmt.Sprintf("content of page %d", page)
	}
	return &fakeDocument{pageCount: pageCount, texts: texts}
}
