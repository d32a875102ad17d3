package extractor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/extract-api/internal/domain"
)

func newTestService(parser Parser) *Service {
	ocr := NewOCRService(&fakeRasterizer{}, &fakeOCREngine{}, time.Hour, setupTestLogger())
	return NewService(parser, ocr, time.Hour, setupTestLogger())
}

func defaultParams() domain.OptimizationParameters {
	return domain.OptimizationParameters{Workers: 4, Resolution: 300, ChunkSize: 10}
}

func TestExtractTextOrdered(t *testing.T) {
	parser := &fakeParser{doc: textDocument(8)}
	svc := newTestService(parser)

	result, err := svc.Extract(context.Background(), "/tmp/in.pdf",
		domain.ExtractionOptions{Type: domain.ExtractionTypeText}, defaultParams(), nil)
	require.NoError(t, err)

	assert.Equal(t, domain.ExtractionTypeText, result.Type)
	assert.Equal(t, 8, result.Pages)
	require.Len(t, result.Content, 8)
	for i, page := range result.Content {
		assert.Equal(t, i+1, page.Page)
		assert.Equal(t, fmt.Sprintf("content of page %d", i+1), page.Content)
	}
	assert.Nil(t, result.Metadata)
	assert.Nil(t, result.Images)
}

func TestExtractTextFailedPageYieldsEmptyContent(t *testing.T) {
	doc := textDocument(10)
	doc.textErr = map[int]error{3: errors.New("damaged page"), 7: errors.New("damaged page")}
	parser := &fakeParser{doc: doc}
	svc := newTestService(parser)
	stats := newStatRecorder()

	result, err := svc.Extract(context.Background(), "/tmp/in.pdf",
		domain.ExtractionOptions{Type: domain.ExtractionTypeText}, defaultParams(), stats)
	require.NoError(t, err)

	require.Len(t, result.Content, 10)
	assert.Empty(t, result.Content[2].Content)
	assert.Empty(t, result.Content[6].Content)
	assert.Equal(t, "content of page 4", result.Content[3].Content)

	failed, ok := stats.get("pages_failed")
	require.True(t, ok)
	assert.Equal(t, 2.0, failed)
}

func TestExtractStructuredElements(t *testing.T) {
	doc := &fakeDocument{
		pageCount: 1,
		texts: map[int]string{
			1: "Chapter 1: Introduction.\n\nThis opening paragraph runs on long enough, with more than eight words in it, that the classifier must treat it as body text\n\n\n\nSummary:",
		},
		tables: map[int][]domain.Table{
			1: {{{"h1", "h2"}, {"a", "b"}}},
		},
	}
	svc := newTestService(&fakeParser{doc: doc})

	result, err := svc.Extract(context.Background(), "/tmp/in.pdf",
		domain.ExtractionOptions{Type: domain.ExtractionTypeStructured}, defaultParams(), nil)
	require.NoError(t, err)

	assert.Equal(t, domain.ExtractionTypeStructured, result.Type)
	require.Len(t, result.Structured, 1)
	page := result.Structured[0]
	assert.Equal(t, 1, page.Page)

	require.Len(t, page.Elements, 3)
	assert.Equal(t, domain.ElementTypeHeading, page.Elements[0].Type)
	assert.Equal(t, "Chapter 1: Introduction.", page.Elements[0].Content)
	assert.Equal(t, domain.ElementTypeParagraph, page.Elements[1].Type)
	assert.Equal(t, domain.ElementTypeHeading, page.Elements[2].Type)

	require.Len(t, page.Tables, 1)
	assert.Equal(t, "h2", page.Tables[0][0][1])
	assert.Equal(t, doc.texts[1], page.RawText)
}

func TestClassifyBlock(t *testing.T) {
	tests := []struct {
		block string
		want  string
	}{
		{"Introduction:", domain.ElementTypeHeading},
		{"What is this about?", domain.ElementTypeHeading},
		{"Short line with no terminal punctuation", domain.ElementTypeParagraph},
		{"A sentence that keeps going well past the eight word limit set above.", domain.ElementTypeParagraph},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, classifyBlock(tc.block), "block %q", tc.block)
	}
}

func TestExtractStructuredTableFailureDegrades(t *testing.T) {
	doc := textDocument(2)
	doc.tablesErr = map[int]error{2: errors.New("table detection failed")}
	svc := newTestService(&fakeParser{doc: doc})

	result, err := svc.Extract(context.Background(), "/tmp/in.pdf",
		domain.ExtractionOptions{Type: domain.ExtractionTypeStructured}, defaultParams(), nil)
	require.NoError(t, err)

	require.Len(t, result.Structured, 2)
	assert.Empty(t, result.Structured[1].Tables)
	assert.NotEmpty(t, result.Structured[1].RawText)
}

func TestExtractMetadataAndImages(t *testing.T) {
	doc := textDocument(2)
	doc.metadata = map[string]string{"Title": "Quarterly Report", "Author": "Ops"}
	doc.images = map[int][]domain.ImageInfo{
		1: {{Page: 1, Index: 0, Width: 640, Height: 480, Type: "image"}},
		2: {{Page: 2, Index: 0, Width: 100, Height: 100, Type: "image"}},
	}
	svc := newTestService(&fakeParser{doc: doc})

	result, err := svc.Extract(context.Background(), "/tmp/in.pdf", domain.ExtractionOptions{
		Type:            domain.ExtractionTypeText,
		IncludeImages:   true,
		IncludeMetadata: true,
	}, defaultParams(), nil)
	require.NoError(t, err)

	assert.Equal(t, "Quarterly Report", result.Metadata["Title"])
	require.Len(t, result.Images, 2)
	assert.Equal(t, 640, result.Images[0].Width)
}

func TestExtractUsesResultCache(t *testing.T) {
	parser := &fakeParser{doc: textDocument(3)}
	svc := newTestService(parser)
	opts := domain.ExtractionOptions{Type: domain.ExtractionTypeText, UseCache: true}

	first, err := svc.Extract(context.Background(), "/tmp/in.pdf", opts, defaultParams(), nil)
	require.NoError(t, err)
	second, err := svc.Extract(context.Background(), "/tmp/in.pdf", opts, defaultParams(), nil)
	require.NoError(t, err)

	assert.Equal(t, int32(1), parser.opens.Load())
	assert.Equal(t, first, second)

	// A different parameter set misses the cache.
	opts.IncludeMetadata = true
	_, err = svc.Extract(context.Background(), "/tmp/in.pdf", opts, defaultParams(), nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), parser.opens.Load())
}

func TestExtractCacheDisabled(t *testing.T) {
	parser := &fakeParser{doc: textDocument(3)}
	svc := newTestService(parser)
	opts := domain.ExtractionOptions{Type: domain.ExtractionTypeText, UseCache: false}

	_, err := svc.Extract(context.Background(), "/tmp/in.pdf", opts, defaultParams(), nil)
	require.NoError(t, err)
	_, err = svc.Extract(context.Background(), "/tmp/in.pdf", opts, defaultParams(), nil)
	require.NoError(t, err)

	assert.Equal(t, int32(2), parser.opens.Load())
}

func TestExtractClearCache(t *testing.T) {
	parser := &fakeParser{doc: textDocument(3)}
	svc := newTestService(parser)
	opts := domain.ExtractionOptions{Type: domain.ExtractionTypeText, UseCache: true}

	_, err := svc.Extract(context.Background(), "/tmp/in.pdf", opts, defaultParams(), nil)
	require.NoError(t, err)
	svc.ClearCache()
	_, err = svc.Extract(context.Background(), "/tmp/in.pdf", opts, defaultParams(), nil)
	require.NoError(t, err)

	assert.Equal(t, int32(2), parser.opens.Load())
}

func TestExtractOpenFailure(t *testing.T) {
	parser := &fakeParser{openErr: errors.New("not a PDF")}
	svc := newTestService(parser)

	_, err := svc.Extract(context.Background(), "/tmp/in.pdf",
		domain.ExtractionOptions{Type: domain.ExtractionTypeText}, defaultParams(), nil)
	assert.ErrorContains(t, err, "failed to open document")
}
