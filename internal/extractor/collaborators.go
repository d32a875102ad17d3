package extractor

import (
	"context"
	"image"

	"github.com/phrazzld/extract-api/internal/domain"
)

// Parser opens a document on disk for page-level access. Implementations
// wrap a document-parsing library; the extraction engine never inspects PDF
// internals itself.
type Parser interface {
	Open(ctx context.Context, path string) (Document, error)
}

// Document gives page-level access to an open document. Pages are numbered
// from 1. Implementations need not be safe for concurrent use of the same
// page, but distinct pages may be read concurrently by the page processor.
type Document interface {
	// PageCount returns the number of pages.
	PageCount() int

	// PageText returns the encoded text of one page; empty when the page
	// carries no text layer.
	PageText(ctx context.Context, page int) (string, error)

	// PageTables returns the tables detected on one page.
	PageTables(ctx context.Context, page int) ([]domain.Table, error)

	// PageImages returns descriptive info for the images embedded in one
	// page, without their binary data.
	PageImages(ctx context.Context, page int) ([]domain.ImageInfo, error)

	// Metadata returns the document-level metadata entries.
	Metadata(ctx context.Context) (map[string]string, error)

	// Close releases resources held by the open document.
	Close() error
}

// Rasterizer renders a document into one image per page at the given
// resolution.
type Rasterizer interface {
	Rasterize(ctx context.Context, path string, dpi int) ([]image.Image, error)
}

// OCREngine recognizes text in a rasterized page image.
type OCREngine interface {
	Recognize(ctx context.Context, img image.Image, language string) (string, error)
}
