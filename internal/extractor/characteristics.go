package extractor

import (
	"context"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/phrazzld/extract-api/internal/domain"
)

const (
	// characteristicsSampleSize bounds how many leading pages are inspected
	// when deriving document characteristics.
	characteristicsSampleSize = 3

	// scannedTextThreshold is the first-page text length below which a
	// document with images is considered a scan.
	scannedTextThreshold = 100
)

// AnalyzeDocument derives the characteristics the optimizer needs by
// sampling at most the first few pages. Sampling failures degrade the
// characteristics rather than failing the analysis: a page whose text or
// images cannot be read simply contributes nothing.
func AnalyzeDocument(ctx context.Context, doc Document, path string, logger *slog.Logger) domain.DocumentCharacteristics {
	chars := domain.DocumentCharacteristics{
		PageCount: doc.PageCount(),
	}

	if info, err := os.Stat(path); err == nil {
		chars.FileSizeBytes = info.Size()
	} else {
		logger.Warn("failed to stat document", "path", path, "error", err)
	}

	sample := chars.PageCount
	if sample > characteristicsSampleSize {
		sample = characteristicsSampleSize
	}

	var firstPageText string
	for page := 1; page <= sample; page++ {
		text, err := doc.PageText(ctx, page)
		if err != nil {
			logger.Warn("failed to sample page text", "page", page, "error", err)
		} else if page == 1 {
			firstPageText = text
		}

		if !chars.HasImages {
			if images, err := doc.PageImages(ctx, page); err == nil && len(images) > 0 {
				chars.HasImages = true
			}
		}
		if !chars.HasTables {
			if tables, err := doc.PageTables(ctx, page); err == nil && len(tables) > 0 {
				chars.HasTables = true
			}
		}
	}

	// Scanned-document heuristic: pages are raster images when the document
	// has images and the first page carries no meaningful text layer.
	chars.IsScanned = chars.HasImages &&
		(firstPageText == "" || utf8.RuneCountInString(firstPageText) < scannedTextThreshold)

	return chars
}
