package pdf

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/disintegration/imaging"
)

// Rasterizer renders PDF pages to images with pdftoppm.
type Rasterizer struct {
	logger *slog.Logger
}

// NewRasterizer creates a Rasterizer.
func NewRasterizer(logger *slog.Logger) *Rasterizer {
	return &Rasterizer{logger: logger}
}

// Rasterize renders every page of the document at the given DPI and returns
// the page images in order.
func (r *Rasterizer) Rasterize(ctx context.Context, path string, dpi int) ([]image.Image, error) {
	tempDir, err := os.MkdirTemp("", "rasterize-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create raster temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tempDir); err != nil {
			r.logger.Warn("failed to remove raster temp dir", "error", err)
		}
	}()

	prefix := filepath.Join(tempDir, "page")
	if _, err := runCommand(ctx, "pdftoppm",
		"-png",
		"-r", strconv.Itoa(dpi),
		path, prefix); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w", err)
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list raster output: %w", err)
	}

	// pdftoppm zero-pads page numbers, so name order is page order.
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	images := make([]image.Image, 0, len(names))
	for _, name := range names {
		img, err := imaging.Open(filepath.Join(tempDir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to decode raster page %s: %w", name, err)
		}
		images = append(images, img)
	}
	return images, nil
}
