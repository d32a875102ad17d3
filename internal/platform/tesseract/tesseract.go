// Package tesseract wraps the tesseract CLI as an OCR engine.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Engine recognizes text in page images by shelling out to tesseract, which
// must be installed on the host along with the requested language packs.
type Engine struct {
	logger *slog.Logger
}

// New creates an Engine.
func New(logger *slog.Logger) *Engine {
	return &Engine{logger: logger}
}

// Recognize OCRs one page image in the given language.
func (e *Engine) Recognize(ctx context.Context, img image.Image, language string) (string, error) {
	tempDir, err := os.MkdirTemp("", "ocr-*")
	if err != nil {
		return "", fmt.Errorf("failed to create OCR temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tempDir); err != nil {
			e.logger.Warn("failed to remove OCR temp dir", "error", err)
		}
	}()

	inputPath := filepath.Join(tempDir, "page.png")
	if err := imaging.Save(img, inputPath); err != nil {
		return "", fmt.Errorf("failed to write OCR input image: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "tesseract", inputPath, "stdout", "-l", language)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("tesseract: %v: %s", err, msg)
		}
		return "", fmt.Errorf("tesseract: %w", err)
	}

	return stdout.String(), nil
}
