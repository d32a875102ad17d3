// Package pdf provides the default document collaborators: a pdfcpu-backed
// parser with poppler-utils doing per-page content work, and a pdftoppm
// rasterizer. The extraction engine only sees the collaborator interfaces.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/phrazzld/extract-api/internal/domain"
	"github.com/phrazzld/extract-api/internal/extractor"
)

// Parser opens PDF documents for page-level access. Validation and page
// counting go through pdfcpu; page text, images, and metadata shell out to
// poppler-utils, which must be installed on the host.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a Parser.
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger}
}

// Validate checks that the file at path is a readable PDF. Validation is
// relaxed: real-world documents frequently bend the spec without being
// unprocessable.
func Validate(path string) error {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(path, cfg); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnsupportedDocument, err)
	}
	return nil
}

// Open validates the document and returns a page-level handle.
func (p *Parser) Open(_ context.Context, path string) (extractor.Document, error) {
	if err := Validate(path); err != nil {
		return nil, err
	}
	pageCount, err := api.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}
	return &document{path: path, pageCount: pageCount, logger: p.logger}, nil
}

type document struct {
	path      string
	pageCount int
	logger    *slog.Logger
}

func (d *document) PageCount() int { return d.pageCount }

// PageText extracts one page's text layer with pdftotext. The trailing form
// feed pdftotext appends per page is stripped.
func (d *document) PageText(ctx context.Context, page int) (string, error) {
	out, err := runCommand(ctx, "pdftotext",
		"-f", strconv.Itoa(page),
		"-l", strconv.Itoa(page),
		d.path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext failed for page %d: %w", page, err)
	}
	return strings.TrimRight(string(out), "\f\n"), nil
}

// PageTables reports no tables: poppler has no table detection. A richer
// Document implementation can be swapped in without touching the engine.
func (d *document) PageTables(_ context.Context, _ int) ([]domain.Table, error) {
	return nil, nil
}

// PageImages lists the images embedded in one page via pdfimages.
func (d *document) PageImages(ctx context.Context, page int) ([]domain.ImageInfo, error) {
	out, err := runCommand(ctx, "pdfimages",
		"-list",
		"-f", strconv.Itoa(page),
		"-l", strconv.Itoa(page),
		d.path)
	if err != nil {
		return nil, fmt.Errorf("pdfimages failed for page %d: %w", page, err)
	}
	return parseImageList(string(out), page), nil
}

// Metadata reads the document info dictionary via pdfinfo.
func (d *document) Metadata(ctx context.Context) (map[string]string, error) {
	out, err := runCommand(ctx, "pdfinfo", d.path)
	if err != nil {
		return nil, fmt.Errorf("pdfinfo failed: %w", err)
	}
	return parseInfo(string(out)), nil
}

// Close is a no-op: the handle holds no resources beyond the path.
func (d *document) Close() error { return nil }

// runCommand executes a CLI tool, folding stderr into the returned error.
func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %v: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return stdout.Bytes(), nil
}

// parseImageList turns `pdfimages -list` output into image info entries.
// The output is a fixed-column table with a two-line header:
//
//	page   num  type   width height color comp bpc  enc interp  object ID x-ppi y-ppi size ratio
//	--------------------------------------------------------------------------------------------
//	   1     0 image    2480  3508  rgb     3   8  jpeg   no        10  0   300   300  213K 2.9%
func parseImageList(out string, page int) []domain.ImageInfo {
	var images []domain.ImageInfo
	index := 0
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		if _, err := strconv.Atoi(fields[0]); err != nil {
			continue // header or separator line
		}
		width, werr := strconv.Atoi(fields[3])
		height, herr := strconv.Atoi(fields[4])
		if werr != nil || herr != nil {
			continue
		}
		images = append(images, domain.ImageInfo{
			Page:   page,
			Index:  index,
			Width:  width,
			Height: height,
			Type:   fields[2],
		})
		index++
	}
	return images
}

// parseInfo turns `pdfinfo` key/value output into a metadata map.
func parseInfo(out string) map[string]string {
	metadata := make(map[string]string)
	for _, line := range strings.Split(out, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key != "" && value != "" {
			metadata[key] = value
		}
	}
	return metadata
}
