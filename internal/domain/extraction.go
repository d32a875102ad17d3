package domain

import "fmt"

// ExtractionType selects the extraction mode for a task.
type ExtractionType string

const (
	ExtractionTypeText       ExtractionType = "text"
	ExtractionTypeStructured ExtractionType = "structured"
	ExtractionTypeOCR        ExtractionType = "ocr"
)

// ParseExtractionType converts a client-supplied string into an
// ExtractionType. An empty string defaults to plain text extraction.
func ParseExtractionType(s string) (ExtractionType, error) {
	switch ExtractionType(s) {
	case ExtractionTypeText, ExtractionTypeStructured, ExtractionTypeOCR:
		return ExtractionType(s), nil
	case "":
		return ExtractionTypeText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidExtractionType, s)
	}
}

// ExtractionOptions carries the caller-selected parameters of one extraction
// job. Options participate in cache keys: two jobs with identical input and
// identical options share a cached result.
type ExtractionOptions struct {
	Type            ExtractionType
	IncludeImages   bool
	IncludeMetadata bool
	FastMode        bool
	UseCache        bool
	Language        string
}

// DocumentCharacteristics describes a document for the performance optimizer.
// It is derived by sampling at most the first three pages.
type DocumentCharacteristics struct {
	PageCount     int   `json:"page_count"`
	FileSizeBytes int64 `json:"file_size_bytes"`
	HasImages     bool  `json:"has_images"`
	HasTables     bool  `json:"has_tables"`
	IsScanned     bool  `json:"is_scanned"`
}

// AvgPageSizeBytes returns the average page size in bytes. Documents reported
// with zero pages are treated as single-page to keep the value defined.
func (c DocumentCharacteristics) AvgPageSizeBytes() float64 {
	pages := c.PageCount
	if pages < 1 {
		pages = 1
	}
	return float64(c.FileSizeBytes) / float64(pages)
}

// OptimizationParameters is the tuned parameter set produced by the
// performance optimizer for one task.
type OptimizationParameters struct {
	Workers          int  `json:"max_workers"`
	Resolution       int  `json:"optimal_dpi"`
	PreprocessImages bool `json:"preprocess_images"`
	ChunkSize        int  `json:"chunk_size"`
}

// PageText is the extracted text of a single page. Pages are numbered from 1.
type PageText struct {
	Page    int    `json:"page"`
	Content string `json:"content"`
}

// Element is a structural fragment of a page: a heading or a paragraph.
type Element struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Element type values.
const (
	ElementTypeHeading   = "heading"
	ElementTypeParagraph = "paragraph"
)

// Table is a grid of cell values extracted from a page.
type Table [][]string

// StructuredPage is the structured extraction of a single page.
type StructuredPage struct {
	Page     int       `json:"page"`
	Elements []Element `json:"elements"`
	Tables   []Table   `json:"tables"`
	RawText  string    `json:"raw_text"`
}

// ImageInfo describes an embedded image without carrying its binary data.
type ImageInfo struct {
	Page   int    `json:"page"`
	Index  int    `json:"index"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Type   string `json:"type"`
}

// ExtractionResult is the payload stored on a completed task. Content holds
// per-page text for the text and ocr modes; Structured holds per-page
// structure for the structured mode.
type ExtractionResult struct {
	Type       ExtractionType    `json:"type"`
	Pages      int               `json:"pages"`
	Content    []PageText        `json:"content,omitempty"`
	Structured []StructuredPage  `json:"structured,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Images     []ImageInfo       `json:"images,omitempty"`
}
