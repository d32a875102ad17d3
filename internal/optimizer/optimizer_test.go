package optimizer

import (
	"testing"

	"github.com/phrazzld/extract-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

// logRecorder captures decision log lines for assertions.
type logRecorder struct {
	entries []struct{ message, category string }
}

func (r *logRecorder) AddOptimizationLog(message, category string) {
	r.entries = append(r.entries, struct{ message, category string }{message, category})
}

func (r *logRecorder) categories() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.category
	}
	return out
}

func chars(pageCount int, fileSize int64, scanned bool) domain.DocumentCharacteristics {
	return domain.DocumentCharacteristics{
		PageCount:     pageCount,
		FileSizeBytes: fileSize,
		IsScanned:     scanned,
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	c := chars(3, 300_000, false)
	first := Analyze(c, 4, nil)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Analyze(c, 4, nil))
	}
}

func TestWorkerCountRules(t *testing.T) {
	cases := []struct {
		name  string
		chars domain.DocumentCharacteristics
		base  int
		want  int
	}{
		{"single page capped at two", chars(1, 10_000, false), 4, 2},
		{"small doc capped below base", chars(4, 10_000, false), 8, 2},
		{"small doc with tiny base", chars(2, 10_000, false), 1, 1},
		{"mid-size doc keeps base", chars(20, 100_000, false), 4, 4},
		{"large doc gains two", chars(60, 600_000, false), 4, 6},
		{"large doc capped at eight", chars(200, 600_000, false), 7, 8},
		{"scanned raises the floor", chars(10, 100_000, true), 4, 5},
		{"scanned never lowers a higher value", chars(60, 600_000, true), 6, 8},
		{"heavy pages subtract one", chars(10, 20 * 1024 * 1024, false), 4, 3},
		{"heavy pages floored at two", chars(10, 20 * 1024 * 1024, false), 2, 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := Analyze(tc.chars, tc.base, nil)
			assert.Equal(t, tc.want, params.Workers)
		})
	}
}

func TestDPIThresholds(t *testing.T) {
	const mib = 1024 * 1024

	// Average page size of exactly 3 MiB reduces to 200 DPI.
	assert.Equal(t, 200, Analyze(chars(10, 30*mib, false), 4, nil).Resolution)

	// Exactly 6 MiB reduces further to 150 DPI.
	assert.Equal(t, 150, Analyze(chars(10, 60*mib, false), 4, nil).Resolution)

	// Exactly 500 KiB stays at the default 300 DPI.
	assert.Equal(t, 300, Analyze(chars(10, 10*500*1024, false), 4, nil).Resolution)
}

func TestPreprocessRules(t *testing.T) {
	const mib = 1024 * 1024

	// Scanned documents preprocess unless pages are very large.
	assert.True(t, Analyze(chars(10, 10*mib, true), 4, nil).PreprocessImages)
	assert.False(t, Analyze(chars(10, 50*mib, true), 4, nil).PreprocessImages)

	// Non-scanned documents preprocess only reasonably sized pages.
	assert.True(t, Analyze(chars(10, 10*mib, false), 4, nil).PreprocessImages)
	assert.False(t, Analyze(chars(10, 30*mib, false), 4, nil).PreprocessImages)
}

func TestChunkSizeRules(t *testing.T) {
	cases := []struct {
		pageCount int
		want      int
	}{
		{1, 1},
		{19, 19},
		{20, 10},
		{49, 10},
		{50, 20},
		{99, 20},
		{100, 30},
		{500, 30},
	}
	for _, tc := range cases {
		params := Analyze(chars(tc.pageCount, 100_000, false), 4, nil)
		assert.Equal(t, tc.want, params.ChunkSize, "page count %d", tc.pageCount)
	}
}

func TestScannedDocumentScenario(t *testing.T) {
	// 60-page scanned document of 60 MiB: 1 MiB average page size.
	c := domain.DocumentCharacteristics{
		PageCount:     60,
		FileSizeBytes: 60 * 1024 * 1024,
		HasImages:     true,
		IsScanned:     true,
	}
	params := Analyze(c, 4, nil)

	// page_count > 50 raises to base+2, and the scanned floor min(base+1, 6)
	// does not lower it. Average page size is exactly 1 MiB, not above it.
	assert.Equal(t, 6, params.Workers)
	assert.Equal(t, 300, params.Resolution)
	assert.True(t, params.PreprocessImages)
	assert.Equal(t, 20, params.ChunkSize)
}

func TestAnalyzeLogsDecisions(t *testing.T) {
	rec := &logRecorder{}
	withLog := Analyze(chars(60, 60*1024*1024, true), 4, rec)

	assert.Equal(t, []string{
		CategoryWorker,
		CategoryDPI,
		CategoryPreprocessing,
		CategoryChunking,
	}, rec.categories())

	// Logging is observational only.
	assert.Equal(t, Analyze(chars(60, 60*1024*1024, true), 4, nil), withLog)
}

func TestAnalyzeDefaultsInvalidBaseWorkers(t *testing.T) {
	params := Analyze(chars(20, 100_000, false), 0, nil)
	assert.Equal(t, DefaultBaseWorkers, params.Workers)
}
