package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseExtractionType(t *testing.T) {
	cases := []struct {
		input   string
		want    ExtractionType
		wantErr bool
	}{
		{"text", ExtractionTypeText, false},
		{"structured", ExtractionTypeStructured, false},
		{"ocr", ExtractionTypeOCR, false},
		{"", ExtractionTypeText, false},
		{"markdown", "", true},
	}

	for _, tc := range cases {
		got, err := ParseExtractionType(tc.input)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.input)
			assert.ErrorIs(t, err, ErrInvalidExtractionType)
		} else {
			assert.NoError(t, err, "input %q", tc.input)
			assert.Equal(t, tc.want, got)
		}
	}
}

func TestAvgPageSizeBytes(t *testing.T) {
	c := DocumentCharacteristics{PageCount: 10, FileSizeBytes: 10 * 1024 * 1024}
	assert.InDelta(t, 1024*1024, c.AvgPageSizeBytes(), 0.001)

	// A zero-page document must not divide by zero.
	empty := DocumentCharacteristics{PageCount: 0, FileSizeBytes: 4096}
	assert.InDelta(t, 4096, empty.AvgPageSizeBytes(), 0.001)
}

func TestTaskStatusTerminal(t *testing.T) {
	assert.True(t, TaskStatusCompleted.Terminal())
	assert.True(t, TaskStatusError.Terminal())
	assert.False(t, TaskStatusInitializing.Terminal())
	assert.False(t, TaskStatusProcessing.Terminal())
	assert.False(t, TaskStatusNotFound.Terminal())
}
