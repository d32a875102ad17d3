package fetch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// SaveUpload streams an uploaded file to a temp file in dir and returns its
// path. The caller owns the file and is responsible for removing it.
func SaveUpload(dir string, src io.Reader, filename string) (string, error) {
	suffix := filepath.Ext(filename)
	if suffix == "" {
		suffix = ".pdf"
	}

	tmp, err := os.CreateTemp(dir, "upload-*"+suffix)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	buf := make([]byte, copyBufferSize)
	if _, err := io.CopyBuffer(tmp, src, buf); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to save upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to finalize upload: %w", err)
	}

	return tmp.Name(), nil
}

// CopyToTemp duplicates an existing file into a fresh temp file in dir and
// returns the copy's path. Used when a shared cached file must outlive a
// consumer that deletes its input when done.
func CopyToTemp(dir, srcPath string) (string, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("failed to open source file: %w", err)
	}
	defer func() { _ = src.Close() }()

	return SaveUpload(dir, src, filepath.Base(srcPath))
}
