// Package fetch resolves remote and uploaded documents into local temp
// files. Downloads are cached by URL with a TTL; a cache entry whose backing
// temp file has been removed is treated as absent.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/phrazzld/extract-api/internal/cache"
)

const (
	// downloadTimeout bounds the whole request; past it the download is
	// treated as failed.
	downloadTimeout = 30 * time.Second

	// copyBufferSize is the buffer used when streaming response bodies and
	// uploads to disk.
	copyBufferSize = 1024 * 1024

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.114 Safari/537.36"
)

// Downloader fetches remote documents with caching.
type Downloader struct {
	client  *http.Client
	cache   *cache.Cache[string, string]
	tempDir string
	logger  *slog.Logger
}

// NewDownloader creates a Downloader whose cache entries expire after ttl.
// tempDir is where downloaded files land; empty means the system default.
func NewDownloader(ttl time.Duration, tempDir string, logger *slog.Logger) *Downloader {
	return &Downloader{
		client:  &http.Client{Timeout: downloadTimeout},
		tempDir: tempDir,
		logger:  logger,
		cache: cache.New(ttl,
			cache.WithValidity[string, string](fileExists),
			cache.WithEvictFunc[string, string](func(_ string, path string) {
				// Best-effort removal of the stale temp file.
				if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
					logger.Warn("failed to remove expired download", "path", path, "error", err)
				}
			}),
		),
	}
}

// Download fetches url into a temp file and returns its path. With useCache,
// a previous live download of the same URL is returned without refetching.
func (d *Downloader) Download(ctx context.Context, url string, useCache bool) (string, error) {
	if useCache {
		if path, ok := d.cache.Get(url); ok {
			d.logger.Debug("using cached download", "url", url, "path", path)
			return path, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build download request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	d.logger.Debug("downloading file", "url", url)
	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("failed to download %s: unexpected status %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(d.tempDir, "download-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	buf := make([]byte, copyBufferSize)
	if _, err := io.CopyBuffer(tmp, resp.Body, buf); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write download to disk: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to finalize download: %w", err)
	}

	if useCache {
		d.cache.Put(url, tmp.Name())
	}
	return tmp.Name(), nil
}

// SweepExpired removes expired download cache entries (and their temp files)
// and returns how many were removed.
func (d *Downloader) SweepExpired() int {
	return d.cache.Sweep()
}

// ClearCache drops every cached download.
func (d *Downloader) ClearCache() {
	d.cache.Clear()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
