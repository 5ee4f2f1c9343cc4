package binary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Minute
	// DefaultRetries is the default number of download retries
	DefaultRetries = 3
	// DefaultRetryBackoff is the first retry delay; it doubles per attempt
	DefaultRetryBackoff = time.Second
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = "browserctl/1.0"
)

// statusError is a non-200 response. 4xx responses are not retried.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.code)
}

func (e *statusError) retryable() bool {
	return e.code >= 500 || e.code == http.StatusTooManyRequests
}

// newHTTPClient returns a client that honors HTTP_PROXY, HTTPS_PROXY and NO_PROXY.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: DefaultTimeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}
}

// Downloader handles HTTP downloads with retry logic
type Downloader struct {
	client    *http.Client
	userAgent string
	retries   int
	backoff   time.Duration
}

// NewDownloader creates a new downloader. A nil client uses a
// proxy-aware default.
func NewDownloader(client *http.Client) *Downloader {
	if client == nil {
		client = newHTTPClient()
	}
	return &Downloader{
		client:    client,
		userAgent: DefaultUserAgent,
		retries:   DefaultRetries,
		backoff:   DefaultRetryBackoff,
	}
}

// DownloadToFile downloads a URL to a specific file path. Failures are
// reported as *NetworkError.
func (d *Downloader) DownloadToFile(ctx context.Context, url, destPath string, progress ProgressFunc) error {
	var lastErr error

	for attempt := 0; attempt <= d.retries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := time.Duration(1<<uint(attempt-1)) * d.backoff
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := d.downloadOnce(ctx, url, destPath, progress)
		if err == nil {
			return nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
		var se *statusError
		if errors.As(err, &se) && !se.retryable() {
			return &NetworkError{Op: "download", URL: url, Err: err}
		}
	}

	return &NetworkError{
		Op:  "download",
		URL: url,
		Err: fmt.Errorf("failed after %d retries: %w", d.retries, lastErr),
	}
}

// downloadOnce performs a single download attempt
func (d *Downloader) downloadOnce(ctx context.Context, url, destPath string, progress ProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &statusError{code: resp.StatusCode}
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	tmpPath := destPath + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	var body io.Reader = resp.Body
	if progress != nil {
		body = io.TeeReader(resp.Body, &countingWriter{total: resp.ContentLength, report: progress})
	}

	if _, err := io.Copy(tmpFile, body); err != nil {
		return fmt.Errorf("copy response body: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	cleanupNeeded = false
	return nil
}

// DownloadArchive downloads a build archive into dir, reusing a
// previously completed download of the same build.
func (d *Downloader) DownloadArchive(ctx context.Context, info *DownloadInfo, dir string, progress ProgressFunc) (string, error) {
	if info == nil {
		return "", fmt.Errorf("download info is nil")
	}

	archivePath := filepath.Join(dir, info.Build.String(), info.ArchiveName)

	if fileExists(archivePath) {
		if progress != nil {
			if st, err := os.Stat(archivePath); err == nil {
				progress(st.Size(), st.Size())
			}
		}
		return archivePath, nil
	}

	if err := d.DownloadToFile(ctx, info.URL, archivePath, progress); err != nil {
		return "", err
	}

	return archivePath, nil
}

// countingWriter reports cumulative bytes written through it.
type countingWriter struct {
	written int64
	total   int64
	report  ProgressFunc
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.written += int64(len(p))
	w.report(w.written, w.total)
	return len(p), nil
}

// fileExists checks if a file exists and is not empty
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}
