package binary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDownloader(client *http.Client) *Downloader {
	d := NewDownloader(client)
	d.backoff = time.Millisecond
	return d
}

func TestDownloader_DownloadToFile(t *testing.T) {
	payload := []byte("chrome headless shell payload")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		w.Write(payload)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "nested", "file.zip")
	var lastDownloaded, lastTotal int64

	err := testDownloader(server.Client()).DownloadToFile(context.Background(), server.URL, dest, func(downloaded, total int64) {
		lastDownloaded, lastTotal = downloaded, total
	})
	require.NoError(t, err)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, content)
	assert.Equal(t, int64(len(payload)), lastDownloaded)
	assert.Equal(t, int64(len(payload)), lastTotal)
	assert.NoFileExists(t, dest+".tmp")
}

func TestDownloader_ContextCancelled(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	d := NewDownloader(server.Client())
	d.backoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := d.DownloadToFile(ctx, server.URL, filepath.Join(t.TempDir(), "f"), nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), hits.Load())
}

func TestDownloader_GivesUp(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := testDownloader(server.Client()).DownloadToFile(context.Background(), server.URL, filepath.Join(t.TempDir(), "f"), nil)

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, server.URL, netErr.URL)
	assert.Equal(t, int32(DefaultRetries+1), hits.Load())
}

func TestDownloader_DownloadArchive_ReusesCompletedDownload(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("zip"))
	}))
	defer server.Close()

	info := &DownloadInfo{
		Build:       ResolvedBuild{Platform: "linux64", BuildID: testBuildID},
		URL:         server.URL + "/a.zip",
		ArchiveName: "a.zip",
	}
	dir := t.TempDir()
	d := testDownloader(server.Client())

	first, err := d.DownloadArchive(context.Background(), info, dir, nil)
	require.NoError(t, err)

	var reported int64
	second, err := d.DownloadArchive(context.Background(), info, dir, func(downloaded, total int64) {
		reported = downloaded
	})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, int64(3), reported)
}
