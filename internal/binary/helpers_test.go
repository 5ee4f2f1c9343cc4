package binary

import (
	"archive/zip"
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ZebulonRouseFrantzich/browserctl/internal/platform"
	"github.com/ZebulonRouseFrantzich/browserctl/internal/testutil"
)

const testBuildID = "131.0.6778.85"

type zipEntry struct {
	name string
	body string
	mode os.FileMode
}

func makeZip(t *testing.T, entries []zipEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.name, Method: zip.Deflate}
		hdr.SetMode(e.mode)
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", e.name, err)
		}
		if e.mode.IsDir() {
			continue
		}
		if _, err := w.Write([]byte(e.body)); err != nil {
			t.Fatalf("write zip entry %s: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// browserZip builds an archive laid out like a real headless shell build.
func browserZip(t *testing.T, p platform.BrowserPlatform) []byte {
	t.Helper()
	dir := fmt.Sprintf("%s-%s/", BrowserName, p)
	return makeZip(t, []zipEntry{
		{name: dir, mode: os.ModeDir | 0755},
		{name: executableRelPath(p), body: "#!/bin/sh\nexit 0\n", mode: 0755},
		{name: dir + "LICENSE.headless_shell", body: "license", mode: 0644},
	})
}

// fakeCDN serves a versions document and build archives.
type fakeCDN struct {
	*httptest.Server

	mu             sync.Mutex
	version        string
	archive        []byte
	versionsStatus int
	archiveStatus  []int // consumed one per archive request; 200 once empty

	versionsHits atomic.Int32
	archiveHits  atomic.Int32
}

func newFakeCDN(t *testing.T, archive []byte) *fakeCDN {
	t.Helper()
	cdn := &fakeCDN{version: testBuildID, archive: archive, versionsStatus: http.StatusOK}

	mux := http.NewServeMux()
	mux.HandleFunc("/versions.json", func(w http.ResponseWriter, r *http.Request) {
		cdn.versionsHits.Add(1)
		cdn.mu.Lock()
		status, version := cdn.versionsStatus, cdn.version
		cdn.mu.Unlock()
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"timestamp":"2024-11-20T09:09:12.071Z","channels":{`+
			`"Stable":{"channel":"Stable","version":%q,"revision":"1368529"},`+
			`"Beta":{"channel":"Beta","version":"132.0.6834.32","revision":"1381561"}}}`, version)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		cdn.archiveHits.Add(1)
		cdn.mu.Lock()
		status := http.StatusOK
		if len(cdn.archiveStatus) > 0 {
			status = cdn.archiveStatus[0]
			cdn.archiveStatus = cdn.archiveStatus[1:]
		}
		want := fmt.Sprintf("/%s/%s/%s-%s.zip", cdn.version, platform.Linux64, BrowserName, platform.Linux64)
		body := cdn.archive
		cdn.mu.Unlock()

		if r.URL.Path != want {
			http.NotFound(w, r)
			return
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.Write(body)
	})

	cdn.Server = httptest.NewServer(mux)
	t.Cleanup(cdn.Close)
	return cdn
}

func (c *fakeCDN) setVersion(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version = v
}

func (c *fakeCDN) setArchive(archive []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.archive = archive
}

func (c *fakeCDN) setVersionsStatus(status int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versionsStatus = status
}

func (c *fakeCDN) failArchive(statuses ...int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.archiveStatus = append(c.archiveStatus, statuses...)
}

// recordingDisplay records what a download rendered.
type recordingDisplay struct {
	mu       sync.Mutex
	created  int
	total    int64
	deltas   []int64
	finished bool
}

func (d *recordingDisplay) factory() DisplayFactory {
	return func(total int64) ProgressDisplay {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.created++
		d.total = total
		return d
	}
}

func (d *recordingDisplay) Advance(delta int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deltas = append(d.deltas, delta)
}

func (d *recordingDisplay) Finish() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.finished = true
}

func (d *recordingDisplay) sum() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	var n int64
	for _, delta := range d.deltas {
		n += delta
	}
	return n
}

type testManager struct {
	*Manager
	cacheDir string
	display  *recordingDisplay
	logger   *testutil.RecordingLogger
}

func newTestManager(t *testing.T, cdn *fakeCDN) *testManager {
	t.Helper()

	cacheDir := t.TempDir()
	display := &recordingDisplay{}
	logger := &testutil.RecordingLogger{}

	mgr, err := NewManager(Config{
		CacheDir:        cacheDir,
		VersionsURL:     cdn.URL + "/versions.json",
		DownloadBaseURL: cdn.URL,
		Detector:        testutil.Linux64(),
		HTTPClient:      cdn.Client(),
		Display:         display.factory(),
		RetryBackoff:    time.Millisecond,
		Logger:          logger,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return &testManager{Manager: mgr, cacheDir: cacheDir, display: display, logger: logger}
}

// seedBuild creates an unpacked build directly in the cache.
func seedBuild(t *testing.T, cacheDir string, p platform.BrowserPlatform, buildID string) string {
	t.Helper()
	dir := filepath.Join(cacheDir, BrowserName, buildDirName(p, buildID))
	exec := filepath.Join(dir, filepath.FromSlash(executableRelPath(p)))
	if err := os.MkdirAll(filepath.Dir(exec), 0755); err != nil {
		t.Fatalf("seed build: %v", err)
	}
	if err := os.WriteFile(exec, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatalf("seed build: %v", err)
	}
	return dir
}
