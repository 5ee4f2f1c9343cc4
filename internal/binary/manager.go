package binary

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ZebulonRouseFrantzich/browserctl/internal/logging"
	"github.com/ZebulonRouseFrantzich/browserctl/internal/platform"
	"github.com/ZebulonRouseFrantzich/browserctl/internal/transaction"
)

const (
	downloadsDirName = "downloads"
	installLockName  = "install.lock"
)

// Manager owns the browser cache: lookup, install and eviction.
type Manager struct {
	cacheDir     string
	browserDir   string
	downloadDir  string
	downloadBase string
	resolver     *Resolver
	downloader   *Downloader
	extractor    *Extractor
	newDisplay   DisplayFactory
	logger       logging.Logger

	mu    sync.Mutex
	local *InstalledBrowser // last known installed browser, set at most once

	evictions sync.WaitGroup
}

// Config holds configuration for the browser cache manager
type Config struct {
	// CacheDir is the cache root (required)
	CacheDir string
	// Channel is a release channel or a pinned build id (default: stable)
	Channel string
	// DownloadBaseURL overrides DefaultDownloadBaseURL
	DownloadBaseURL string
	// VersionsURL overrides DefaultVersionsURL
	VersionsURL string
	// Detector detects the host platform (default: platform.NewDetector())
	Detector platform.Detector
	// HTTPClient is used for resolution and downloads (default: proxy-aware client)
	HTTPClient *http.Client
	// Display renders download progress (default: no output)
	Display DisplayFactory
	// RetryBackoff overrides DefaultRetryBackoff
	RetryBackoff time.Duration
	Logger       logging.Logger
}

// NewManager creates a new cache manager
func NewManager(config Config) (*Manager, error) {
	if config.CacheDir == "" {
		return nil, fmt.Errorf("CacheDir is required")
	}

	logger := logging.OrNoop(config.Logger)
	downloader := NewDownloader(config.HTTPClient)
	if config.RetryBackoff > 0 {
		downloader.backoff = config.RetryBackoff
	}

	return &Manager{
		cacheDir:     config.CacheDir,
		browserDir:   filepath.Join(config.CacheDir, BrowserName),
		downloadDir:  filepath.Join(config.CacheDir, downloadsDirName),
		downloadBase: config.DownloadBaseURL,
		resolver:     NewResolver(config.VersionsURL, config.Channel, config.HTTPClient, config.Detector, logger),
		downloader:   downloader,
		extractor:    NewExtractor(),
		newDisplay:   config.Display,
		logger:       logger,
	}, nil
}

// CacheDir returns the cache root.
func (m *Manager) CacheDir() string {
	return m.cacheDir
}

// Resolve returns the preferred build for this host.
func (m *Manager) Resolve(ctx context.Context) (ResolvedBuild, error) {
	return m.resolver.Resolve(ctx)
}

// LookupInstalled returns the cached browser matching the preferred build,
// or nil when there is none. Once a browser has been found it is memoized
// and returned without touching the disk again.
//
// Builds other than the preferred one are removed in the background; use
// WaitEvictions to join that work. When the preferred build cannot be
// resolved (offline) nothing is evicted and the first cached build is used.
func (m *Manager) LookupInstalled(ctx context.Context) (*InstalledBrowser, error) {
	if rec := m.memo(); rec != nil {
		return rec, nil
	}

	records, err := m.Installed()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	build, err := m.resolver.Resolve(ctx)
	if err != nil {
		m.logger.Warn("could not resolve preferred build, skipping cache cleanup", "error", err)
		return m.remember(&records[0]), nil
	}

	m.evictInBackground(staleRecords(records, build))

	for i := range records {
		if records[i].Matches(build) {
			return m.remember(&records[i]), nil
		}
	}
	return nil, nil
}

// Install downloads and unpacks the preferred build and returns it. The
// memo keeps the first browser ever found, so LookupInstalled is unaffected. Concurrent installs,
// in this or another process, are serialized by a lock file in the cache
// root; a build installed while waiting is returned without downloading.
func (m *Manager) Install(ctx context.Context) (*InstalledBrowser, error) {
	build, err := m.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(m.cacheDir, 0755); err != nil {
		return nil, &InstallError{BuildID: build.BuildID, Err: fmt.Errorf("create cache dir: %w", err)}
	}

	lock, err := transaction.WaitLock(ctx, m.cacheDir, installLockName, 0)
	if err != nil {
		return nil, &InstallError{BuildID: build.BuildID, Err: err}
	}
	defer func() {
		if err := lock.Release(); err != nil {
			m.logger.Warn("failed to release install lock", "error", err)
		}
	}()

	if rec, ok := m.findInstalled(build); ok {
		m.logger.Debug("browser installed by another process", "build", build.BuildID)
		m.remember(rec)
		return rec, nil
	}

	m.logger.Warn("Chromium is not found in the cache, downloading it once", "build", build.BuildID, "platform", build.Platform)

	rec, err := m.install(ctx, build)
	if err != nil {
		return nil, &InstallError{BuildID: build.BuildID, Err: err}
	}

	m.logger.Info("Chromium downloaded", "path", rec.Dir)
	m.remember(rec)
	return rec, nil
}

func (m *Manager) install(ctx context.Context, build ResolvedBuild) (*InstalledBrowser, error) {
	info, err := constructDownloadInfo(m.downloadBase, build)
	if err != nil {
		return nil, err
	}

	reporter := newProgressReporter(m.newDisplay)
	archivePath, err := m.downloader.DownloadArchive(ctx, info, m.downloadDir, reporter.OnProgress)
	reporter.Finish()
	if err != nil {
		return nil, err
	}

	finalDir := filepath.Join(m.browserDir, build.String())
	stagingDir := filepath.Join(m.browserDir, "."+build.String()+".partial")
	if err := os.RemoveAll(stagingDir); err != nil {
		return nil, fmt.Errorf("clean staging dir: %w", err)
	}

	if err := m.extractor.ExtractZip(archivePath, stagingDir); err != nil {
		os.RemoveAll(stagingDir)
		// A corrupt archive must not be reused by the next attempt.
		os.Remove(archivePath)
		return nil, fmt.Errorf("extract archive: %w", err)
	}

	stagedExec := filepath.Join(stagingDir, filepath.FromSlash(executableRelPath(build.Platform)))
	if _, err := os.Stat(stagedExec); err != nil {
		os.RemoveAll(stagingDir)
		return nil, fmt.Errorf("executable missing from archive: %w", err)
	}
	if err := SetExecutable(stagedExec); err != nil {
		os.RemoveAll(stagingDir)
		return nil, err
	}

	if err := os.RemoveAll(finalDir); err != nil {
		os.RemoveAll(stagingDir)
		return nil, fmt.Errorf("clean install dir: %w", err)
	}
	if err := os.Rename(stagingDir, finalDir); err != nil {
		os.RemoveAll(stagingDir)
		return nil, fmt.Errorf("move build into place: %w", err)
	}

	if err := os.RemoveAll(filepath.Dir(archivePath)); err != nil {
		m.logger.Warn("failed to remove downloaded archive", "path", archivePath, "error", err)
	}

	return &InstalledBrowser{
		BuildID:        build.BuildID,
		Platform:       build.Platform,
		Dir:            finalDir,
		ExecutablePath: filepath.Join(finalDir, filepath.FromSlash(executableRelPath(build.Platform))),
	}, nil
}

func (m *Manager) findInstalled(build ResolvedBuild) (*InstalledBrowser, bool) {
	records, err := m.Installed()
	if err != nil {
		return nil, false
	}
	for i := range records {
		if records[i].Matches(build) {
			return &records[i], true
		}
	}
	return nil, false
}

func (m *Manager) memo() *InstalledBrowser {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.local
}

// remember stores rec as the memoized browser unless one is already set,
// and returns the memoized browser.
func (m *Manager) remember(rec *InstalledBrowser) *InstalledBrowser {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.local == nil {
		cp := *rec
		m.local = &cp
	}
	return m.local
}
