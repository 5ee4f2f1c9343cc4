package binary

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// maxParallelEvictions bounds concurrent directory removals.
const maxParallelEvictions = 4

// Installed lists the unpacked builds in the cache, ordered by directory
// name. Directories without an executable are skipped.
func (m *Manager) Installed() ([]InstalledBrowser, error) {
	entries, err := os.ReadDir(m.browserDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache dir: %w", err)
	}

	var records []InstalledBrowser
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		p, buildID, ok := parseBuildDirName(entry.Name())
		if !ok {
			continue
		}

		dir := filepath.Join(m.browserDir, entry.Name())
		execPath := filepath.Join(dir, filepath.FromSlash(executableRelPath(p)))
		if info, err := os.Stat(execPath); err != nil || info.IsDir() {
			continue
		}

		records = append(records, InstalledBrowser{
			BuildID:        buildID,
			Platform:       p,
			Dir:            dir,
			ExecutablePath: execPath,
		})
	}
	return records, nil
}

// Uninstall removes one build from the cache.
func (m *Manager) Uninstall(rec InstalledBrowser) error {
	rel, err := filepath.Rel(m.browserDir, rec.Dir)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || strings.ContainsRune(rel, filepath.Separator) {
		return fmt.Errorf("refusing to remove %s: not a cached build", rec.Dir)
	}
	if err := os.RemoveAll(rec.Dir); err != nil {
		return fmt.Errorf("remove %s: %w", rec.Dir, err)
	}
	m.logger.Debug("removed cached browser", "build", rec.BuildID, "platform", rec.Platform)
	return nil
}

// Prune removes every cached build other than the preferred one and
// returns what was removed. Unlike the eviction started by
// LookupInstalled, it fails when the preferred build cannot be resolved.
func (m *Manager) Prune(ctx context.Context) ([]InstalledBrowser, error) {
	records, err := m.Installed()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	build, err := m.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	stale := staleRecords(records, build)
	return m.evict(stale), nil
}

// WaitEvictions blocks until background evictions have finished.
func (m *Manager) WaitEvictions() {
	m.evictions.Wait()
}

// staleRecords returns the records whose build differs from build.
func staleRecords(records []InstalledBrowser, build ResolvedBuild) []InstalledBrowser {
	var stale []InstalledBrowser
	for _, rec := range records {
		if rec.BuildID != build.BuildID {
			stale = append(stale, rec)
		}
	}
	return stale
}

func (m *Manager) evictInBackground(stale []InstalledBrowser) {
	if len(stale) == 0 {
		return
	}
	m.evictions.Add(1)
	go func() {
		defer m.evictions.Done()
		m.evict(stale)
	}()
}

// evict removes stale builds concurrently. Failures are logged, never
// returned; the removed builds are.
func (m *Manager) evict(stale []InstalledBrowser) []InstalledBrowser {
	removed := make([]bool, len(stale))

	var g errgroup.Group
	g.SetLimit(maxParallelEvictions)
	for i, rec := range stale {
		g.Go(func() error {
			if err := m.Uninstall(rec); err != nil {
				m.logger.Warn("failed to remove stale browser", "build", rec.BuildID, "error", err)
				return nil
			}
			removed[i] = true
			return nil
		})
	}
	_ = g.Wait()

	var out []InstalledBrowser
	for i, ok := range removed {
		if ok {
			out = append(out, stale[i])
		}
	}
	return out
}
