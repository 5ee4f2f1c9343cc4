// Package binary manages the local cache of downloaded headless browser
// builds: resolving which build is preferred for this host, installing it on
// a cache miss, and pruning builds that are no longer preferred.
//
// # Cache Layout
//
// Every installed build lives in its own directory:
//
//	<cacheDir>/chrome-headless-shell/<platform>-<buildId>/
//	    chrome-headless-shell-<platform>/chrome-headless-shell[.exe]
//
// Archives are staged in <cacheDir>/downloads while an install runs and an
// install.lock file in <cacheDir> serializes installs across processes.
//
// # Usage
//
//	mgr, err := binary.NewManager(binary.Config{CacheDir: dir})
//	if err != nil {
//	    return err
//	}
//
//	rec, err := mgr.LookupInstalled(ctx)
//	if err != nil {
//	    return err
//	}
//	if rec == nil {
//	    rec, err = mgr.Install(ctx)
//	}
//
// # Architecture
//
//   - Manager: cache scan, memoized lookup, background eviction, install
//   - Resolver: channel name -> build id for the detected platform
//   - Downloader: HTTP download with retry logic and progress callbacks
//   - Extractor: zip extraction with path traversal protection
//   - progressReporter: converts cumulative byte counts into display deltas
package binary
