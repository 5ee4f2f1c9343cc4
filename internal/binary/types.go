package binary

import (
	"fmt"

	"github.com/ZebulonRouseFrantzich/browserctl/internal/platform"
)

// BrowserName is the browser product cached by this package.
const BrowserName = "chrome-headless-shell"

// DefaultChannel is the release channel resolved when none is configured.
const DefaultChannel = "stable"

// ResolvedBuild identifies the preferred browser build for this host.
type ResolvedBuild struct {
	Platform platform.BrowserPlatform
	BuildID  string
	Channel  string
}

// String returns "<platform>-<buildId>", the cache directory name of the build.
func (b ResolvedBuild) String() string {
	return buildDirName(b.Platform, b.BuildID)
}

// InstalledBrowser is one unpacked build in the cache.
type InstalledBrowser struct {
	BuildID        string
	Platform       platform.BrowserPlatform
	Dir            string // cache directory holding this build
	ExecutablePath string
}

// Matches reports whether the record is the given build.
func (b *InstalledBrowser) Matches(build ResolvedBuild) bool {
	return b.BuildID == build.BuildID && b.Platform == build.Platform
}

// DownloadInfo contains metadata needed to download a build.
type DownloadInfo struct {
	Build       ResolvedBuild
	URL         string // archive URL
	ArchiveName string // file name of the archive
}

// ProgressFunc receives cumulative byte counts during a download.
// total is -1 when the server did not announce a size.
type ProgressFunc func(downloaded, total int64)

// NetworkError reports a failed remote lookup or download.
type NetworkError struct {
	Op  string // "resolve" or "download"
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// InstallError reports a failed download or unpack of a build.
type InstallError struct {
	BuildID string
	Err     error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("install %s %s: %v", BrowserName, e.BuildID, e.Err)
}

func (e *InstallError) Unwrap() error {
	return e.Err
}
