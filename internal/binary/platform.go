package binary

import (
	"fmt"
	"strings"

	"github.com/ZebulonRouseFrantzich/browserctl/internal/platform"
)

// DefaultDownloadBaseURL is the Chrome for Testing public bucket.
const DefaultDownloadBaseURL = "https://storage.googleapis.com/chrome-for-testing-public"

// constructDownloadInfo builds the archive URL for a resolved build.
// Pattern: {base}/{buildId}/{platform}/chrome-headless-shell-{platform}.zip
func constructDownloadInfo(baseURL string, build ResolvedBuild) (*DownloadInfo, error) {
	if build.BuildID == "" {
		return nil, fmt.Errorf("build id is required")
	}
	if _, err := platform.ParseBrowserPlatform(build.Platform.String()); err != nil {
		return nil, err
	}
	if baseURL == "" {
		baseURL = DefaultDownloadBaseURL
	}

	archiveName := fmt.Sprintf("%s-%s.zip", BrowserName, build.Platform)

	return &DownloadInfo{
		Build:       build,
		URL:         fmt.Sprintf("%s/%s/%s/%s", strings.TrimRight(baseURL, "/"), build.BuildID, build.Platform, archiveName),
		ArchiveName: archiveName,
	}, nil
}

// executableRelPath returns the executable location inside an unpacked build.
func executableRelPath(p platform.BrowserPlatform) string {
	dir := fmt.Sprintf("%s-%s", BrowserName, p)
	switch p {
	case platform.Win32, platform.Win64:
		return dir + "/" + BrowserName + ".exe"
	default:
		return dir + "/" + BrowserName
	}
}

// buildDirName is the cache directory name of a build.
func buildDirName(p platform.BrowserPlatform, buildID string) string {
	return fmt.Sprintf("%s-%s", p, buildID)
}

// parseBuildDirName splits "<platform>-<buildId>".
func parseBuildDirName(name string) (platform.BrowserPlatform, string, bool) {
	for _, p := range platform.BrowserPlatforms {
		prefix := p.String() + "-"
		if strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
			return p, strings.TrimPrefix(name, prefix), true
		}
	}
	return "", "", false
}
