package platform

import (
	"context"
	"fmt"
)

// BrowserPlatform names a host classification that browser builds are
// published for. The values match the Chrome for Testing platform keys.
type BrowserPlatform string

const (
	Linux64  BrowserPlatform = "linux64"
	MacX64   BrowserPlatform = "mac-x64"
	MacARM64 BrowserPlatform = "mac-arm64"
	Win32    BrowserPlatform = "win32"
	Win64    BrowserPlatform = "win64"
)

// DefaultBrowserPlatform is used when the host cannot be classified.
const DefaultBrowserPlatform = Linux64

// BrowserPlatforms lists every known platform, longest names first so that
// prefix matching on "<platform>-<build>" directory names is unambiguous.
var BrowserPlatforms = []BrowserPlatform{MacARM64, MacX64, Linux64, Win32, Win64}

// String returns the string representation of the platform.
func (p BrowserPlatform) String() string {
	return string(p)
}

// ParseBrowserPlatform validates a platform name.
func ParseBrowserPlatform(s string) (BrowserPlatform, error) {
	for _, p := range BrowserPlatforms {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown browser platform: %q", s)
}

// BrowserPlatform maps detected host info to a browser platform.
// It reports false when the OS/arch combination has no published builds.
func (i *Info) BrowserPlatform() (BrowserPlatform, bool) {
	switch i.OS {
	case "linux":
		if i.Arch == "amd64" {
			return Linux64, true
		}
	case "darwin":
		switch i.Arch {
		case "arm64":
			return MacARM64, true
		case "amd64":
			return MacX64, true
		}
	case "windows":
		switch i.Arch {
		case "amd64", "arm64":
			return Win64, true
		case "386":
			return Win32, true
		}
	}
	return "", false
}

// Classify detects the host and returns its browser platform. It never
// fails: when detection or classification is not possible it returns
// DefaultBrowserPlatform together with the reason, so callers can log it.
func Classify(ctx context.Context, detector Detector) (BrowserPlatform, error) {
	if detector == nil {
		detector = NewDetector()
	}
	info, err := detector.Detect(ctx)
	if err != nil {
		return DefaultBrowserPlatform, fmt.Errorf("detect host platform: %w", err)
	}
	p, ok := info.BrowserPlatform()
	if !ok {
		return DefaultBrowserPlatform, fmt.Errorf("no browser builds for %s/%s", info.OS, info.Arch)
	}
	return p, nil
}
