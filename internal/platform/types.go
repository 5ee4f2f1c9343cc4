// Package platform detects the host operating system and architecture and
// classifies it into the platform names browser builds are published for.
//
// Detection uses runtime.GOOS/GOARCH plus gopsutil for Linux distribution
// details. Classification never fails: an unrecognized host falls back to
// Linux64 so a download URL can always be built.
package platform

import "context"

// Info contains platform detection information.
type Info struct {
	OS       string // "linux", "darwin", "windows"
	Arch     string // "amd64", "arm64", "386" (normalized)
	ArchRaw  string // original GOARCH
	Platform string // distro ID (Linux only, e.g., "ubuntu", "arch")
	Version  string // distro version (Linux only, e.g., "22.04")
}

// IsLinux returns true if the platform is Linux.
func (i *Info) IsLinux() bool {
	return i.OS == "linux"
}

// IsMacOS returns true if the platform is macOS.
func (i *Info) IsMacOS() bool {
	return i.OS == "darwin"
}

// IsWindows returns true if the platform is Windows.
func (i *Info) IsWindows() bool {
	return i.OS == "windows"
}

// IsARM64 returns true if the architecture is arm64.
func (i *Info) IsARM64() bool {
	return i.Arch == "arm64"
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}
