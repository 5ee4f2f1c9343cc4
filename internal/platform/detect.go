package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using actual platform detection.
type RealDetector struct{}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{}
}

// Detect performs platform detection and returns platform information.
// It uses runtime.GOOS and runtime.GOARCH for OS and architecture,
// and gopsutil for Linux distribution details.
//
// A failed distro lookup is not an error: the OS/arch fields are still
// returned. A cancelled context is.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	return detect(ctx, runtime.GOOS, runtime.GOARCH)
}

func detect(ctx context.Context, goos, goarch string) (*Info, error) {
	info := &Info{
		OS:      goos,
		ArchRaw: goarch,
	}

	arch, err := normalizeArch(goarch)
	if err != nil {
		return nil, fmt.Errorf("platform detection failed: %w", err)
	}
	info.Arch = arch

	if goos == "linux" {
		distro, _, version, err := host.PlatformInformationWithContext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
			}
			return info, nil
		}
		info.Platform = normalizePlatform(distro)
		info.Version = normalizePlatform(version)
	}

	return info, nil
}
