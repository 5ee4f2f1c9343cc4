package testutil

import (
	"context"

	"github.com/ZebulonRouseFrantzich/browserctl/internal/platform"
)

// StaticDetector reports a fixed host.
type StaticDetector struct {
	Info *platform.Info
	Err  error
}

// Linux64 returns a detector for a linux/amd64 host.
func Linux64() *StaticDetector {
	return &StaticDetector{Info: &platform.Info{OS: "linux", Arch: "amd64", ArchRaw: "amd64"}}
}

func (d *StaticDetector) Detect(ctx context.Context) (*platform.Info, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	return d.Info, nil
}
