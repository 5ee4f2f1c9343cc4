package binary

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZebulonRouseFrantzich/browserctl/internal/platform"
	"github.com/ZebulonRouseFrantzich/browserctl/internal/testutil"
)

func TestResolver_Resolve(t *testing.T) {
	cdn := newFakeCDN(t, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		channel string
		want    string
		network bool
	}{
		{"default channel", "", testBuildID, true},
		{"case insensitive", "BETA", "132.0.6834.32", true},
		{"pinned build", "128.0.6613.137", "128.0.6613.137", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := cdn.versionsHits.Load()
			r := NewResolver(cdn.URL+"/versions.json", tt.channel, cdn.Client(), testutil.Linux64(), nil)

			build, err := r.Resolve(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, build.BuildID)
			assert.Equal(t, platform.Linux64, build.Platform)
			assert.Equal(t, tt.network, cdn.versionsHits.Load() > before)
		})
	}
}

func TestResolver_UnknownChannel(t *testing.T) {
	cdn := newFakeCDN(t, nil)
	r := NewResolver(cdn.URL+"/versions.json", "nightly", cdn.Client(), testutil.Linux64(), nil)

	_, err := r.Resolve(context.Background())
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Contains(t, err.Error(), "nightly")
}

func TestResolver_Unreachable(t *testing.T) {
	cdn := newFakeCDN(t, nil)
	url := cdn.URL + "/versions.json"
	cdn.Close()

	r := NewResolver(url, "", cdn.Client(), testutil.Linux64(), nil)
	_, err := r.Resolve(context.Background())

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "resolve", netErr.Op)
	assert.Equal(t, url, netErr.URL)
}

func TestResolver_PlatformFallback(t *testing.T) {
	cdn := newFakeCDN(t, nil)
	tests := []struct {
		name     string
		detector *testutil.StaticDetector
	}{
		{"detection fails", &testutil.StaticDetector{Err: errors.New("no /etc/os-release")}},
		{"unsupported host", &testutil.StaticDetector{Info: &platform.Info{OS: "linux", Arch: "arm64"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &testutil.RecordingLogger{}
			r := NewResolver(cdn.URL+"/versions.json", "", cdn.Client(), tt.detector, logger)

			build, err := r.Resolve(context.Background())
			require.NoError(t, err)
			assert.Equal(t, platform.DefaultBrowserPlatform, build.Platform)
			assert.True(t, logger.Contains("warn", "default browser platform"), logger.String())
		})
	}
}
