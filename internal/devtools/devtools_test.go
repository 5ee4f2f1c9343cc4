package devtools

import (
	"context"
	"strings"
	"testing"
	"time"

	rodlauncher "github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlag(t *testing.T) {
	tests := []struct {
		arg       string
		wantName  string
		wantValue interface{}
		wantOK    bool
	}{
		{"--window-size=1280,720", "window-size", "1280,720", true},
		{"--headless", "headless", true, true},
		{"-incognito", "incognito", true, true},
		{"--lang=", "lang", "", true},
		{"--", "", nil, false},
		{"--=x", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			name, value, ok := parseFlag(tt.arg)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}

func TestExecAllocatorOptions(t *testing.T) {
	base := execAllocatorOptions(LaunchOptions{ExecPath: "/bin/chrome"})
	withArgs := execAllocatorOptions(LaunchOptions{
		ExecPath: "/bin/chrome",
		Args:     []string{"--lang=de", "not-a-flag=", "--"},
	})
	sandboxed := execAllocatorOptions(LaunchOptions{ExecPath: "/bin/chrome", NoSandbox: true})

	assert.Len(t, withArgs, len(base)+2, "empty flags are dropped")
	assert.Len(t, sandboxed, len(base)+2)
}

func TestConnector_Launch_RequiresPath(t *testing.T) {
	_, err := NewConnector(nil).Launch(context.Background(), LaunchOptions{})
	assert.Error(t, err)
}

func TestConnector_Connect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := NewConnector(nil).Connect(ctx, "ws://127.0.0.1:1/devtools/browser/none")
	assert.Error(t, err)
}

// TestConnector_Launch_RealBrowser needs a Chrome on the host.
func TestConnector_Launch_RealBrowser(t *testing.T) {
	if testing.Short() {
		t.Skip("starts a real browser")
	}
	path, ok := rodlauncher.LookPath()
	if !ok {
		t.Skip("no browser on this host")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	h, err := NewConnector(nil).Launch(ctx, LaunchOptions{ExecPath: path, NoSandbox: true})
	require.NoError(t, err)

	version, err := h.Version(ctx)
	require.NoError(t, err)
	assert.True(t, strings.Contains(version, "Chrome") || strings.Contains(version, "Chromium"), version)

	require.NoError(t, h.Close(ctx))
	assert.NoError(t, h.Disconnect(), "disconnect after close is a no-op")
}
