package main

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZebulonRouseFrantzich/browserctl/internal/acquire"
	"github.com/ZebulonRouseFrantzich/browserctl/internal/binary"
	"github.com/ZebulonRouseFrantzich/browserctl/internal/launcher"
	"github.com/ZebulonRouseFrantzich/browserctl/internal/platform"
)

func TestParseAcquireFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    acquireFlags
		wantErr string
	}{
		{name: "none", args: nil, want: acquireFlags{}},
		{name: "help", args: []string{"-h"}, want: acquireFlags{help: true}},
		{
			name: "all options",
			args: []string{"--no-sandbox", "--arg", "--lang=de", "--hold", "--arg=--mute-audio"},
			want: acquireFlags{noSandbox: true, hold: true, args: []string{"--lang=de", "--mute-audio"}},
		},
		{name: "dangling arg", args: []string{"--arg"}, wantErr: "--arg requires"},
		{name: "unknown", args: []string{"--headful"}, wantErr: "unknown option: --headful"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAcquireFlags(tt.args)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOnlyHelp(t *testing.T) {
	help, err := onlyHelp(nil)
	require.NoError(t, err)
	assert.False(t, help)

	help, err = onlyHelp([]string{"--help"})
	require.NoError(t, err)
	assert.True(t, help)

	_, err = onlyHelp([]string{"--force"})
	assert.EqualError(t, err, "unknown option: --force")
}

func TestDescribeResult(t *testing.T) {
	var buf bytes.Buffer

	describeResult(&buf, &acquire.SystemBrowser{Process: &launcher.Process{PID: 4242, Port: 9222}}, "Chrome/131.0.6778.85")
	assert.Equal(t, "system browser: Chrome/131.0.6778.85 (pid 4242, port 9222)\n", buf.String())

	buf.Reset()
	describeResult(&buf, &acquire.LocalBrowser{Browser: binary.InstalledBrowser{
		BuildID:        "131.0.6778.85",
		ExecutablePath: "/cache/chrome-headless-shell",
	}}, "HeadlessChrome/131.0.6778.85")
	assert.Equal(t, "local browser: HeadlessChrome/131.0.6778.85 (build 131.0.6778.85, /cache/chrome-headless-shell)\n", buf.String())
}

func TestPrintRecords(t *testing.T) {
	var buf bytes.Buffer
	printRecords(&buf, "/cache", nil, "")
	assert.Contains(t, buf.String(), "No browsers cached in /cache")
	assert.Contains(t, buf.String(), "browserctl install")

	buf.Reset()
	printRecords(&buf, "/cache", []binary.InstalledBrowser{
		{BuildID: "131.0.6778.85", Platform: platform.Linux64, ExecutablePath: "/cache/a/chrome-headless-shell"},
		{BuildID: "130.0.6723.116", Platform: platform.Linux64, ExecutablePath: "/cache/b/chrome-headless-shell"},
	}, "131.0.6778.85")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[2], "131.0.6778.85")
	assert.Contains(t, lines[2], "linux64")
	assert.Contains(t, lines[3], "/cache/b/chrome-headless-shell")
	assert.True(t, strings.HasPrefix(lines[2], "*"), "preferred build is marked")
	assert.True(t, strings.HasPrefix(lines[3], " "))
}

func TestWaitForRelease(t *testing.T) {
	t.Run("context ends", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		waitForRelease(ctx, &acquire.LocalBrowser{})
	})

	t.Run("system browser exits", func(t *testing.T) {
		cmd := exec.Command(os.Args[0], "-test.run=^$")
		require.NoError(t, cmd.Start())
		proc := launcher.Track(cmd, 9222, "")

		done := make(chan struct{})
		go func() {
			waitForRelease(context.Background(), &acquire.SystemBrowser{Process: proc})
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			t.Fatal("waitForRelease did not return after the browser exited")
		}
	})
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, func(string) string { return "" }).Debug("hidden")
	assert.Empty(t, buf.String())

	newLogger(&buf, func(k string) string {
		if k == "BROWSERCTL_DEBUG" {
			return "1"
		}
		return ""
	}).Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}
