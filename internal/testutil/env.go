// Package testutil provides utilities for testing browserctl in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Env holds the isolated directories created by SetupTestEnv.
type Env struct {
	ConfigDir string
	CacheDir  string
}

// isolatedVars are cleared so host settings never leak into tests.
var isolatedVars = []string{
	"CHROME_PATH",
	"BROWSERCTL_DEBUG",
	"HTTP_PROXY", "http_proxy",
	"HTTPS_PROXY", "https_proxy",
	"NO_PROXY", "no_proxy",
	"npm_config_proxy",
	"npm_config_http_proxy",
	"npm_config_https_proxy",
	"npm_config_no_proxy",
}

// SetupTestEnv creates isolated config and cache directories and points
// the BROWSERCTL_* variables at them. This ensures tests never touch:
// - The user's browser cache
// - The user's configuration file
// - A system Chrome selected through CHROME_PATH
//
// The cleanup is handled by t.TempDir and t.Setenv.
func SetupTestEnv(t *testing.T) Env {
	t.Helper()

	tmpDir := t.TempDir()
	env := Env{
		ConfigDir: filepath.Join(tmpDir, "config"),
		CacheDir:  filepath.Join(tmpDir, "cache"),
	}

	t.Setenv("BROWSERCTL_CONFIG", filepath.Join(env.ConfigDir, "browserctl.lua"))
	t.Setenv("BROWSERCTL_CACHE_DIR", env.CacheDir)

	for _, name := range isolatedVars {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}

	for _, dir := range []string{env.ConfigDir, env.CacheDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}
	return env
}
