package testutil_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZebulonRouseFrantzich/browserctl/internal/testutil"
)

func TestSetupTestEnv(t *testing.T) {
	t.Setenv("CHROME_PATH", "/opt/google/chrome/chrome")
	t.Setenv("npm_config_proxy", "http://proxy.example:3128")

	env := testutil.SetupTestEnv(t)

	if got := os.Getenv("BROWSERCTL_CACHE_DIR"); got != env.CacheDir {
		t.Errorf("BROWSERCTL_CACHE_DIR = %q, want %q", got, env.CacheDir)
	}

	cfg := os.Getenv("BROWSERCTL_CONFIG")
	if !strings.HasPrefix(cfg, env.ConfigDir) {
		t.Errorf("BROWSERCTL_CONFIG = %q, want under %q", cfg, env.ConfigDir)
	}

	if _, ok := os.LookupEnv("CHROME_PATH"); ok {
		t.Error("CHROME_PATH should be unset")
	}
	if _, ok := os.LookupEnv("npm_config_proxy"); ok {
		t.Error("npm_config_proxy should be unset")
	}

	for _, dir := range []string{env.ConfigDir, env.CacheDir} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			t.Errorf("directory %s does not exist", dir)
		}
		if !filepath.IsAbs(dir) {
			t.Errorf("path %s is not absolute", dir)
		}
	}
}

func TestSetupTestEnv_Isolation(t *testing.T) {
	env1 := testutil.SetupTestEnv(t)

	t.Run("subtest", func(t *testing.T) {
		env2 := testutil.SetupTestEnv(t)
		if env1.CacheDir == env2.CacheDir {
			t.Error("expected different temp directories for different test contexts")
		}
	})
}

func TestRecordingLogger(t *testing.T) {
	var l testutil.RecordingLogger
	l.Warn("Chromium is not found in the cache", "build", "1.2.3.4")
	l.Debug("resolved")

	if !l.Contains("warn", "not found") {
		t.Errorf("expected warn entry, got:\n%s", l.String())
	}
	if l.Contains("info", "resolved") {
		t.Error("level must match")
	}
	if n := len(l.Entries()); n != 2 {
		t.Errorf("entries = %d, want 2", n)
	}
}
