package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ZebulonRouseFrantzich/browserctl/internal/binary"
	"github.com/ZebulonRouseFrantzich/browserctl/internal/launcher"
)

// Config is the complete browserctl configuration.
type Config struct {
	// Channel is a release channel ("stable", "beta", ...) or a pinned build id.
	Channel string `json:"channel,omitempty"`

	// CacheDir holds downloaded browser builds.
	CacheDir string `json:"cache_dir,omitempty"`

	// ChromePath is the system browser to try first. Empty searches the host.
	ChromePath string `json:"chrome_path,omitempty"`

	// LaunchArgs are extra flags for whichever browser is launched.
	LaunchArgs []string `json:"launch_args,omitempty"`

	// NoSandbox disables the sandbox of the cached browser.
	NoSandbox bool `json:"no_sandbox,omitempty"`

	// DebugPort is the system browser's debugging port; 0 picks a free one.
	DebugPort int `json:"debug_port,omitempty"`

	MaxConnectionRetries int    `json:"max_connection_retries,omitempty"`
	DownloadBaseURL      string `json:"download_base_url,omitempty"`
	VersionsURL          string `json:"versions_url,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Channel:              binary.DefaultChannel,
		CacheDir:             DefaultCacheDir(),
		MaxConnectionRetries: launcher.DefaultMaxConnectionRetries,
		DownloadBaseURL:      binary.DefaultDownloadBaseURL,
		VersionsURL:          binary.DefaultVersionsURL,
	}
}

// DefaultCacheDir is browserctl under the user cache directory.
func DefaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "browserctl")
}

// DefaultPath is browserctl/browserctl.lua under the user config directory.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(base, "browserctl", "browserctl.lua"), nil
}

// fillDefaults sets every zero field from Default.
func (c *Config) fillDefaults() {
	def := Default()
	if c.Channel == "" {
		c.Channel = def.Channel
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	if c.MaxConnectionRetries == 0 {
		c.MaxConnectionRetries = def.MaxConnectionRetries
	}
	if c.DownloadBaseURL == "" {
		c.DownloadBaseURL = def.DownloadBaseURL
	}
	if c.VersionsURL == "" {
		c.VersionsURL = def.VersionsURL
	}
}

// Validate performs basic validation on a Config.
func (c *Config) Validate() error {
	if c.Channel != "" && !channelPattern.MatchString(c.Channel) {
		return &ValidationError{
			Field:   luaFieldChannel,
			Message: fmt.Sprintf("invalid channel %q (expected a name such as stable, or a build id such as 131.0.6778.85)", c.Channel),
		}
	}

	if c.DebugPort < 0 || c.DebugPort > 65535 {
		return &ValidationError{Field: luaFieldDebugPort, Message: fmt.Sprintf("port %d out of range", c.DebugPort)}
	}

	if c.MaxConnectionRetries < 0 || c.MaxConnectionRetries > MaxConnectionRetryLimit {
		return &ValidationError{
			Field:   luaFieldMaxRetries,
			Message: fmt.Sprintf("must be between 0 and %d (got %d)", MaxConnectionRetryLimit, c.MaxConnectionRetries),
		}
	}

	if len(c.LaunchArgs) > MaxLaunchArgs {
		return &ValidationError{
			Field:   luaFieldLaunchArgs,
			Message: fmt.Sprintf("too many launch args (%d), maximum is %d", len(c.LaunchArgs), MaxLaunchArgs),
		}
	}
	for i, arg := range c.LaunchArgs {
		if !strings.HasPrefix(arg, "-") || strings.TrimLeft(arg, "-") == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("%s[%d]", luaFieldLaunchArgs, i),
				Message: fmt.Sprintf("expected a flag such as --name=value, got %q", arg),
			}
		}
	}

	for field, raw := range map[string]string{
		luaFieldDownloadBaseURL: c.DownloadBaseURL,
		luaFieldVersionsURL:     c.VersionsURL,
	} {
		if raw == "" {
			continue
		}
		if err := validateHTTPURL(raw); err != nil {
			return &ValidationError{Field: field, Message: err.Error()}
		}
	}

	return nil
}

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "config validation failed for " + e.Field + ": " + e.Message
	}
	return "config validation failed: " + e.Message
}

// channelPattern matches channel names and full build ids.
var channelPattern = regexp.MustCompile(`^([A-Za-z]+|\d+\.\d+\.\d+\.\d+)$`)

// validateHTTPURL accepts absolute http and https URLs.
func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("URL must use https:// or http:// scheme (got: %q)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host: %s", raw)
	}
	return nil
}

// expandHome replaces a leading ~/ with the home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
