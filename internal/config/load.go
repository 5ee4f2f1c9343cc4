package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ZebulonRouseFrantzich/browserctl/internal/platform"
)

// Loader resolves the effective configuration.
type Loader struct {
	parser *Parser
	getenv func(string) string
}

// NewLoader creates a loader. A nil getenv reads the process environment.
func NewLoader(detector platform.Detector, getenv func(string) string) *Loader {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &Loader{parser: NewParser(detector), getenv: getenv}
}

// Load returns defaults overlaid with the config file and the environment.
// A missing file at the default location is not an error; a missing file
// named by BROWSERCTL_CONFIG is.
func (l *Loader) Load(ctx context.Context) (*Config, string, error) {
	path, explicit := l.getenv(EnvConfigFile), true
	if path == "" {
		explicit = false
		var err error
		if path, err = DefaultPath(); err != nil {
			path = ""
		}
	}

	cfg := &Config{}
	if path != "" {
		parsed, err := l.parser.ParseFile(ctx, path)
		switch {
		case err == nil:
			cfg = parsed
		case errors.Is(err, fs.ErrNotExist) && !explicit:
			path = ""
		default:
			return nil, path, err
		}
	}

	if dir := l.getenv(EnvCacheDir); dir != "" {
		expanded, err := expandHome(dir)
		if err != nil {
			return nil, path, err
		}
		cfg.CacheDir = expanded
	}
	if chrome := l.getenv(EnvChromePath); chrome != "" {
		cfg.ChromePath = chrome
	}

	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("effective config: %w", err)
	}
	return cfg, path, nil
}
