package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/ZebulonRouseFrantzich/browserctl/internal/acquire"
	"github.com/ZebulonRouseFrantzich/browserctl/internal/binary"
	"github.com/ZebulonRouseFrantzich/browserctl/internal/config"
	"github.com/ZebulonRouseFrantzich/browserctl/internal/devtools"
	"github.com/ZebulonRouseFrantzich/browserctl/internal/launcher"
	"github.com/ZebulonRouseFrantzich/browserctl/internal/logging"
	"github.com/ZebulonRouseFrantzich/browserctl/internal/platform"
)

// app holds the components shared by the subcommands.
type app struct {
	cfg        *config.Config
	configPath string
	logger     logging.Logger
	manager    *binary.Manager
	acquirer   *acquire.Acquirer
}

// applyProxyEnv copies npm-style proxy settings into the standard variables.
func applyProxyEnv() ([]string, error) {
	return config.ApplyProxyEnv(nil, nil)
}

// newLogger writes to stderr, at debug level when BROWSERCTL_DEBUG is set.
func newLogger(w io.Writer, getenv func(string) string) logging.Logger {
	level := zerolog.InfoLevel
	if getenv("BROWSERCTL_DEBUG") != "" {
		level = zerolog.DebugLevel
	}
	return logging.NewConsole(w, level, "browserctl")
}

// newApp loads the configuration and wires the browser components.
func newApp(ctx context.Context) (*app, error) {
	logger := newLogger(os.Stderr, os.Getenv)
	detector := platform.NewDetector()

	cfg, path, err := config.NewLoader(detector, os.Getenv).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %s", config.FormatError(err, os.Getenv("BROWSERCTL_DEBUG") != ""))
	}
	if path != "" {
		logger.Debug("loaded config", "path", path)
	}

	manager, err := binary.NewManager(binary.Config{
		CacheDir:        cfg.CacheDir,
		Channel:         cfg.Channel,
		DownloadBaseURL: cfg.DownloadBaseURL,
		VersionsURL:     cfg.VersionsURL,
		Detector:        detector,
		Display:         binary.BarDisplay(os.Stderr),
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create browser cache: %w", err)
	}

	acquirer, err := acquire.New(acquire.Config{
		Launcher: launcher.New(launcher.Config{
			ChromePath:           cfg.ChromePath,
			Port:                 cfg.DebugPort,
			MaxConnectionRetries: cfg.MaxConnectionRetries,
			Logger:               logger,
		}),
		Connector: devtools.NewConnector(logger),
		Cache:     manager,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:        cfg,
		configPath: path,
		logger:     logger,
		manager:    manager,
		acquirer:   acquirer,
	}, nil
}
