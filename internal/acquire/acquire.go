package acquire

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZebulonRouseFrantzich/browserctl/internal/binary"
	"github.com/ZebulonRouseFrantzich/browserctl/internal/devtools"
	"github.com/ZebulonRouseFrantzich/browserctl/internal/launcher"
	"github.com/ZebulonRouseFrantzich/browserctl/internal/logging"
)

// SystemLauncher starts the host browser.
type SystemLauncher interface {
	Launch(ctx context.Context, extraFlags []string) (*launcher.Process, error)
}

// Connector opens DevTools connections.
type Connector interface {
	Connect(ctx context.Context, wsURL string) (devtools.Handle, error)
	Launch(ctx context.Context, opts devtools.LaunchOptions) (devtools.Handle, error)
}

// BrowserCache provides the locally cached browser.
type BrowserCache interface {
	LookupInstalled(ctx context.Context) (*binary.InstalledBrowser, error)
	Install(ctx context.Context) (*binary.InstalledBrowser, error)
}

// Config wires an Acquirer. Launcher, Connector and Cache are required.
type Config struct {
	Launcher  SystemLauncher
	Connector Connector
	Cache     BrowserCache
	// KillPort defaults to launcher.KillPort.
	KillPort func(ctx context.Context, port int) ([]int32, error)
	// FetchEndpoint defaults to launcher.FetchDebugEndpoint.
	FetchEndpoint func(ctx context.Context, p *launcher.Process) (string, error)
	Logger        logging.Logger
}

// Options are per-call acquisition settings.
type Options struct {
	// LaunchArgs are extra flags for whichever browser ends up launched.
	LaunchArgs []string
	// NoSandbox disables the sandbox of the cached browser only.
	NoSandbox bool
}

// Acquirer hands out browsers. It is safe for concurrent use when its
// collaborators are.
type Acquirer struct {
	launcher      SystemLauncher
	connector     Connector
	cache         BrowserCache
	killPort      func(ctx context.Context, port int) ([]int32, error)
	fetchEndpoint func(ctx context.Context, p *launcher.Process) (string, error)
	logger        logging.Logger
}

// New creates an Acquirer.
func New(cfg Config) (*Acquirer, error) {
	if cfg.Launcher == nil || cfg.Connector == nil || cfg.Cache == nil {
		return nil, fmt.Errorf("acquire: Launcher, Connector and Cache are required")
	}
	a := &Acquirer{
		launcher:      cfg.Launcher,
		connector:     cfg.Connector,
		cache:         cfg.Cache,
		killPort:      cfg.KillPort,
		fetchEndpoint: cfg.FetchEndpoint,
		logger:        logging.OrNoop(cfg.Logger),
	}
	if a.killPort == nil {
		a.killPort = launcher.KillPort
	}
	if a.fetchEndpoint == nil {
		a.fetchEndpoint = launcher.FetchDebugEndpoint
	}
	return a, nil
}

// Acquire returns a connected browser. System browser failures are
// logged and fall through to the cached browser; only a failure there is
// returned.
func (a *Acquirer) Acquire(ctx context.Context, opts Options) (Result, error) {
	res, err := a.acquireSystem(ctx, opts)
	if err == nil {
		a.logger.Debug("using system browser", "pid", res.Process.PID, "port", res.Process.Port)
		return res, nil
	}

	a.handleSystemFailure(ctx, err)

	local, err := a.acquireLocal(ctx, opts)
	if err != nil {
		// a nil *LocalBrowser must not escape as a non-nil Result
		return nil, err
	}
	return local, nil
}

func (a *Acquirer) acquireSystem(ctx context.Context, opts Options) (*SystemBrowser, error) {
	proc, err := a.launcher.Launch(ctx, opts.LaunchArgs)
	if err != nil {
		return nil, err
	}

	wsURL, err := a.fetchEndpoint(ctx, proc)
	if err != nil {
		a.discard(ctx, proc)
		return nil, err
	}

	h, err := a.connector.Connect(ctx, wsURL)
	if err != nil {
		a.discard(ctx, proc)
		return nil, err
	}

	return &SystemBrowser{handle: h, Process: proc}, nil
}

// discard kills a launched browser that will not be handed out.
func (a *Acquirer) discard(ctx context.Context, proc *launcher.Process) {
	if err := proc.Kill(context.WithoutCancel(ctx)); err != nil {
		a.logger.Warn("failed to stop system browser", "pid", proc.PID, "error", err)
	}
}

// handleSystemFailure classifies a system browser failure. A refused
// connection may leave a half-started browser on the port, so whatever
// holds it is killed. A missing browser needs no cleanup.
func (a *Acquirer) handleSystemFailure(ctx context.Context, err error) {
	var refused *launcher.ConnectionRefusedError
	switch {
	case errors.As(err, &refused):
		a.logger.Warn(fmt.Sprintf("Chrome launcher could not connect to your system browser. Is your port %d accessible?", refused.Port))
		killed, killErr := a.killPort(context.WithoutCancel(ctx), refused.Port)
		for _, pid := range killed {
			a.logger.Info("killed incompletely launched system chrome instance", "pid", pid)
		}
		if killErr != nil {
			a.logger.Warn("port cleanup incomplete", "port", refused.Port, "error", killErr)
		}

	case errors.Is(err, launcher.ErrNotInstalled):
		a.logger.Warn("Looks like Chrome is not installed on your system")

	default:
		a.logger.Debug("system browser unavailable", "error", err)
	}
}

func (a *Acquirer) acquireLocal(ctx context.Context, opts Options) (*LocalBrowser, error) {
	rec, err := a.cache.LookupInstalled(ctx)
	if err != nil {
		return nil, fmt.Errorf("look up cached browser: %w", err)
	}
	if rec == nil {
		if rec, err = a.cache.Install(ctx); err != nil {
			return nil, fmt.Errorf("install browser: %w", err)
		}
	}

	h, err := a.connector.Launch(ctx, devtools.LaunchOptions{
		ExecPath:  rec.ExecutablePath,
		Args:      opts.LaunchArgs,
		NoSandbox: opts.NoSandbox,
	})
	if err != nil {
		return nil, fmt.Errorf("launch cached browser %s: %w", rec.BuildID, err)
	}

	a.logger.Debug("using cached browser", "build", rec.BuildID, "path", rec.ExecutablePath)
	return &LocalBrowser{handle: h, Browser: *rec}, nil
}
