package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	rodlauncher "github.com/go-rod/rod/lib/launcher"
	"github.com/google/uuid"

	"github.com/ZebulonRouseFrantzich/browserctl/internal/logging"
)

const (
	// DefaultMaxConnectionRetries bounds how often the debugging port is polled.
	DefaultMaxConnectionRetries = 50
	// DefaultRetryInterval is the delay between polls.
	DefaultRetryInterval = 500 * time.Millisecond
)

// DefaultFlags start a headless browser with minimal logging and no
// background activity.
var DefaultFlags = []string{
	"--headless=new",
	"--disable-gpu",
	"--no-first-run",
	"--no-default-browser-check",
	"--disable-extensions",
	"--disable-background-networking",
	"--disable-sync",
	"--disable-default-apps",
	"--mute-audio",
	"--log-level=3",
}

// Config configures system browser launches.
type Config struct {
	// ChromePath is the browser executable. Empty means search the host.
	ChromePath string
	// Port is the debugging port. Zero picks a free port per launch.
	Port                 int
	MaxConnectionRetries int
	RetryInterval        time.Duration
	Logger               logging.Logger
	// LookPath finds a host browser when ChromePath is empty
	// (default: go-rod's launcher.LookPath).
	LookPath func() (string, bool)
}

// Launcher starts the host's browser.
type Launcher struct {
	chromePath    string
	port          int
	retries       int
	retryInterval time.Duration
	lookPath      func() (string, bool)
	logger        logging.Logger
}

// New creates a launcher, applying defaults for zero fields.
func New(cfg Config) *Launcher {
	l := &Launcher{
		chromePath:    cfg.ChromePath,
		port:          cfg.Port,
		retries:       cfg.MaxConnectionRetries,
		retryInterval: cfg.RetryInterval,
		lookPath:      cfg.LookPath,
		logger:        logging.OrNoop(cfg.Logger),
	}
	if l.retries <= 0 {
		l.retries = DefaultMaxConnectionRetries
	}
	if l.retryInterval <= 0 {
		l.retryInterval = DefaultRetryInterval
	}
	if l.lookPath == nil {
		l.lookPath = rodlauncher.LookPath
	}
	return l
}

// Executable returns the browser that Launch would start.
func (l *Launcher) Executable() (string, error) {
	if l.chromePath != "" {
		info, err := os.Stat(l.chromePath)
		if err != nil || info.IsDir() {
			return "", fmt.Errorf("%w: %s", ErrNotInstalled, l.chromePath)
		}
		return l.chromePath, nil
	}
	path, ok := l.lookPath()
	if !ok || path == "" {
		return "", ErrNotInstalled
	}
	return path, nil
}

// Launch starts the system browser with DefaultFlags followed by
// extraFlags and waits until its debugging port accepts connections.
//
// The process is not bound to ctx; it runs until the returned Process is
// killed. If the port never accepts connections, or ctx ends first, the
// process is killed and its profile removed before the error is returned.
// A refused port yields *ConnectionRefusedError; anything else a second
// browser left on that port is the caller's to clean up.
func (l *Launcher) Launch(ctx context.Context, extraFlags []string) (*Process, error) {
	execPath, err := l.Executable()
	if err != nil {
		return nil, err
	}

	port := l.port
	if port == 0 {
		if port, err = freePort(); err != nil {
			return nil, err
		}
	}

	userDataDir := filepath.Join(os.TempDir(), "browserctl-profile-"+uuid.NewString())
	if err := os.MkdirAll(userDataDir, 0700); err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}

	args := make([]string, 0, len(DefaultFlags)+len(extraFlags)+2)
	args = append(args, DefaultFlags...)
	args = append(args,
		"--remote-debugging-port="+strconv.Itoa(port),
		"--user-data-dir="+userDataDir,
	)
	args = append(args, extraFlags...)

	cmd := exec.Command(execPath, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	l.logger.Debug("launching system browser", "path", execPath, "port", port)
	if err := cmd.Start(); err != nil {
		os.RemoveAll(userDataDir)
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrNotInstalled, err)
		}
		return nil, fmt.Errorf("start %s: %w", execPath, err)
	}

	proc := Track(cmd, port, userDataDir)

	if err := l.waitForPort(ctx, proc); err != nil {
		if killErr := proc.Kill(context.WithoutCancel(ctx)); killErr != nil {
			l.logger.Warn("failed to stop browser that never came up", "pid", proc.PID, "error", killErr)
		}
		return nil, err
	}

	l.logger.Debug("system browser is accepting connections", "pid", proc.PID, "port", port)
	return proc, nil
}

func (l *Launcher) waitForPort(ctx context.Context, proc *Process) error {
	var lastErr error
	for attempt := 0; attempt < l.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(l.retryInterval):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		_, err := FetchVersion(ctx, proc.Port)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if proc.Exited() {
			break
		}
	}

	var refused *ConnectionRefusedError
	if errors.As(lastErr, &refused) {
		return refused
	}
	return &ConnectionRefusedError{Port: proc.Port, Err: lastErr}
}
