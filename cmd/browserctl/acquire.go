package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ZebulonRouseFrantzich/browserctl/internal/acquire"
)

// acquireFlags are the options of `browserctl acquire`.
type acquireFlags struct {
	help      bool
	noSandbox bool
	hold      bool
	args      []string
}

func parseAcquireFlags(args []string) (acquireFlags, error) {
	var f acquireFlags
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--help" || arg == "-h":
			f.help = true
		case arg == "--no-sandbox":
			f.noSandbox = true
		case arg == "--hold":
			f.hold = true
		case arg == "--arg":
			if i+1 >= len(args) {
				return f, fmt.Errorf("--arg requires a browser flag")
			}
			i++
			f.args = append(f.args, args[i])
		case strings.HasPrefix(arg, "--arg="):
			f.args = append(f.args, strings.TrimPrefix(arg, "--arg="))
		default:
			return f, fmt.Errorf("unknown option: %s", arg)
		}
	}
	return f, nil
}

// runAcquire handles the `browserctl acquire` subcommand
func runAcquire(args []string) error {
	flags, err := parseAcquireFlags(args)
	if err != nil {
		return err
	}
	if flags.help {
		printAcquireHelp()
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	result, err := a.acquirer.Acquire(ctx, acquire.Options{
		LaunchArgs: append(append([]string{}, a.cfg.LaunchArgs...), flags.args...),
		NoSandbox:  flags.noSandbox || a.cfg.NoSandbox,
	})
	if err != nil {
		return err
	}

	version, verr := result.Handle().Version(ctx)
	if verr != nil {
		a.logger.Warn("could not read browser version", "error", verr)
		version = "unknown"
	}
	describeResult(os.Stdout, result, version)

	if flags.hold {
		fmt.Println("Holding the browser open, press Ctrl+C to release it.")
		waitForRelease(ctx, result)
	}

	// the signal context may already be cancelled
	termCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := acquire.Terminate(termCtx, result); err != nil {
		return fmt.Errorf("terminate browser: %w", err)
	}
	a.manager.WaitEvictions()
	return nil
}

// waitForRelease blocks until ctx ends or a system browser exits on its own.
func waitForRelease(ctx context.Context, result acquire.Result) {
	var exited <-chan struct{}
	if sys, ok := result.(*acquire.SystemBrowser); ok {
		exited = sys.Process.Done()
	}
	select {
	case <-ctx.Done():
	case <-exited:
		fmt.Println("The browser exited.")
	}
}

// describeResult prints which browser was acquired.
func describeResult(w io.Writer, result acquire.Result, version string) {
	switch r := result.(type) {
	case *acquire.SystemBrowser:
		fmt.Fprintf(w, "system browser: %s (pid %d, port %d)\n", version, r.Process.PID, r.Process.Port)
	case *acquire.LocalBrowser:
		fmt.Fprintf(w, "local browser: %s (build %s, %s)\n", version, r.Browser.BuildID, r.Browser.ExecutablePath)
	default:
		fmt.Fprintf(w, "browser: %s\n", version)
	}
}

func printAcquireHelp() {
	fmt.Println("Usage: browserctl acquire [options]")
	fmt.Println()
	fmt.Println("Start the system browser, or the cached headless shell when the system")
	fmt.Println("browser is unavailable, connect to it and print its details.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --arg FLAG      Extra browser flag (repeatable)")
	fmt.Println("  --no-sandbox    Disable the sandbox of the cached browser")
	fmt.Println("  --hold          Keep the browser running until interrupted")
	fmt.Println("  -h, --help      Show this help message")
}
