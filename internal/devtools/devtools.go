// Package devtools opens DevTools protocol connections to a browser, either
// to one that is already running or to one it starts itself.
package devtools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"github.com/ZebulonRouseFrantzich/browserctl/internal/logging"
)

// Handle is a live connection to a browser.
type Handle interface {
	// Context carries the connection; pass it to chromedp.Run.
	Context() context.Context
	// Version reports the connected browser's product string.
	Version(ctx context.Context) (string, error)
	// Disconnect drops the connection and leaves the browser running.
	Disconnect() error
	// Close shuts the browser down through the protocol.
	Close(ctx context.Context) error
}

// LaunchOptions configures a browser started by Connector.Launch.
type LaunchOptions struct {
	ExecPath string
	// Args are extra command line flags, "--name" or "--name=value".
	Args      []string
	NoSandbox bool
}

// Connector creates handles.
type Connector struct {
	logger logging.Logger
}

// NewConnector creates a connector logging protocol errors at debug level.
func NewConnector(logger logging.Logger) *Connector {
	return &Connector{logger: logging.OrNoop(logger)}
}

// Connect attaches to a running browser's WebSocket debugger URL. The
// handle is not bound to ctx's cancellation.
func (c *Connector) Connect(ctx context.Context, wsURL string) (Handle, error) {
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(context.WithoutCancel(ctx), wsURL, chromedp.NoModifyURL)
	return c.start(ctx, allocCtx, allocCancel, "connect to "+wsURL)
}

// Launch starts the browser at opts.ExecPath and connects to it. The
// browser process belongs to the handle and exits on Close.
func (c *Connector) Launch(ctx context.Context, opts LaunchOptions) (Handle, error) {
	if opts.ExecPath == "" {
		return nil, fmt.Errorf("launch browser: executable path is required")
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), execAllocatorOptions(opts)...)
	return c.start(ctx, allocCtx, allocCancel, "launch "+opts.ExecPath)
}

func (c *Connector) start(ctx context.Context, allocCtx context.Context, allocCancel context.CancelFunc, what string) (Handle, error) {
	browserCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithErrorf(c.debugf))

	// An empty Run establishes the connection (and starts the process for
	// exec allocators). Abort it if ctx ends first.
	stop := context.AfterFunc(ctx, cancel)
	err := chromedp.Run(browserCtx)
	stop()
	if err != nil {
		cancel()
		allocCancel()
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", what, err)
	}

	return &handle{ctx: browserCtx, cancel: cancel, allocCancel: allocCancel}, nil
}

func (c *Connector) debugf(format string, args ...interface{}) {
	c.logger.Debug(fmt.Sprintf(format, args...), "component", "devtools")
}

// execAllocatorOptions layers caller flags over chromedp's defaults.
func execAllocatorOptions(opts LaunchOptions) []chromedp.ExecAllocatorOption {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	for _, arg := range opts.Args {
		name, value, ok := parseFlag(arg)
		if !ok {
			continue
		}
		allocOpts = append(allocOpts, chromedp.Flag(name, value))
	}
	if opts.NoSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox, chromedp.Flag("disable-setuid-sandbox", true))
	}
	return allocOpts
}

// parseFlag splits "--name=value" into name and value; a bare "--name"
// has value true.
func parseFlag(arg string) (string, interface{}, bool) {
	arg = strings.TrimLeft(arg, "-")
	if arg == "" {
		return "", nil, false
	}
	name, value, found := strings.Cut(arg, "=")
	if name == "" {
		return "", nil, false
	}
	if !found {
		return name, true, true
	}
	return name, value, true
}

type handle struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	once        sync.Once
}

func (h *handle) Context() context.Context {
	return h.ctx
}

func (h *handle) Version(ctx context.Context) (string, error) {
	c := chromedp.FromContext(h.ctx)
	if c == nil || c.Browser == nil {
		return "", chromedp.ErrInvalidContext
	}
	// Route the call through the browser executor, cancelled by either ctx.
	execCtx, cancel := context.WithCancel(cdp.WithExecutor(h.ctx, c.Browser))
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	_, product, _, _, _, err := browser.GetVersion().Do(execCtx)
	if err != nil {
		return "", fmt.Errorf("get browser version: %w", err)
	}
	return product, nil
}

func (h *handle) Disconnect() error {
	h.once.Do(func() {
		h.cancel()
		h.allocCancel()
	})
	return nil
}

func (h *handle) Close(ctx context.Context) error {
	var err error
	h.once.Do(func() {
		done := make(chan error, 1)
		go func() { done <- chromedp.Cancel(h.ctx) }()
		select {
		case err = <-done:
		case <-ctx.Done():
			err = ctx.Err()
		}
		h.allocCancel()
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	})
	if err != nil {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}
