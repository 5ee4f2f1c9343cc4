package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ZebulonRouseFrantzich/browserctl/internal/binary"
)

// onlyHelp reports whether args ask for help, rejecting anything else.
func onlyHelp(args []string) (bool, error) {
	help := false
	for _, arg := range args {
		switch arg {
		case "--help", "-h":
			help = true
		default:
			return false, fmt.Errorf("unknown option: %s", arg)
		}
	}
	return help, nil
}

// runInstall handles the `browserctl install` subcommand
func runInstall(args []string) error {
	help, err := onlyHelp(args)
	if err != nil {
		return err
	}
	if help {
		fmt.Println("Usage: browserctl install")
		fmt.Println()
		fmt.Println("Resolve the configured channel and download the headless shell")
		fmt.Println("into the cache unless it is already there.")
		return nil
	}

	// Downloads can be slow on poor connections
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.manager.WaitEvictions()

	rec, err := a.manager.LookupInstalled(ctx)
	if err != nil {
		return err
	}
	if rec == nil {
		if rec, err = a.manager.Install(ctx); err != nil {
			return err
		}
	}

	fmt.Printf("✓ %s %s\n", binary.BrowserName, rec.BuildID)
	fmt.Printf("  %s\n", rec.ExecutablePath)
	return nil
}

// runList handles the `browserctl list` subcommand
func runList(args []string) error {
	help, err := onlyHelp(args)
	if err != nil {
		return err
	}
	if help {
		fmt.Println("Usage: browserctl list")
		fmt.Println()
		fmt.Println("List the browser builds in the cache.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	records, err := a.manager.Installed()
	if err != nil {
		return err
	}

	preferred := ""
	if len(records) > 0 {
		build, err := a.manager.Resolve(ctx)
		if err != nil {
			a.logger.Debug("could not resolve preferred build", "error", err)
		} else {
			preferred = build.BuildID
		}
	}
	printRecords(os.Stdout, a.manager.CacheDir(), records, preferred)
	return nil
}

// runPrune handles the `browserctl prune` subcommand
func runPrune(args []string) error {
	help, err := onlyHelp(args)
	if err != nil {
		return err
	}
	if help {
		fmt.Println("Usage: browserctl prune")
		fmt.Println()
		fmt.Println("Remove cached builds other than the one the configured channel resolves to.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	removed, err := a.manager.Prune(ctx)
	if len(removed) == 0 && err == nil {
		fmt.Println("Nothing to prune.")
		return nil
	}
	for _, rec := range removed {
		fmt.Printf("removed %s (%s)\n", rec.BuildID, rec.Platform)
	}
	return err
}

// printRecords lists cached builds, one per line, marking the preferred
// build with an asterisk.
func printRecords(w io.Writer, cacheDir string, records []binary.InstalledBrowser, preferred string) {
	if len(records) == 0 {
		fmt.Fprintf(w, "No browsers cached in %s\n", cacheDir)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "To download one:")
		fmt.Fprintln(w, "  browserctl install")
		return
	}

	fmt.Fprintf(w, "Cached browsers in %s:\n", cacheDir)
	fmt.Fprintln(w)
	for _, rec := range records {
		mark := " "
		if rec.BuildID == preferred {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %-16s %-10s %s\n", mark, rec.BuildID, rec.Platform, rec.ExecutablePath)
	}
}
