package main

import (
	"fmt"
	"os"
)

// Version will be set at build time via -ldflags
var Version = "v0.0.1-alpha"

func main() {
	// npm-style proxy settings must be in place before the first HTTP client reads them
	if _, err := applyProxyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(os.Args) > 1 {
		var err error
		switch os.Args[1] {
		case "--version":
			fmt.Printf("browserctl %s\n", Version)
			return
		case "--help", "-h", "help":
			printUsage()
			return
		case "acquire":
			err = runAcquire(os.Args[2:])
		case "install":
			err = runInstall(os.Args[2:])
		case "list":
			err = runList(os.Args[2:])
		case "prune":
			err = runPrune(os.Args[2:])
		case "config":
			err = runConfig(os.Args[2:])
		default:
			fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n", os.Args[1])
			printUsage()
			os.Exit(1)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printUsage()
}

func printUsage() {
	fmt.Println("browserctl - acquire a DevTools-controllable browser")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  browserctl --version              Show version information")
	fmt.Println("  browserctl acquire [options]      Start a browser and print its details")
	fmt.Println("  browserctl install                Download the headless shell into the cache")
	fmt.Println("  browserctl list                   List cached browser builds")
	fmt.Println("  browserctl prune                  Remove cached builds other than the resolved one")
	fmt.Println("  browserctl config                 Print the effective configuration")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  BROWSERCTL_CONFIG      Config file (default: <user config dir>/browserctl/browserctl.lua)")
	fmt.Println("  BROWSERCTL_CACHE_DIR   Browser cache directory")
	fmt.Println("  CHROME_PATH            System browser to try first")
	fmt.Println("  BROWSERCTL_DEBUG       Enable debug logging")
}
