package main

import (
	"context"
	"fmt"

	"github.com/ZebulonRouseFrantzich/browserctl/internal/config"
)

// runConfig handles the `browserctl config` subcommand
func runConfig(args []string) error {
	help, err := onlyHelp(args)
	if err != nil {
		return err
	}
	if help {
		fmt.Println("Usage: browserctl config")
		fmt.Println()
		fmt.Println("Print the effective configuration as a config file. Values come from")
		fmt.Println("the defaults, the config file and the environment, in that order.")
		return nil
	}

	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	if a.configPath != "" {
		fmt.Printf("-- loaded from %s\n", a.configPath)
	}
	fmt.Print(config.NewGenerator().Generate(a.cfg))
	return nil
}
