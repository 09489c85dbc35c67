package main

import (
	"fmt"
	"os"

	"github.com/pkgforge/debpm/config"
	"github.com/pkgforge/debpm/store"
)

func runConfig(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "debpm config:", err)
		return exitCodeFor(err)
	}
	out, err := config.Marshal(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "debpm config:", err)
		return exitOther
	}
	os.Stdout.Write(out)
	return exitOK
}

func runConfigPath(args []string) int {
	fmt.Println(config.SystemConfigPath())
	fmt.Println(config.UserConfigPath())
	return exitOK
}

func runAutocompletePath(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "debpm autocomplete-path:", err)
		return exitCodeFor(err)
	}
	s := store.New(cfg.StoreRoot)
	fmt.Println(s.AutocompleteIndexPath())
	return exitOK
}
