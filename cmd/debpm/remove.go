package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkgforge/debpm/config"
	"github.com/pkgforge/debpm/install"
)

func runRemove(args []string) int {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	verbose := fs.Bool("verbose", false, "print diagnostics")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "debpm remove: expected exactly one package name")
		return exitUsage
	}
	name := fs.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "debpm remove: loading config:", err)
		return exitCodeFor(err)
	}

	o, err := install.New(cfg, newListener(*verbose, false))
	if err != nil {
		fmt.Fprintln(os.Stderr, "debpm remove:", err)
		return exitCodeFor(err)
	}

	if err := o.Remove(name); err != nil {
		fmt.Fprintln(os.Stderr, "debpm remove:", err)
		return exitCodeFor(err)
	}
	fmt.Fprintln(os.Stderr, "Note: materialized files under the install root are left in place.")
	return exitOK
}
