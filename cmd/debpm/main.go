// Command debpm is the CLI front end for the installer core: it wires
// config, install.Orchestrator, and an event.Listener that renders
// diagnostics the way familiar package tools do, then dispatches one of a
// fixed set of subcommands.
package main

import (
	"fmt"
	"os"
)

// Exit codes are stable per failure class (spec §6), not just "non-zero".
const (
	exitOK = iota
	exitUsage
	exitIoError
	exitFormatError
	exitDependencyError
	exitRegistryError
	exitOther
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return exitUsage
	}

	switch args[0] {
	case "-help", "--help", "help":
		printUsage()
		return exitOK
	case "-version", "--version", "version":
		fmt.Println("debpm", version)
		return exitOK
	case "install":
		return runInstall(args[1:])
	case "remove":
		return runRemove(args[1:])
	case "list":
		return runList(args[1:])
	case "status":
		return runStatus(args[1:])
	case "files":
		return runFiles(args[1:])
	case "search":
		return runSearch(args[1:])
	case "config":
		return runConfig(args[1:])
	case "config-path":
		return runConfigPath(args[1:])
	case "autocomplete-path":
		return runAutocompletePath(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "debpm: unknown command %q\n", args[0])
		printUsage()
		return exitUsage
	}
}

func printUsage() {
	fmt.Println(`Usage: debpm <command> [flags] [args]

Commands:
  install <path|-|@file>...  Install one or more .deb archives
  remove <name>              Remove an installed package by name
  list [glob]                List installed package names
  status <name>              Show the installed record for a package
  files <name>                List files materialized for a package
  search <substring>          Search installed files by path substring
  config                      Print the effective configuration
  config-path                  Print the config cascade file paths
  autocomplete-path            Print the autocomplete index path

Flags:
  -verbose        Also print an Unpacking line and a written-file count per install
  -very-verbose   Also print one line per materialized file
  -force          Skip DupeCheck and unsatisfied-dependency failures
  -version        Print the debpm version
  -help           Print this message`)
}
