package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pkgforge/debpm/config"
	"github.com/pkgforge/debpm/dpkgerr"
	"github.com/pkgforge/debpm/install"
)

func runInstall(args []string) int {
	fs := flag.NewFlagSet("install", flag.ContinueOnError)
	verbose := fs.Bool("verbose", false, "also print an Unpacking line and a written-file count per install")
	veryVerbose := fs.Bool("very-verbose", false, "also print one line per materialized file")
	force := fs.Bool("force", false, "skip DupeCheck and unsatisfied-dependency failures")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	paths, err := expandInstallArgs(fs.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, "debpm install:", err)
		return exitIoError
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "debpm install: no .deb paths given")
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "debpm install: loading config:", err)
		return exitCodeFor(err)
	}

	o, err := install.New(cfg, newListener(*verbose, *veryVerbose))
	if err != nil {
		fmt.Fprintln(os.Stderr, "debpm install:", err)
		return exitCodeFor(err)
	}

	code := exitOK
	for _, path := range paths {
		if _, err := o.Install(path, true, *force); err != nil {
			fmt.Fprintln(os.Stderr, "debpm install:", err)
			if de, ok := err.(*dpkgerr.DependencyError); ok {
				fmt.Fprintln(os.Stderr, "  unsatisfied:", de.Atom)
			}
			code = exitCodeFor(err)
		}
	}
	return code
}

// expandInstallArgs resolves the "-" (stdin list) and "@file" (list from
// file) argument forms alongside plain paths (spec §6 "Invocation
// surface").
func expandInstallArgs(args []string) ([]string, error) {
	var paths []string
	for _, a := range args {
		switch {
		case a == "-":
			lines, err := readLines(os.Stdin)
			if err != nil {
				return nil, err
			}
			paths = append(paths, lines...)
		case strings.HasPrefix(a, "@"):
			f, err := os.Open(a[1:])
			if err != nil {
				return nil, err
			}
			lines, err := readLines(f)
			f.Close()
			if err != nil {
				return nil, err
			}
			paths = append(paths, lines...)
		default:
			paths = append(paths, a)
		}
	}
	return paths, nil
}

func readLines(r *os.File) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

func exitCodeFor(err error) int {
	switch err.(type) {
	case *dpkgerr.IoError:
		return exitIoError
	case *dpkgerr.FormatError:
		return exitFormatError
	case *dpkgerr.DependencyError:
		return exitDependencyError
	case *dpkgerr.RegistryError:
		return exitRegistryError
	default:
		return exitOther
	}
}
