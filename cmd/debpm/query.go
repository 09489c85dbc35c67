package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkgforge/debpm/config"
	"github.com/pkgforge/debpm/deb"
	"github.com/pkgforge/debpm/install"
)

// loadInstalled is shared by the read-only query subcommands: it loads the
// config cascade and every currently installed Record, without emitting any
// diagnostics (these subcommands never install or remove anything).
func loadInstalled() ([]*deb.Record, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	o, err := install.New(cfg, nil)
	if err != nil {
		return nil, err
	}
	var records []*deb.Record
	o.Installed.Each(func(_ string, rec *deb.Record) { records = append(records, rec) })
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	pattern := ""
	if fs.NArg() > 0 {
		pattern = fs.Arg(0)
	}

	records, err := loadInstalled()
	if err != nil {
		fmt.Fprintln(os.Stderr, "debpm list:", err)
		return exitCodeFor(err)
	}
	for _, rec := range records {
		if pattern != "" {
			matched, err := filepath.Match(pattern, rec.Name)
			if err != nil {
				fmt.Fprintln(os.Stderr, "debpm list: invalid glob pattern:", err)
				return exitUsage
			}
			if !matched {
				continue
			}
		}
		fmt.Printf("%s\t%s\t%s\n", rec.Name, rec.Version, rec.Architecture)
	}
	return exitOK
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "debpm status: expected exactly one package name")
		return exitUsage
	}
	name := fs.Arg(0)

	records, err := loadInstalled()
	if err != nil {
		fmt.Fprintln(os.Stderr, "debpm status:", err)
		return exitCodeFor(err)
	}
	for _, rec := range records {
		if rec.Name != name {
			continue
		}
		fmt.Printf("Package: %s\n", rec.Name)
		fmt.Printf("Version: %s\n", rec.Version)
		fmt.Printf("Architecture: %s\n", rec.Architecture)
		if rec.Maintainer != "" {
			fmt.Printf("Maintainer: %s\n", rec.Maintainer)
		}
		if rec.Description != "" {
			fmt.Printf("Description: %s\n", rec.Description)
		}
		if rec.Depends != "" {
			fmt.Printf("Depends: %s\n", rec.Depends)
		}
		fmt.Printf("Files: %d\n", len(rec.Files))
		return exitOK
	}
	fmt.Fprintf(os.Stderr, "debpm status: %s is not installed\n", name)
	return exitRegistryError
}

func runFiles(args []string) int {
	fs := flag.NewFlagSet("files", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "debpm files: expected exactly one package name")
		return exitUsage
	}
	name := fs.Arg(0)

	records, err := loadInstalled()
	if err != nil {
		fmt.Fprintln(os.Stderr, "debpm files:", err)
		return exitCodeFor(err)
	}
	for _, rec := range records {
		if rec.Name != name {
			continue
		}
		for _, f := range rec.Files {
			fmt.Println(f.Path)
		}
		return exitOK
	}
	fmt.Fprintf(os.Stderr, "debpm files: %s is not installed\n", name)
	return exitRegistryError
}

func runSearch(args []string) int {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "debpm search: expected exactly one path substring")
		return exitUsage
	}
	substr := fs.Arg(0)

	records, err := loadInstalled()
	if err != nil {
		fmt.Fprintln(os.Stderr, "debpm search:", err)
		return exitCodeFor(err)
	}
	for _, rec := range records {
		for _, f := range rec.Files {
			if strings.Contains(f.Path, substr) {
				fmt.Printf("%s: %s\n", rec.Name, f.Path)
			}
		}
	}
	return exitOK
}
