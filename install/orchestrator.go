// Package install implements the Installer Orchestrator state machine
// (spec §4.8) and Remove (spec §4.9): it is the only package that wires
// together archive, registry, store, resolve, and materialize.
package install

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkgforge/debpm/archive"
	"github.com/pkgforge/debpm/config"
	"github.com/pkgforge/debpm/deb"
	"github.com/pkgforge/debpm/dpkgerr"
	"github.com/pkgforge/debpm/event"
	"github.com/pkgforge/debpm/materialize"
	"github.com/pkgforge/debpm/registry"
	"github.com/pkgforge/debpm/resolve"
	"github.com/pkgforge/debpm/store"
)

// recencyWindow is how fresh a Persistent Store directory's mtime must be
// to suppress a duplicate-install message (spec §4.8 DupeCheck: "recency:
// if Persistent Store directory's mtime is within 5 seconds of now,
// suppress message").
const recencyWindow = 5 * time.Second

// Orchestrator holds the two registries and the collaborators an install
// or remove call needs. One Orchestrator corresponds to one running
// debpm process.
type Orchestrator struct {
	Installed   *registry.Registry
	InFlight    *registry.Registry
	Store       *store.Store
	StagingRoot string
	InstallRoot string
	Listener    event.Listener
}

// New builds an Orchestrator from cfg, loading every currently installed
// package from the Persistent Store into the Installed registry.
func New(cfg config.Config, listener event.Listener) (*Orchestrator, error) {
	s := store.New(cfg.StoreRoot)
	records, err := s.LoadAll()
	if err != nil {
		return nil, err
	}

	installed := registry.New()
	for _, rec := range records {
		installed.Insert(rec.Name, rec)
	}

	return &Orchestrator{
		Installed:   installed,
		InFlight:    registry.New(),
		Store:       s,
		StagingRoot: cfg.StagingRoot,
		InstallRoot: cfg.InstallRoot,
		Listener:    listener,
	}, nil
}

// Install expands pathOrPattern (ResolvePath: a glob pattern or a concrete
// path) and installs each match at the given top-level/force flags,
// returning every Record newly added to the Installed registry (including
// ones pulled in recursively by the Sibling Finder) along with any error
// from the first failing archive.
func (o *Orchestrator) Install(pathOrPattern string, topLevel, force bool) ([]*deb.Record, error) {
	matches, err := resolvePath(pathOrPattern)
	if err != nil {
		return nil, err
	}

	before := map[string]bool{}
	o.Installed.Each(func(name string, _ *deb.Record) { before[name] = true })

	var firstErr error
	for _, path := range matches {
		if _, err := o.installOne(path, topLevel, force); err != nil {
			firstErr = err
			break
		}
	}

	var installed []*deb.Record
	o.Installed.Each(func(name string, rec *deb.Record) {
		if !before[name] {
			installed = append(installed, rec)
		}
	})
	return installed, firstErr
}

// resolvePath implements the ResolvePath state: glob expansion for
// wildcard patterns, a direct pass-through for a concrete file, and an
// error for anything else (directories, missing files).
func resolvePath(pathOrPattern string) ([]string, error) {
	if strings.ContainsAny(pathOrPattern, "*?[") {
		matches, err := filepath.Glob(pathOrPattern)
		if err != nil {
			return nil, &dpkgerr.FormatError{Context: pathOrPattern, Reason: "invalid glob pattern", Err: err}
		}
		if len(matches) == 0 {
			return nil, &dpkgerr.IoError{Op: "glob", Path: pathOrPattern, Err: os.ErrNotExist}
		}
		return matches, nil
	}

	info, err := os.Stat(pathOrPattern)
	if err != nil {
		return nil, &dpkgerr.IoError{Op: "stat", Path: pathOrPattern, Err: err}
	}
	if info.IsDir() {
		return nil, &dpkgerr.FormatError{Context: pathOrPattern, Reason: "is a directory, not a .deb file"}
	}
	return []string{pathOrPattern}, nil
}

// installOne runs a single install call through the full state machine
// (spec §4.8). A nil Record with a nil error means the call was skipped
// (FastCheck, DupeCheck-in-flight, or DupeCheck-installed).
func (o *Orchestrator) installOne(path string, topLevel, force bool) (*deb.Record, error) {
	// FastCheck: skip extraction entirely when the filename already tells
	// us this exact version is installed (spec §9 "Fast-path filename
	// parsing").
	if name, version, ok := fastParseFilename(path); ok && !force {
		if rec, found := o.Installed.Lookup(name); found && deb.Equal(rec.Version, version) {
			if topLevel {
				event.Emit(o.Listener, event.EventPackageSkipped{Package: name, Have: rec.Version, Want: version})
			}
			return nil, nil
		}
	}

	rec, err := archive.Extract(path, o.StagingRoot)
	if err != nil {
		return nil, err
	}
	stageDir := filepath.Join(o.StagingRoot, strings.TrimSuffix(filepath.Base(path), ".deb"))
	defer os.RemoveAll(stageDir)

	event.Emit(o.Listener, event.EventArchiveExtracted{Path: path, Package: rec.Name, Version: rec.Version})

	// DupeCheck.
	if _, inFlight := o.InFlight.Lookup(rec.Name); inFlight {
		return nil, nil // recursion break
	}

	if existing, found := o.Installed.Lookup(rec.Name); found {
		if !force {
			if !o.isRecentInstall(existing) && topLevel {
				event.Emit(o.Listener, event.EventPackageSkipped{Package: rec.Name, Have: existing.Version, Want: rec.Version})
			}
			return nil, nil
		}
		// Upgrade: drop the old version from Installed and the Store before
		// proceeding; the new version replaces it below.
		event.Emit(o.Listener, event.EventPackageUpgrading{Package: rec.Name, From: existing.Version, To: rec.Version})
		o.Store.Remove(existing.Name, existing.Version)
		o.Installed.Remove(existing.Name)
	}

	// MarkInFlight.
	o.InFlight.Insert(rec.Name, rec)
	defer o.InFlight.Remove(rec.Name)

	// ResolveDeps.
	expr := resolve.Parse(rec.Depends)
	attempted := map[string]bool{}
	unsatisfied, err := resolve.Evaluate(expr, resolve.Options{
		Installed:        o.Installed,
		InFlight:         o.InFlight,
		OriginatingPath:  path,
		Force:            force,
		TopLevel:         topLevel,
		Attempted:        attempted,
		Install:          func(p string) (*deb.Record, error) { return o.installOne(p, false, false) },
		Listener:         o.Listener,
		DependentPackage: rec.Name,
	})
	if err != nil {
		return nil, err
	}
	if len(unsatisfied) > 0 && !force {
		atoms := make([]string, len(unsatisfied))
		for i, a := range unsatisfied {
			atoms[i] = a.String()
		}
		return nil, &dpkgerr.DependencyError{Package: rec.Name, Atom: strings.Join(atoms, ", "), Reason: "unsatisfied dependencies"}
	}

	// Persist.
	if err := o.Store.WriteInfo(rec.Name, rec.Version, rec); err != nil {
		return nil, err
	}

	// AddInstalled.
	o.Installed.Insert(rec.Name, rec)

	// Materialize.
	result := materialize.Materialize(rec.DataDir, o.InstallRoot, rec.Name, rec.Files, o.Listener)

	// Finish.
	if err := o.Store.RebuildAutocompleteIndex(); err != nil {
		return rec, err
	}
	event.Emit(o.Listener, event.EventPackageInstalled{
		Package: rec.Name, Version: rec.Version, Architecture: rec.Architecture, FilesWritten: result.FilesWritten,
	})

	return rec, nil
}

// isRecentInstall reports whether rec's Persistent Store directory was
// created within the last recencyWindow, used to suppress noisy repeated
// skip messages for fast successive install calls of the same package
// (spec §4.8 DupeCheck recency rule).
func (o *Orchestrator) isRecentInstall(rec *deb.Record) bool {
	dir := o.Store.GetPath(rec.Name, rec.Version)
	info, err := os.Stat(dir)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) < recencyWindow
}

// fastParseFilename extracts name and version from a standard
// name_version_arch.deb basename without opening the archive.
func fastParseFilename(path string) (name, version string, ok bool) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".deb")
	parts := strings.SplitN(base, "_", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Remove implements spec §4.9: delete the Persistent Store subtree, remove
// from Installed, and rebuild the autocomplete index. It does not touch
// any file materialized under the system install root.
func (o *Orchestrator) Remove(name string) error {
	rec, ok := o.Installed.Lookup(name)
	if !ok {
		return &dpkgerr.RegistryError{Package: name, Reason: "not installed"}
	}

	if err := o.Store.Remove(name, rec.Version); err != nil {
		return err
	}
	o.Installed.Remove(name)

	if err := o.Store.RebuildAutocompleteIndex(); err != nil {
		return err
	}

	event.Emit(o.Listener, event.EventPackageRemoved{Package: name, Version: rec.Version})
	return nil
}
