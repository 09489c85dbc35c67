// Package store implements the Persistent Store (spec §4.3): the on-disk
// record of installed packages under <root>/<name>/<version>/info, with
// atomic writes and a flat-text autocomplete index rebuilt after every
// successful install or remove.
//
// The info file's line-oriented "Key: value" shape deliberately mirrors
// package deb's control-file grammar (deb.WriteControl's writeField
// idiom), plus a trailing "Files:" section enumerating the payload-relative
// paths materialized under the system install root.
package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkgforge/debpm/deb"
	"github.com/pkgforge/debpm/dpkgerr"
)

const infoFilesHeader = "Files:"

// Store is a Persistent Store rooted at Root.
type Store struct {
	Root string
}

// New returns a Store rooted at root. root must be an absolute path.
func New(root string) *Store {
	return &Store{Root: root}
}

// GetPath returns <root>/<name>/<version>.
func (s *Store) GetPath(name, version string) string {
	return filepath.Join(s.Root, name, version)
}

// CreateDir ensures <root>/<name>/<version> exists.
func (s *Store) CreateDir(name, version string) error {
	dir := s.GetPath(name, version)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &dpkgerr.IoError{Op: "mkdir", Path: dir, Err: err}
	}
	return nil
}

// WriteInfo serializes rec's scalar fields and file list into
// <root>/<name>/<version>/info, writing to info.tmp first and renaming
// over info so a crash never leaves a partially-written file in place.
func (s *Store) WriteInfo(name, version string, rec *deb.Record) error {
	if err := s.CreateDir(name, version); err != nil {
		return err
	}
	dir := s.GetPath(name, version)
	final := filepath.Join(dir, "info")
	tmp := final + ".tmp"

	content := renderInfo(rec)
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return &dpkgerr.IoError{Op: "write", Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, final); err != nil {
		return &dpkgerr.IoError{Op: "rename", Path: final, Err: err}
	}
	return nil
}

// Remove deletes <root>/<name>/<version> entirely.
func (s *Store) Remove(name, version string) error {
	dir := s.GetPath(name, version)
	if err := os.RemoveAll(dir); err != nil {
		return &dpkgerr.IoError{Op: "remove", Path: dir, Err: err}
	}
	// Clean up the now-possibly-empty <root>/<name> directory; harmless if
	// other versions remain (os.Remove fails on a non-empty directory and
	// its error is ignored).
	os.Remove(filepath.Join(s.Root, name))
	return nil
}

// LoadAll walks the Store root and returns every installed Record it finds.
// Malformed info files are skipped rather than failing the whole walk.
func (s *Store) LoadAll() ([]*deb.Record, error) {
	var records []*deb.Record

	nameEntries, err := os.ReadDir(s.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return records, nil
		}
		return nil, &dpkgerr.IoError{Op: "readdir", Path: s.Root, Err: err}
	}

	for _, nameEntry := range nameEntries {
		if !nameEntry.IsDir() {
			continue
		}
		versionDir := filepath.Join(s.Root, nameEntry.Name())
		versionEntries, err := os.ReadDir(versionDir)
		if err != nil {
			continue
		}
		for _, versionEntry := range versionEntries {
			if !versionEntry.IsDir() {
				continue
			}
			infoPath := filepath.Join(versionDir, versionEntry.Name(), "info")
			content, err := os.ReadFile(infoPath)
			if err != nil {
				continue
			}
			rec, err := parseInfo(string(content))
			if err != nil {
				continue
			}
			records = append(records, rec)
		}
	}
	return records, nil
}

// RebuildAutocompleteIndex regenerates <root>/.autocomplete, a flat text
// file of installed package names, one per line, sorted for determinism.
func (s *Store) RebuildAutocompleteIndex() error {
	records, err := s.LoadAll()
	if err != nil {
		return err
	}
	names := make([]string, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if !seen[r.Name] {
			seen[r.Name] = true
			names = append(names, r.Name)
		}
	}
	sort.Strings(names)

	path := filepath.Join(s.Root, ".autocomplete")
	tmp := path + ".tmp"
	content := strings.Join(names, "\n")
	if len(names) > 0 {
		content += "\n"
	}
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return &dpkgerr.IoError{Op: "mkdir", Path: s.Root, Err: err}
	}
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return &dpkgerr.IoError{Op: "write", Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		return &dpkgerr.IoError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

// AutocompleteIndexPath returns the path RebuildAutocompleteIndex writes.
func (s *Store) AutocompleteIndexPath() string {
	return filepath.Join(s.Root, ".autocomplete")
}

func renderInfo(rec *deb.Record) string {
	var b strings.Builder
	writeField := func(field deb.ControlField, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", field, value)
		}
	}

	writeField(deb.FieldPackage, rec.Name)
	writeField(deb.FieldVersion, rec.Version)
	writeField(deb.FieldArchitecture, rec.Architecture)
	writeField(deb.FieldMaintainer, rec.Maintainer)
	writeField(deb.FieldDescription, rec.Description)
	writeField(deb.FieldDepends, rec.Depends)
	if rec.InstalledSizeKB > 0 {
		fmt.Fprintf(&b, "%s: %d\n", deb.FieldInstalledSize, rec.InstalledSizeKB)
	}
	writeField(deb.FieldSection, rec.Section)
	writeField(deb.FieldPriority, rec.Priority)
	writeField(deb.FieldHomepage, rec.Homepage)
	writeField(deb.FieldSource, rec.SourceFilename)

	fmt.Fprintln(&b, infoFilesHeader)
	for _, f := range rec.Files {
		fmt.Fprintf(&b, " %s\n", f.Path)
	}
	return b.String()
}

func parseInfo(content string) (*deb.Record, error) {
	rec := &deb.Record{}
	scanner := bufio.NewScanner(strings.NewReader(content))
	inFiles := false

	for scanner.Scan() {
		line := scanner.Text()
		if line == infoFilesHeader {
			inFiles = true
			continue
		}
		if inFiles {
			if strings.HasPrefix(line, " ") {
				rec.Files = append(rec.Files, deb.FileEntry{Path: strings.TrimPrefix(line, " ")})
			}
			continue
		}
		idx := strings.Index(line, ":")
		if idx == -1 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		switch deb.ControlField(key) {
		case deb.FieldInstalledSize:
			if n, err := strconv.ParseInt(value, 10, 64); err == nil {
				rec.InstalledSizeKB = n
			}
		case deb.FieldSource:
			rec.SourceFilename = value
		default:
			rec.Set(key, value)
		}
	}
	if rec.Name == "" || rec.Version == "" {
		return nil, fmt.Errorf("info file missing Package or Version")
	}
	return rec, nil
}
