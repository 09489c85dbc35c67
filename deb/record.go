package deb

import (
	"fmt"
	"strings"
)

// EntryKind distinguishes the three file kinds the Materializer restores,
// plus KindOther for anything else. The kind is re-derived from lstat at
// materialization time, so FileEntry itself never stores it. No package in
// this module refers to EntryKind at present: package materialize labels
// kinds with plain strings ("dir", "file", "symlink").
type EntryKind int

const (
	KindDirectory EntryKind = iota
	KindRegular
	KindSymlink
	KindOther
)

// FileEntry is one payload-relative path produced by the Archive Reader's
// walk of the extracted data directory.
type FileEntry struct {
	// Path is relative to the data root, e.g. "usr/bin/foo".
	Path string
}

// Record is the canonical in-memory shape of a parsed package: name,
// version, architecture, dependency expression, file list, and staging
// paths. All string fields are optional except Name and Version.
type Record struct {
	Name         string
	Version      string
	Architecture string
	Maintainer   string
	Description  string

	// Depends is the raw dependency expression string, parsed on demand by
	// package resolve. Kept raw here because the grammar it is written in
	// (comma-separated alternatives of pipe-separated atoms) is a resolver
	// concern, not a record concern.
	Depends string

	InstalledSizeKB int64
	Section         string
	Priority        string
	Homepage        string

	// SourceFilename is the path to the .deb this Record was read from, if
	// any. The Persistent Store saves it as the "Source" field, so a Record
	// loaded from the Store carries the path recorded at install time.
	SourceFilename string

	// Files is the ordered sequence of payload-relative paths materialized
	// under the system install root for this package.
	Files []FileEntry

	// ControlDir and DataDir are the staging directories holding the
	// extracted control.tar.* and data.tar.* trees, respectively. They are
	// empty for a Record loaded from the Persistent Store; the orchestrator
	// deletes the staging directory when an install call returns but does
	// not clear these fields.
	ControlDir string
	DataDir    string

	// ExtraFields holds unknown control fields, preserved verbatim but
	// ignored by downstream components (spec §4.1 step 3).
	ExtraFields map[string]string
}

// StandardFilename returns the canonical filename for the package:
// {Name}_{Version}_{Architecture}.deb.
func (r *Record) StandardFilename() string {
	return fmt.Sprintf("%s_%s_%s.deb", r.Name, r.Version, r.Architecture)
}

// UpstreamVersion returns everything in Version before the last hyphen.
func (r *Record) UpstreamVersion() string {
	if i := strings.LastIndex(r.Version, "-"); i != -1 {
		return r.Version[:i]
	}
	return r.Version
}

// Iteration returns the Debian revision part of Version (everything after
// the last hyphen), or "" if there is none.
func (r *Record) Iteration() string {
	if i := strings.LastIndex(r.Version, "-"); i != -1 {
		return r.Version[i+1:]
	}
	return ""
}

// Set updates a single control field by name, routing known fields to their
// struct slot and everything else into ExtraFields. Mirrors the teacher's
// Package.Set dispatch.
func (r *Record) Set(key, value string) {
	switch ControlField(key) {
	case FieldPackage:
		r.Name = value
	case FieldVersion:
		r.Version = value
	case FieldArchitecture:
		r.Architecture = value
	case FieldMaintainer:
		r.Maintainer = value
	case FieldDescription:
		r.Description = value
	case FieldSection:
		r.Section = value
	case FieldPriority:
		r.Priority = value
	case FieldHomepage:
		r.Homepage = value
	case FieldDepends:
		r.Depends = value
	case FieldInstalledSize:
		// Installed-Size from the archive's control file is not trusted and
		// is dropped; InstalledSizeKB is left unchanged.
	default:
		if r.ExtraFields == nil {
			r.ExtraFields = make(map[string]string)
		}
		r.ExtraFields[key] = value
	}
}

// ValidName reports whether name is a syntactically valid package name: at
// least one character, starting with an ASCII letter (either case) or digit,
// and composed only of letters, digits, '+', '.', and '-'.
func ValidName(name string) bool {
	if len(name) == 0 {
		return false
	}
	first := name[0]
	if !isAlnum(first) {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isAlnum(c) || c == '+' || c == '.' || c == '-' {
			continue
		}
		return false
	}
	return true
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
