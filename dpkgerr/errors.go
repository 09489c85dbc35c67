// Package dpkgerr defines the typed error taxonomy returned by the
// installer's components: IoError, FormatError, DependencyError,
// AlreadyInstalled, and RegistryError. Each carries enough context to build
// a useful diagnostic and wraps its cause for errors.Is/As.
package dpkgerr

import "fmt"

// IoError reports a filesystem operation failure: an unreadable file, a
// failed mkdir, a write that didn't complete.
type IoError struct {
	Op   string // e.g. "open", "read", "write", "mkdir"
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("io: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// FormatError reports that input claiming to be a Debian package (or a
// control stanza, or a Persistent Store info file) does not conform to the
// expected grammar: not an ar archive, missing a required member,
// unsupported compression, malformed control text.
type FormatError struct {
	Context string // what was being parsed, e.g. "control.tar member" or ".deb ar container"
	Reason  string
	Err     error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("format: %s: %s: %v", e.Context, e.Reason, e.Err)
	}
	return fmt.Sprintf("format: %s: %s", e.Context, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }

// DependencyError reports that a dependency atom could not be satisfied by
// the Installed registry, the In-flight registry, or a sibling install.
type DependencyError struct {
	Package string // the package whose Depends line failed
	Atom    string // the unsatisfied atom(s), comma-joined when several, e.g. "libc6 (>= 2.31), bar"
	Reason  string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency: %s requires %q: %s", e.Package, e.Atom, e.Reason)
}

// AlreadyInstalled reports that an install was attempted for a package
// already present in the Installed registry at the same or a newer version
// (spec §4.8 DupeCheck), without -force.
type AlreadyInstalled struct {
	Package string
	Have    string
	Want    string
}

func (e *AlreadyInstalled) Error() string {
	return fmt.Sprintf("already installed: %s %s (requested %s)", e.Package, e.Have, e.Want)
}

// RegistryError reports an invariant violation in the Registry: a lookup or
// remove for a name present in neither Installed nor In-flight when the
// caller expected one, or a name found in both (spec invariant I1).
type RegistryError struct {
	Package string
	Reason  string
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("registry: %s: %s", e.Package, e.Reason)
}
