package resolve

import (
	"strings"

	"github.com/pkgforge/debpm/deb"
	"github.com/pkgforge/debpm/event"
	"github.com/pkgforge/debpm/registry"
)

// Atom is one dependency alternative: a bare package name, or a name
// constrained by a Debian version-ordering operator.
type Atom struct {
	Name       string
	Op         string // "", "<<", "<=", "=", ">=", ">>"
	Constraint string // version to compare against; empty when Op is empty
}

func (a Atom) String() string {
	if a.Op == "" {
		return a.Name
	}
	return a.Name + " (" + a.Op + " " + a.Constraint + ")"
}

// Alternative is a pipe-separated list of atoms; satisfied if any one
// atom is satisfied.
type Alternative []Atom

// Expression is a comma-separated list of alternatives; all must be
// satisfied for the expression as a whole to be satisfied.
type Expression []Alternative

// Parse parses a raw Depends-style string into an Expression (spec §4.4
// "Dependency grammar"). Malformed atoms are kept as bare-name atoms
// rather than causing Parse to fail — the grammar is deliberately
// permissive since this is evaluated on user-controlled archive metadata.
func Parse(raw string) Expression {
	var expr Expression
	for _, altText := range deb.SplitList(raw) {
		var alt Alternative
		for _, atomText := range strings.Split(altText, "|") {
			atomText = strings.TrimSpace(atomText)
			if atomText == "" {
				continue
			}
			alt = append(alt, parseAtom(atomText))
		}
		if len(alt) > 0 {
			expr = append(expr, alt)
		}
	}
	return expr
}

func parseAtom(text string) Atom {
	open := strings.IndexByte(text, '(')
	if open == -1 {
		return Atom{Name: strings.TrimSpace(text)}
	}
	closeIdx := strings.IndexByte(text, ')')
	if closeIdx == -1 || closeIdx < open {
		return Atom{Name: strings.TrimSpace(text)}
	}
	name := strings.TrimSpace(text[:open])
	inner := strings.TrimSpace(text[open+1 : closeIdx])
	fields := strings.Fields(inner)
	if len(fields) != 2 {
		return Atom{Name: name}
	}
	return Atom{Name: name, Op: fields[0], Constraint: fields[1]}
}

// Source identifies where an atom's satisfaction came from, for
// diagnostics (event.EventDependencyResolved.Via).
const (
	ViaInstalled = "installed"
	ViaInFlight  = "in-flight"
	ViaSibling   = "sibling"
)

// InstallFunc recursively installs the .deb at path, flagged as non-top-
// level; it is supplied by package install to avoid an import cycle
// between resolve and install. It returns the installed Record, or a nil
// Record with a nil error when the install call was skipped.
type InstallFunc func(path string) (*deb.Record, error)

// Options configures one Evaluate call.
type Options struct {
	Installed        *registry.Registry
	InFlight         *registry.Registry
	OriginatingPath  string // the .deb that declared this dependency expression, for the Sibling Finder
	Force            bool
	TopLevel         bool
	Attempted        map[string]bool // sibling .deb paths already tried by this install call
	Install          InstallFunc
	Listener         event.Listener
	DependentPackage string // name of the package whose Depends this is, for diagnostics
}

// Evaluate walks expr alternative by alternative (spec §4.4 "Evaluation").
// It returns the atoms that remain unsatisfied after Sibling Finder and
// force-mode fallback have both been tried; a non-empty result with
// Options.Force false means the install must fail.
func Evaluate(expr Expression, opts Options) ([]Atom, error) {
	var unsatisfied []Atom

	for _, alt := range expr {
		if satisfyAlternative(alt, opts) {
			continue
		}
		if len(alt) == 0 {
			continue
		}
		// Only the first atom of an unsatisfied alternative is ever
		// actively installed from siblings (spec §4.4).
		first := alt[0]
		if opts.Install != nil {
			if ok := trySibling(first, opts); ok {
				continue
			}
		}
		if !opts.Force {
			unsatisfied = append(unsatisfied, first)
		}
		event.Emit(opts.Listener, event.EventDependencyUnsatisfied{
			Package: opts.DependentPackage,
			Atom:    first.String(),
			Forced:  opts.Force,
		})
	}
	return unsatisfied, nil
}

// satisfyAlternative reports whether any atom in alt is currently
// satisfied by the Installed or In-flight registries, also applying the
// force-mode reinstall policy (spec §4.4 "Force-mode reinstall policy") for
// top-level, already-satisfied atoms.
func satisfyAlternative(alt Alternative, opts Options) bool {
	for _, atom := range alt {
		rec, via, ok := lookupAtom(atom, opts)
		if !ok {
			continue
		}
		event.Emit(opts.Listener, event.EventDependencyResolved{
			Package: opts.DependentPackage,
			Atom:    atom.String(),
			Via:     via,
		})
		if opts.Force && opts.TopLevel && via == ViaInstalled {
			// Re-examine: a sibling may provide a newer build. This never
			// recurses into reinstall logic for non-top-level installs, per
			// spec, to avoid cycles.
			trySibling(atom, opts)
		}
		_ = rec
		return true
	}
	return false
}

func lookupAtom(atom Atom, opts Options) (*deb.Record, string, bool) {
	if rec, ok := opts.Installed.Lookup(atom.Name); ok {
		if atomSatisfiedBy(atom, rec) {
			return rec, ViaInstalled, true
		}
	}
	if rec, ok := opts.InFlight.Lookup(atom.Name); ok {
		if atomSatisfiedBy(atom, rec) {
			return rec, ViaInFlight, true
		}
	}
	return nil, "", false
}

func atomSatisfiedBy(atom Atom, rec *deb.Record) bool {
	if atom.Op == "" {
		return true
	}
	return deb.Satisfies(rec.Version, atom.Op, atom.Constraint)
}

// trySibling asks the Sibling Finder for a candidate .deb satisfying
// atom.Name and, if found, recursively installs it via opts.Install.
func trySibling(atom Atom, opts Options) bool {
	if opts.Install == nil || opts.OriginatingPath == "" {
		return false
	}
	candidate, ok := Find(atom.Name, opts.OriginatingPath, opts.Attempted)
	if !ok {
		return false
	}
	if opts.Attempted != nil {
		opts.Attempted[candidate] = true
	}
	event.Emit(opts.Listener, event.EventSiblingCandidate{
		Package: atom.Name, Path: candidate, Chosen: true, Attempted: true,
	})
	rec, err := opts.Install(candidate)
	if err != nil || rec == nil {
		return false
	}
	return atomSatisfiedBy(atom, rec)
}
