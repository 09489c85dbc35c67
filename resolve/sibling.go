package resolve

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkgforge/debpm/config"
)

// siblingLogger renders the Sibling Finder's debug-switch output (spec §6,
// "a debug switch... enables extra diagnostic output in the Sibling
// Finder"), matching the teacher's log.New(os.Stdout, "[DPKG] ",
// log.LstdFlags) construction in the dpkg-manager example. Gated at each
// call site on config.Debug() rather than once at package init, since the
// env var is read dynamically (tests flip it mid-process).
var siblingLogger = log.New(os.Stderr, "[sibling] ", log.LstdFlags)

func debugf(format string, args ...interface{}) {
	if config.Debug() {
		siblingLogger.Printf(format, args...)
	}
}

// Find implements the Sibling Finder (spec §4.6): given a dependency name
// and the originating .deb's path, it scans the originator's parent
// directory for <name>_*.deb candidates and returns the chosen one.
//
// attempted is the set of candidate paths already tried by the current
// install call (each install call, recursive ones included, has its own
// set); candidates in it are skipped (step 5 of the selection policy).
func Find(name, originatingPath string, attempted map[string]bool) (string, bool) {
	dir := filepath.Dir(originatingPath)
	debugf("scanning %s for siblings of %q", dir, name)

	entries, err := os.ReadDir(dir)
	if err != nil {
		debugf("readdir %s: %v", dir, err)
		return "", false
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		fname := e.Name()
		if !strings.HasSuffix(fname, ".deb") {
			continue
		}
		if candidateName(fname) != name {
			continue
		}
		full := filepath.Join(dir, fname)
		if full == originatingPath {
			// The originating archive is never its own sibling candidate,
			// even for a self-referencing dependency atom.
			debugf("skipping %s: is the originating archive", full)
			continue
		}
		if attempted != nil && attempted[full] {
			debugf("skipping %s: already attempted", full)
			continue
		}
		debugf("candidate for %q: %s", name, full)
		candidates = append(candidates, full)
	}
	if len(candidates) == 0 {
		debugf("no candidates found for %q in %s", name, dir)
		return "", false
	}

	if originatingVersion, ok := parseableVersion(originatingPath); ok {
		for _, c := range candidates {
			if candidateVersion(filepath.Base(c)) == originatingVersion {
				debugf("chose %s: exact version match with originator (%s)", c, originatingVersion)
				return c, true
			}
		}
	}

	sort.Strings(candidates)
	debugf("chose %s: lexical fallback among %d candidates", candidates[0], len(candidates))
	return candidates[0], true
}

// candidateName returns the token before the first underscore in a
// "name_version_arch.deb" filename.
func candidateName(filename string) string {
	if i := strings.IndexByte(filename, '_'); i != -1 {
		return filename[:i]
	}
	return strings.TrimSuffix(filename, ".deb")
}

// candidateVersion returns the token between the first and second
// underscore in a "name_version_arch.deb" filename.
func candidateVersion(filename string) string {
	first := strings.IndexByte(filename, '_')
	if first == -1 {
		return ""
	}
	rest := filename[first+1:]
	second := strings.IndexByte(rest, '_')
	if second == -1 {
		return ""
	}
	return rest[:second]
}

// parseableVersion extracts the version token from originatingPath's own
// filename, if it follows the standard name_version_arch.deb layout.
func parseableVersion(originatingPath string) (string, bool) {
	base := filepath.Base(originatingPath)
	v := candidateVersion(base)
	if v == "" {
		return "", false
	}
	return v, true
}
