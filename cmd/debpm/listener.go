package main

import (
	"fmt"
	"os"

	"github.com/pkgforge/debpm/event"
)

// newListener builds an event.Listener that renders diagnostics to stderr
// the way familiar package tools do ("Unpacking X (V) ...", "Setting up X
// (V) ..."), scaled by the verbose/veryVerbose flags.
func newListener(verbose, veryVerbose bool) event.Listener {
	return func(e fmt.Stringer) {
		switch ev := e.(type) {
		case event.EventArchiveExtracted:
			if verbose {
				fmt.Fprintf(os.Stderr, "Unpacking %s (%s) ...\n", ev.Package, ev.Version)
			}
		case event.EventDependencyResolved:
			if veryVerbose {
				fmt.Fprintf(os.Stderr, "  %s: dependency %q satisfied via %s\n", ev.Package, ev.Atom, ev.Via)
			}
		case event.EventDependencyUnsatisfied:
			if ev.Forced {
				fmt.Fprintf(os.Stderr, "Warning: %s: dependency %q unsatisfied, continuing (-force)\n", ev.Package, ev.Atom)
			} else {
				fmt.Fprintf(os.Stderr, "%s: dependency %q unsatisfied\n", ev.Package, ev.Atom)
			}
		case event.EventPackageUpgrading:
			fmt.Fprintf(os.Stderr, "Upgrading %s from %s to %s\n", ev.Package, ev.From, ev.To)
		case event.EventPackageInstalled:
			fmt.Fprintf(os.Stderr, "Setting up %s (%s) ...\n", ev.Package, ev.Version)
			if verbose {
				fmt.Fprintf(os.Stderr, "  %d files written\n", ev.FilesWritten)
			}
		case event.EventPackageSkipped:
			fmt.Fprintf(os.Stderr, "%s is already the newest version (%s).\n", ev.Package, ev.Have)
		case event.EventPackageRemoved:
			fmt.Fprintf(os.Stderr, "Removing %s (%s) ...\n", ev.Package, ev.Version)
		case event.EventFileMaterialized:
			if veryVerbose {
				fmt.Fprintf(os.Stderr, "  %s %s\n", ev.Kind, ev.Path)
			}
		case event.EventMaterializeError:
			fmt.Fprintf(os.Stderr, "Warning: %s: failed to materialize %s: %s\n", ev.Package, ev.Path, ev.Err)
		case event.EventSiblingCandidate:
			if veryVerbose {
				status := "considered"
				if ev.Chosen {
					status = "chosen"
				}
				fmt.Fprintf(os.Stderr, "  sibling candidate for %s: %s (%s)\n", ev.Package, ev.Path, status)
			}
		}
	}
}
