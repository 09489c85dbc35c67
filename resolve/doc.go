// Package resolve implements the dependency expression grammar (spec
// §4.4), its evaluation against the Installed/In-flight registries, and the
// Sibling Finder (spec §4.6) that locates a candidate .deb for an
// unsatisfied dependency in the originating archive's directory.
package resolve
