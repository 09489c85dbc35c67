// Package deb holds the canonical shape of a parsed Debian package and the
// control-file grammar and version-ordering rules shared by every other
// package in this module.
//
// It does not touch the filesystem or an ar/tar stream itself; see package
// archive for that. deb only knows how to parse and compare the text
// Debian packages are described with.
package deb
