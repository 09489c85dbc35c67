// Package archive implements the Archive Reader: it opens a .deb as an
// ar(5) container, extracts control.tar* and data.tar* into a staging
// directory, and returns a populated deb.Record plus the extracted file
// list. It does not decide where files are ultimately installed; see
// package materialize for that.
package archive
