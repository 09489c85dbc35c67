package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkgforge/debpm/deb"
)

func TestWriteInfoAndLoadAll(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	rec := &deb.Record{
		Name:         "foo",
		Version:      "1.0",
		Architecture: "amd64",
		Depends:      "bar (>= 2.0)",
		Files:        []deb.FileEntry{{Path: "usr/bin/foo"}, {Path: "usr/share/doc/foo/copyright"}},
	}
	if err := s.WriteInfo(rec.Name, rec.Version, rec); err != nil {
		t.Fatalf("WriteInfo: %v", err)
	}

	infoPath := filepath.Join(s.GetPath("foo", "1.0"), "info")
	if _, err := os.Stat(infoPath); err != nil {
		t.Fatalf("info file not written: %v", err)
	}
	if _, err := os.Stat(infoPath + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("info.tmp left behind after rename")
	}

	records, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("LoadAll returned %d records, want 1", len(records))
	}
	got := records[0]
	if got.Name != "foo" || got.Version != "1.0" || got.Depends != "bar (>= 2.0)" {
		t.Errorf("unexpected record: %+v", got)
	}
	if len(got.Files) != 2 || got.Files[0].Path != "usr/bin/foo" {
		t.Errorf("unexpected files: %+v", got.Files)
	}
}

func TestRemove(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	rec := &deb.Record{Name: "foo", Version: "1.0"}
	if err := s.WriteInfo(rec.Name, rec.Version, rec); err != nil {
		t.Fatalf("WriteInfo: %v", err)
	}
	if err := s.Remove("foo", "1.0"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(s.GetPath("foo", "1.0")); !os.IsNotExist(err) {
		t.Errorf("version directory still present after Remove")
	}
}

func TestRebuildAutocompleteIndex(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	for _, n := range []string{"zeta", "alpha", "mid"} {
		rec := &deb.Record{Name: n, Version: "1.0"}
		if err := s.WriteInfo(n, "1.0", rec); err != nil {
			t.Fatalf("WriteInfo(%s): %v", n, err)
		}
	}
	if err := s.RebuildAutocompleteIndex(); err != nil {
		t.Fatalf("RebuildAutocompleteIndex: %v", err)
	}
	content, err := os.ReadFile(s.AutocompleteIndexPath())
	if err != nil {
		t.Fatalf("reading index: %v", err)
	}
	want := "alpha\nmid\nzeta\n"
	if string(content) != want {
		t.Errorf("index = %q, want %q", content, want)
	}
}
