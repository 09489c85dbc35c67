package resolve

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindExactVersionMatch(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"bar_1.0_amd64.deb", "bar_2.0_amd64.deb", "origin_1.0_amd64.deb"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	originating := filepath.Join(dir, "origin_1.0_amd64.deb")

	got, ok := Find("bar", originating, nil)
	if !ok {
		t.Fatal("Find returned not ok")
	}
	if filepath.Base(got) != "bar_1.0_amd64.deb" {
		t.Errorf("Find chose %s, want version-matched candidate", got)
	}
}

func TestFindLexicalFallback(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"bar_2.0_amd64.deb", "bar_1.0_amd64.deb"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	originating := filepath.Join(dir, "origin_9.9_amd64.deb")

	got, ok := Find("bar", originating, nil)
	if !ok {
		t.Fatal("Find returned not ok")
	}
	if filepath.Base(got) != "bar_1.0_amd64.deb" {
		t.Errorf("Find chose %s, want lexically-first candidate", got)
	}
}

func TestFindSkipsAttempted(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bar_1.0_amd64.deb")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	originating := filepath.Join(dir, "origin_1.0_amd64.deb")

	_, ok := Find("bar", originating, map[string]bool{path: true})
	if ok {
		t.Errorf("Find should skip already-attempted candidate")
	}
}

func TestFindNoMatch(t *testing.T) {
	dir := t.TempDir()
	originating := filepath.Join(dir, "origin_1.0_amd64.deb")
	if _, ok := Find("missing", originating, nil); ok {
		t.Errorf("Find found a candidate in an empty directory")
	}
}
