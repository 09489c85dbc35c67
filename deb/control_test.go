package deb

import "testing"

func TestParseControlFile(t *testing.T) {
	content := "Package: foo\n" +
		"Version: 1.0\n" +
		"Architecture: amd64\n" +
		"Depends: libc6 (>= 2.0), bar\n" +
		"Description: short desc\n" +
		" long line one\n" +
		" .\n" +
		" long line two\n"

	r := &Record{}
	if err := ParseControl(content, r); err != nil {
		t.Fatalf("ParseControl: %v", err)
	}
	if r.Name != "foo" || r.Version != "1.0" || r.Architecture != "amd64" {
		t.Fatalf("unexpected record: %+v", r)
	}
	if r.Depends != "libc6 (>= 2.0), bar" {
		t.Errorf("Depends = %q", r.Depends)
	}
	want := "short desc\n long line one\n .\n long line two"
	if r.Description != want {
		t.Errorf("Description = %q, want %q", r.Description, want)
	}
}

func TestWriteControlRoundTrip(t *testing.T) {
	r := &Record{
		Name:         "foo",
		Version:      "1.0",
		Architecture: "amd64",
		Maintainer:   "A <a@example.com>",
		Depends:      "bar, baz (>= 1.0)",
		Description:  "synopsis\n extended line",
	}
	rendered := WriteControl(r)

	got := &Record{}
	if err := ParseControl(rendered, got); err != nil {
		t.Fatalf("ParseControl: %v", err)
	}
	if got.Name != r.Name || got.Version != r.Version || got.Depends != r.Depends {
		t.Errorf("round trip mismatch: %+v vs %+v", got, r)
	}
}

func TestSplitList(t *testing.T) {
	if got := SplitList(""); got != nil {
		t.Errorf("SplitList(\"\") = %v, want nil", got)
	}
	got := SplitList("a, b ,c")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %q want %q", i, got[i], want[i])
		}
	}
}
