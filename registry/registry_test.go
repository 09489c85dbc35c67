package registry

import (
	"testing"

	"github.com/pkgforge/debpm/deb"
)

func TestInsertLookupRemove(t *testing.T) {
	r := New()
	rec := &deb.Record{Name: "foo", Version: "1.0"}
	r.Insert("foo", rec)

	got, ok := r.Lookup("foo")
	if !ok || got != rec {
		t.Fatalf("Lookup(foo) = %v, %v", got, ok)
	}

	if _, ok := r.Lookup("bar"); ok {
		t.Errorf("Lookup(bar) found unexpected entry")
	}

	removed, ok := r.Remove("foo")
	if !ok || removed != rec {
		t.Fatalf("Remove(foo) = %v, %v", removed, ok)
	}
	if _, ok := r.Lookup("foo"); ok {
		t.Errorf("foo still present after Remove")
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestInsertOverwrites(t *testing.T) {
	r := New()
	r.Insert("foo", &deb.Record{Name: "foo", Version: "1.0"})
	r.Insert("foo", &deb.Record{Name: "foo", Version: "2.0"})

	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after overwrite", r.Len())
	}
	got, _ := r.Lookup("foo")
	if got.Version != "2.0" {
		t.Errorf("Version = %s, want 2.0", got.Version)
	}
}

func TestResizeKeepsAllEntries(t *testing.T) {
	r := New()
	const n = 500
	for i := 0; i < n; i++ {
		name := namef(i)
		r.Insert(name, &deb.Record{Name: name})
	}
	if r.Len() != n {
		t.Fatalf("Len() = %d, want %d", r.Len(), n)
	}
	for i := 0; i < n; i++ {
		name := namef(i)
		if _, ok := r.Lookup(name); !ok {
			t.Fatalf("missing %s after resize", name)
		}
	}
}

func TestEachVisitsAllEntries(t *testing.T) {
	r := New()
	r.Insert("a", &deb.Record{Name: "a"})
	r.Insert("b", &deb.Record{Name: "b"})
	r.Insert("c", &deb.Record{Name: "c"})

	seen := map[string]bool{}
	r.Each(func(name string, rec *deb.Record) { seen[name] = true })

	for _, n := range []string{"a", "b", "c"} {
		if !seen[n] {
			t.Errorf("Each did not visit %s", n)
		}
	}
}

func namef(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, 0, 8)
	for i >= 0 {
		b = append(b, letters[i%26])
		i = i/26 - 1
	}
	return string(b)
}
