package install

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blakesmith/ar"

	"github.com/pkgforge/debpm/config"
)

func buildFixtureDeb(t *testing.T, dir, name, control string, files map[string]string) string {
	t.Helper()

	var dataBuf bytes.Buffer
	gw := gzip.NewWriter(&dataBuf)
	tw := tar.NewWriter(gw)
	for path, content := range files {
		hdr := &tar.Header{Name: "./" + path, Size: int64(len(content)), Mode: 0o644, ModTime: time.Now()}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("data tar header: %v", err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("data tar write: %v", err)
		}
	}
	tw.Close()
	gw.Close()

	var controlBuf bytes.Buffer
	cgw := gzip.NewWriter(&controlBuf)
	ctw := tar.NewWriter(cgw)
	ctrlHdr := &tar.Header{Name: "./control", Size: int64(len(control)), Mode: 0o644, ModTime: time.Now()}
	ctw.WriteHeader(ctrlHdr)
	ctw.Write([]byte(control))
	ctw.Close()
	cgw.Close()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating .deb: %v", err)
	}
	defer f.Close()

	arW := ar.NewWriter(f)
	arW.WriteGlobalHeader()
	writeMember(t, arW, "debian-binary", []byte("2.0\n"))
	writeMember(t, arW, "control.tar.gz", controlBuf.Bytes())
	writeMember(t, arW, "data.tar.gz", dataBuf.Bytes())

	return path
}

func writeMember(t *testing.T, w *ar.Writer, name string, body []byte) {
	t.Helper()
	hdr := &ar.Header{Name: name, Size: int64(len(body)), Mode: 0o644, ModTime: time.Now()}
	if err := w.WriteHeader(hdr); err != nil {
		t.Fatalf("ar header %s: %v", name, err)
	}
	if _, err := w.Write(body); err != nil {
		t.Fatalf("ar body %s: %v", name, err)
	}
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, string) {
	t.Helper()
	root := t.TempDir()
	cfg := config.Config{
		StoreRoot:   filepath.Join(root, "store"),
		StagingRoot: filepath.Join(root, "staging"),
		InstallRoot: filepath.Join(root, "target"),
	}
	o, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return o, root
}

func TestInstallSimplePackage(t *testing.T) {
	o, root := newTestOrchestrator(t)
	debDir := filepath.Join(root, "debs")
	os.MkdirAll(debDir, 0o755)

	path := buildFixtureDeb(t, debDir, "foo_1.0_amd64.deb",
		"Package: foo\nVersion: 1.0\nArchitecture: amd64\n",
		map[string]string{"usr/bin/foo": "hello"})

	recs, err := o.Install(path, true, false)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if len(recs) != 1 || recs[0].Name != "foo" {
		t.Fatalf("unexpected recs: %+v", recs)
	}

	if _, ok := o.Installed.Lookup("foo"); !ok {
		t.Error("foo not in Installed registry")
	}
	if _, ok := o.InFlight.Lookup("foo"); ok {
		t.Error("foo still in In-flight registry after Finish")
	}

	content, err := os.ReadFile(filepath.Join(o.InstallRoot, "usr/bin/foo"))
	if err != nil {
		t.Fatalf("materialized file missing: %v", err)
	}
	if string(content) != "hello" {
		t.Errorf("content = %q", content)
	}

	infoPath := filepath.Join(o.Store.GetPath("foo", "1.0"), "info")
	if _, err := os.Stat(infoPath); err != nil {
		t.Errorf("info file not written: %v", err)
	}
}

func TestInstallDependencyFromSibling(t *testing.T) {
	o, root := newTestOrchestrator(t)
	debDir := filepath.Join(root, "debs")
	os.MkdirAll(debDir, 0o755)

	buildFixtureDeb(t, debDir, "libbar_1.0_amd64.deb",
		"Package: libbar\nVersion: 1.0\nArchitecture: amd64\n",
		map[string]string{"usr/lib/libbar.so": "libcontent"})

	mainPath := buildFixtureDeb(t, debDir, "foo_1.0_amd64.deb",
		"Package: foo\nVersion: 1.0\nArchitecture: amd64\nDepends: libbar\n",
		map[string]string{"usr/bin/foo": "hello"})

	recs, err := o.Install(mainPath, true, false)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected foo + libbar installed, got %d: %+v", len(recs), recs)
	}
	if _, ok := o.Installed.Lookup("libbar"); !ok {
		t.Error("libbar dependency not installed via sibling")
	}
}

func TestInstallUnsatisfiedDependencyFails(t *testing.T) {
	o, root := newTestOrchestrator(t)
	debDir := filepath.Join(root, "debs")
	os.MkdirAll(debDir, 0o755)

	path := buildFixtureDeb(t, debDir, "foo_1.0_amd64.deb",
		"Package: foo\nVersion: 1.0\nArchitecture: amd64\nDepends: missing-lib\n",
		map[string]string{"usr/bin/foo": "hello"})

	if _, err := o.Install(path, true, false); err == nil {
		t.Fatal("expected error for unsatisfied dependency")
	}
	if _, ok := o.Installed.Lookup("foo"); ok {
		t.Error("foo should not be installed when dependency resolution fails")
	}
	if _, ok := o.InFlight.Lookup("foo"); ok {
		t.Error("foo left in In-flight registry after failed install (invariant I3 violation)")
	}
}

func TestInstallForceSkipsUnsatisfiedDependency(t *testing.T) {
	o, root := newTestOrchestrator(t)
	debDir := filepath.Join(root, "debs")
	os.MkdirAll(debDir, 0o755)

	path := buildFixtureDeb(t, debDir, "foo_1.0_amd64.deb",
		"Package: foo\nVersion: 1.0\nArchitecture: amd64\nDepends: missing-lib\n",
		map[string]string{"usr/bin/foo": "hello"})

	recs, err := o.Install(path, true, true)
	if err != nil {
		t.Fatalf("Install with force: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected foo installed under force, got %+v", recs)
	}
}

func TestInstallIdempotentWithoutForce(t *testing.T) {
	o, root := newTestOrchestrator(t)
	debDir := filepath.Join(root, "debs")
	os.MkdirAll(debDir, 0o755)

	path := buildFixtureDeb(t, debDir, "foo_1.0_amd64.deb",
		"Package: foo\nVersion: 1.0\nArchitecture: amd64\n",
		map[string]string{"usr/bin/foo": "hello"})

	if _, err := o.Install(path, true, false); err != nil {
		t.Fatalf("first install: %v", err)
	}
	recs, err := o.Install(path, true, false)
	if err != nil {
		t.Fatalf("second install: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("second install should be a no-op skip, got %+v", recs)
	}
	if o.Installed.Len() != 1 {
		t.Errorf("Installed.Len() = %d, want 1", o.Installed.Len())
	}
}

func TestRemoveDeletesStoreEntryOnly(t *testing.T) {
	o, root := newTestOrchestrator(t)
	debDir := filepath.Join(root, "debs")
	os.MkdirAll(debDir, 0o755)

	path := buildFixtureDeb(t, debDir, "foo_1.0_amd64.deb",
		"Package: foo\nVersion: 1.0\nArchitecture: amd64\n",
		map[string]string{"usr/bin/foo": "hello"})

	if _, err := o.Install(path, true, false); err != nil {
		t.Fatalf("Install: %v", err)
	}

	if err := o.Remove("foo"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := o.Installed.Lookup("foo"); ok {
		t.Error("foo still in Installed registry after Remove")
	}
	if _, err := os.Stat(o.Store.GetPath("foo", "1.0")); !os.IsNotExist(err) {
		t.Error("Store directory still present after Remove")
	}

	// Remove does not touch materialized files (spec §4.9).
	if _, err := os.Stat(filepath.Join(o.InstallRoot, "usr/bin/foo")); err != nil {
		t.Errorf("materialized file should survive Remove: %v", err)
	}
}

func TestRemoveUnknownPackageFails(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	if err := o.Remove("never-installed"); err == nil {
		t.Error("expected error removing an uninstalled package")
	}
}
