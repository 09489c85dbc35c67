// Package materialize implements the File Materializer (spec §4.7): given
// a staged data directory and a file list, it creates every listed entry
// under the system install root, dispatching on the kind re-derived from
// lstat at materialization time.
//
// Work fans out across a bounded worker pool sized min(2*NumCPU, 32),
// following the sync.WaitGroup + buffered-error-channel idiom used for
// golang-dep's WriteDepTree: every unit of work gets its own goroutine,
// gated by a counting semaphore, errors collected behind a mutex-protected
// counter rather than failing the whole batch (spec §5 propagation policy:
// "File Materializer errors are counted and reported but never fatal").
package materialize

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/pkgforge/debpm/deb"
	"github.com/pkgforge/debpm/event"
)

func maxWorkers() int {
	n := runtime.NumCPU() * 2
	if n > 32 {
		return 32
	}
	if n < 1 {
		return 1
	}
	return n
}

// Result summarizes one Materialize call.
type Result struct {
	FilesWritten int
	Errors       []error
}

// Materialize restores every entry in files, read from dataDir, under
// installRoot. pkgName is the installing package's name, for diagnostics
// only.
func Materialize(dataDir, installRoot, pkgName string, files []deb.FileEntry, listener event.Listener) Result {
	sem := make(chan struct{}, maxWorkers())
	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs []error
	written := 0

	for _, f := range files {
		wg.Add(1)
		sem <- struct{}{}
		go func(f deb.FileEntry) {
			defer wg.Done()
			defer func() { <-sem }()

			err := materializeOne(dataDir, installRoot, f.Path)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				event.Emit(listener, event.EventMaterializeError{Path: f.Path, Package: pkgName, Err: err.Error()})
			} else {
				written++
				event.Emit(listener, event.EventFileMaterialized{Path: f.Path, Kind: kindLabel(dataDir, f.Path), Package: pkgName})
			}
		}(f)
	}

	wg.Wait()
	return Result{FilesWritten: written, Errors: errs}
}

func materializeOne(dataDir, installRoot, relPath string) error {
	if isPathTraversal(relPath) {
		return fmt.Errorf("rejected file-list entry with path traversal: %s", relPath)
	}

	src := filepath.Join(dataDir, relPath)
	dst := filepath.Join(installRoot, relPath)

	info, err := os.Lstat(src)
	if err != nil {
		return fmt.Errorf("lstat %s: %w", src, err)
	}

	switch {
	case info.IsDir():
		return materializeDir(dst)
	case info.Mode()&os.ModeSymlink != 0:
		return materializeSymlink(src, dst)
	case info.Mode().IsRegular():
		return materializeRegular(src, dst, info)
	default:
		// Other entry kinds (devices, sockets, FIFOs) are skipped: nothing
		// is created and no error is returned, so the entry counts toward
		// FilesWritten. No warning is logged or emitted for it.
		return nil
	}
}

// isPathTraversal reports whether relPath's cleaned form escapes dataDir/
// installRoot via ".." segments or is itself absolute (spec §8 Boundary
// Behaviors: "File-list entries with .. path components are rejected by
// the Materializer"). A Record.Files entry reaches here unvalidated from
// either the Archive Reader's tar walk or store.parseInfo's read of a
// hand-edited info file, so this check is the Materializer's own
// responsibility, not something it can trust its callers to have done.
func isPathTraversal(relPath string) bool {
	if filepath.IsAbs(relPath) {
		return true
	}
	cleaned := filepath.Clean(relPath)
	return cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator))
}

func materializeDir(dst string) error {
	return os.MkdirAll(dst, 0o755)
}

func materializeSymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return fmt.Errorf("readlink %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(dst), err)
	}
	os.Remove(dst)
	if err := os.Symlink(target, dst); err != nil {
		return fmt.Errorf("symlink %s -> %s: %w", dst, target, err)
	}
	return nil
}

func materializeRegular(src, dst string, info os.FileInfo) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(dst), err)
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}

	// info.Sys() on a Unix GOOS is *syscall.Stat_t; restoring ownership
	// here uses x/sys/unix's Lchown, the same call the Archive Reader uses.
	// Any error from it is ignored.
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		_ = unix.Lchown(dst, int(st.Uid), int(st.Gid))
	}
	return nil
}

func kindLabel(dataDir, relPath string) string {
	info, err := os.Lstat(filepath.Join(dataDir, relPath))
	if err != nil {
		return "unknown"
	}
	switch {
	case info.IsDir():
		return "dir"
	case info.Mode()&os.ModeSymlink != 0:
		return "symlink"
	default:
		return "file"
	}
}
