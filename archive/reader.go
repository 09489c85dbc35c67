package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/blakesmith/ar"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/pkgforge/debpm/deb"
	"github.com/pkgforge/debpm/dpkgerr"
)

// Extract implements the Archive Reader (spec §4.1): it opens path as an
// ar(5) container, extracts control.tar* and data.tar* into
// <stagingRoot>/<base>/{control,data}, parses the control stanza, and walks
// the extracted data directory to populate the file list. On any failure
// partial staging output is removed before returning.
func Extract(path, stagingRoot string) (*deb.Record, error) {
	if !strings.HasSuffix(path, ".deb") {
		return nil, &dpkgerr.FormatError{Context: path, Reason: "not a .deb file"}
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, &dpkgerr.IoError{Op: "stat", Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &dpkgerr.FormatError{Context: path, Reason: "not a regular file"}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &dpkgerr.IoError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	base := strings.TrimSuffix(filepath.Base(path), ".deb")
	stageDir := filepath.Join(stagingRoot, base)
	controlDir := filepath.Join(stageDir, "control")
	dataDir := filepath.Join(stageDir, "data")

	record, err := extract(f, path, controlDir, dataDir)
	if err != nil {
		os.RemoveAll(stageDir)
		return nil, err
	}
	return record, nil
}

func extract(f io.Reader, path, controlDir, dataDir string) (*deb.Record, error) {
	var sawControl, sawData, sawBinary bool

	arR := ar.NewReader(f)
	for {
		hdr, err := arR.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &dpkgerr.FormatError{Context: path, Reason: "reading ar container", Err: err}
		}

		name := hdr.Name
		switch {
		case name == string(deb.PkgDebianBinary):
			buf := make([]byte, 2)
			if _, err := io.ReadFull(arR, buf); err != nil && err != io.ErrUnexpectedEOF {
				return nil, &dpkgerr.FormatError{Context: path, Reason: "reading debian-binary", Err: err}
			}
			if string(buf) != "2." {
				return nil, &dpkgerr.FormatError{Context: path, Reason: "unsupported debian-binary version"}
			}
			sawBinary = true

		case strings.HasPrefix(name, string(deb.PkgControlTar)):
			if err := extractTarMember(arR, name, controlDir); err != nil {
				return nil, err
			}
			sawControl = true

		case strings.HasPrefix(name, string(deb.PkgDataTar)):
			if err := extractTarMember(arR, name, dataDir); err != nil {
				return nil, err
			}
			sawData = true
		}
	}

	if !sawBinary {
		return nil, &dpkgerr.FormatError{Context: path, Reason: "missing debian-binary member"}
	}
	if !sawControl {
		return nil, &dpkgerr.FormatError{Context: path, Reason: "missing control.tar member"}
	}
	if !sawData {
		return nil, &dpkgerr.FormatError{Context: path, Reason: "missing data.tar member"}
	}

	controlContent, err := os.ReadFile(filepath.Join(controlDir, string(deb.FileControl)))
	if err != nil {
		return nil, &dpkgerr.FormatError{Context: path, Reason: "missing control file in control.tar", Err: err}
	}

	record := &deb.Record{SourceFilename: path, ControlDir: controlDir, DataDir: dataDir}
	if err := deb.ParseControl(string(controlContent), record); err != nil {
		return nil, &dpkgerr.FormatError{Context: path, Reason: "parsing control file", Err: err}
	}
	if record.Name == "" || record.Version == "" {
		return nil, &dpkgerr.FormatError{Context: path, Reason: "control file missing Package or Version"}
	}
	if !deb.ValidName(record.Name) {
		return nil, &dpkgerr.FormatError{Context: path, Reason: fmt.Sprintf("invalid package name %q", record.Name)}
	}

	files, err := walkDataDir(dataDir)
	if err != nil {
		return nil, err
	}
	record.Files = files

	return record, nil
}

// decompress wraps r with the decompressor matching memberName's suffix
// (.gz, .xz, .zst, or none), returning the decompressed stream and a
// closer to release any resources the decompressor holds.
func decompress(memberName string, r io.Reader) (io.Reader, func() error, error) {
	switch {
	case strings.HasSuffix(memberName, ".gz"):
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	case strings.HasSuffix(memberName, ".xz"):
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return xr, func() error { return nil }, nil
	case strings.HasSuffix(memberName, ".zst"):
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, func() error { zr.Close(); return nil }, nil
	default:
		return r, func() error { return nil }, nil
	}
}

// extractTarMember decompresses and unpacks one ar member (a control.tar*
// or data.tar*) into destDir.
func extractTarMember(r io.Reader, memberName, destDir string) error {
	stream, closeFn, err := decompress(memberName, r)
	if err != nil {
		return &dpkgerr.FormatError{Context: memberName, Reason: "unsupported or corrupt compression", Err: err}
	}
	defer closeFn()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return &dpkgerr.IoError{Op: "mkdir", Path: destDir, Err: err}
	}

	tr := tar.NewReader(stream)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return &dpkgerr.FormatError{Context: memberName, Reason: "reading tar entry", Err: err}
		}

		cleanName := strings.TrimPrefix(hdr.Name, "./")
		if cleanName == "" || cleanName == "." {
			continue
		}
		target := filepath.Join(destDir, filepath.Clean("/"+cleanName))

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, hdr.FileInfo().Mode().Perm()); err != nil {
				return &dpkgerr.IoError{Op: "mkdir", Path: target, Err: err}
			}
			restoreOwnership(target, hdr)

		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return &dpkgerr.IoError{Op: "mkdir", Path: target, Err: err}
			}
			os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return &dpkgerr.IoError{Op: "symlink", Path: target, Err: err}
			}

		case tar.TypeReg, tar.TypeRegA:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return &dpkgerr.IoError{Op: "mkdir", Path: target, Err: err}
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, hdr.FileInfo().Mode().Perm())
			if err != nil {
				return &dpkgerr.IoError{Op: "create", Path: target, Err: err}
			}
			_, copyErr := io.Copy(out, tr)
			out.Close()
			if copyErr != nil {
				return &dpkgerr.IoError{Op: "write", Path: target, Err: copyErr}
			}
			restoreOwnership(target, hdr)

		default:
			// Device nodes, FIFOs, and the like never appear in a Debian
			// data.tar; skip anything else rather than fail the install.
		}
	}
	return nil
}

// walkDataDir produces the ordered file list from an already-extracted
// data directory. The entry kind is deliberately not recorded here; it is
// re-derived via lstat at materialization time (spec §4.1 step 4).
func walkDataDir(dataDir string) ([]deb.FileEntry, error) {
	var entries []deb.FileEntry
	err := filepath.WalkDir(dataDir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == dataDir {
			return nil
		}
		rel, err := filepath.Rel(dataDir, p)
		if err != nil {
			return err
		}
		entries = append(entries, deb.FileEntry{Path: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, &dpkgerr.IoError{Op: "walk", Path: dataDir, Err: err}
	}
	return entries, nil
}
