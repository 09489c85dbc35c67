package archive

import (
	"archive/tar"

	"golang.org/x/sys/unix"
)

// restoreOwnership applies the uid/gid recorded in a tar header to the
// extracted entry at path. A non-privileged process can only successfully
// chown a path to its own uid/gid (or leave it as created by the current
// process), so Lchown is always attempted and any error it returns
// (typically EPERM, which reflects exactly that limit rather than a real
// extraction failure) is swallowed rather than propagated.
func restoreOwnership(path string, hdr *tar.Header) {
	if err := unix.Lchown(path, hdr.Uid, hdr.Gid); err != nil {
		_ = err // best-effort; see doc comment
	}
}
