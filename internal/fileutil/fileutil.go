// Package fileutil provides the file copy and link primitives shared by the
// staging and commit stages.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// CopyFileVerified streams src to dst with SHA256 + size integrity verification.
// Removes dst on mismatch.
func CopyFileVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if written != srcSize {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}

	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	return nil
}

// SameFilesystem reports whether both paths reside on the same device. When
// dstDir does not exist its nearest existing parent is consulted.
func SameFilesystem(src, dstDir string) (bool, error) {
	var srcStat unix.Stat_t
	if err := unix.Stat(src, &srcStat); err != nil {
		return false, fmt.Errorf("stat %s: %w", src, err)
	}

	probe := dstDir
	for {
		var dstStat unix.Stat_t
		err := unix.Stat(probe, &dstStat)
		if err == nil {
			return srcStat.Dev == dstStat.Dev, nil
		}
		if !errors.Is(err, unix.ENOENT) {
			return false, fmt.Errorf("stat %s: %w", probe, err)
		}
		parent := filepath.Dir(probe)
		if parent == probe {
			return false, fmt.Errorf("stat %s: %w", dstDir, unix.ENOENT)
		}
		probe = parent
	}
}

// LinkOrCopy hardlinks src to dst when both sides share a filesystem and
// hardlinking is allowed, falling back to a verified copy otherwise. It
// returns true when a hardlink was created.
func LinkOrCopy(src, dst string, allowLink bool) (bool, error) {
	if allowLink {
		same, err := SameFilesystem(src, filepath.Dir(dst))
		if err == nil && same {
			linkErr := os.Link(src, dst)
			if linkErr == nil {
				return true, nil
			}
			if !errors.Is(linkErr, unix.EXDEV) && !errors.Is(linkErr, unix.EPERM) {
				return false, linkErr
			}
			// cross-device or filesystem without hardlink support
		}
	}
	if err := CopyFileVerified(src, dst); err != nil {
		return false, err
	}
	return false, nil
}
