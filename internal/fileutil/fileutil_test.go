package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"sitevault/internal/fileutil"
)

func writeFile(t *testing.T, path string, contents []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestCopyFileVerified(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src.bin")
	dst := filepath.Join(base, "dst.bin")
	writeFile(t, src, []byte("verified copy payload"))

	if err := fileutil.CopyFileVerified(src, dst); err != nil {
		t.Fatalf("CopyFileVerified: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read dst: %v", err)
	}
	if string(got) != "verified copy payload" {
		t.Fatalf("dst contents = %q", got)
	}
}

func TestLinkOrCopyHardlinksOnSameFilesystem(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src.bin")
	dst := filepath.Join(base, "dst.bin")
	writeFile(t, src, []byte("linkable"))

	linked, err := fileutil.LinkOrCopy(src, dst, true)
	if err != nil {
		t.Fatalf("LinkOrCopy: %v", err)
	}
	if !linked {
		t.Fatal("expected a hardlink within one temp directory")
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		t.Fatalf("stat src: %v", err)
	}
	dstInfo, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("stat dst: %v", err)
	}
	if !os.SameFile(srcInfo, dstInfo) {
		t.Fatal("src and dst should share an inode")
	}
}

func TestLinkOrCopyFallsBackToCopyWhenDisabled(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src.bin")
	dst := filepath.Join(base, "dst.bin")
	writeFile(t, src, []byte("copied"))

	linked, err := fileutil.LinkOrCopy(src, dst, false)
	if err != nil {
		t.Fatalf("LinkOrCopy: %v", err)
	}
	if linked {
		t.Fatal("hardlinks are disabled for this call")
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		t.Fatalf("stat src: %v", err)
	}
	dstInfo, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("stat dst: %v", err)
	}
	if os.SameFile(srcInfo, dstInfo) {
		t.Fatal("dst should be an independent copy")
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read dst: %v", err)
	}
	if string(got) != "copied" {
		t.Fatalf("dst contents = %q", got)
	}
}

func TestSameFilesystemWithinTempDir(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src.bin")
	writeFile(t, src, []byte("x"))

	same, err := fileutil.SameFilesystem(src, filepath.Join(base, "not-yet-created", "deeper"))
	if err != nil {
		t.Fatalf("SameFilesystem: %v", err)
	}
	if !same {
		t.Fatal("paths under one temp dir should share a filesystem")
	}
}
