package archivist_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sitevault/internal/archivist"
	"sitevault/internal/catalog"
	"sitevault/internal/hashing"
)

var testDigest = hashing.Digest("0a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f9")

func testLocation() *catalog.Location {
	return &catalog.Location{
		ID:              "123e4567-e89b-12d3-a456-426614174000",
		Name:            "Harbor North Quay",
		Jurisdiction:    "NL",
		PrimaryCategory: "Harbor",
	}
}

func TestTargetDirLayout(t *testing.T) {
	loc := testLocation()
	got := archivist.TargetDir("/archive", loc, catalog.KindImage, "camera")
	want := filepath.Join("/archive", "nl-harbor", "harbor-north-quay_123e4567", "images", "camera")
	if got != want {
		t.Fatalf("TargetDir = %q, want %q", got, want)
	}
}

func TestTargetDirFallbacks(t *testing.T) {
	loc := &catalog.Location{ID: "abcdef12-0000-0000-0000-000000000000", Name: "???"}
	got := archivist.TargetDir("/archive", loc, catalog.KindDocument, "")
	want := filepath.Join("/archive", "zz-uncategorized", "site_abcdef12", "documents", "other")
	if got != want {
		t.Fatalf("TargetDir = %q, want %q", got, want)
	}
}

func TestCanonicalFilename(t *testing.T) {
	loc := testLocation()
	cases := []struct {
		kind catalog.MediaKind
		ext  string
		want string
	}{
		{catalog.KindImage, ".JPG", "123e4567-img_0a1b2c3d.jpg"},
		{catalog.KindVideo, "mp4", "123e4567-vid_0a1b2c3d.mp4"},
		{catalog.KindDocument, ".pdf", "123e4567-doc_0a1b2c3d.pdf"},
		{catalog.KindDocument, "", "123e4567-doc_0a1b2c3d"},
	}
	for _, tc := range cases {
		if got := archivist.CanonicalFilename(loc, tc.kind, testDigest, tc.ext); got != tc.want {
			t.Fatalf("CanonicalFilename(%s, %q) = %q, want %q", tc.kind, tc.ext, got, tc.want)
		}
	}
}

func TestStagingPathIsDigestDerived(t *testing.T) {
	loc := testLocation()
	got := archivist.StagingPath("/staging", loc, testDigest, ".jpg")
	want := filepath.Join("/staging", "123e4567", "0a1b2c3d.jpg")
	if got != want {
		t.Fatalf("StagingPath = %q, want %q", got, want)
	}
	if dir := archivist.StagingDir("/staging", loc); !strings.HasPrefix(got, dir) {
		t.Fatalf("staging path %q outside staging dir %q", got, dir)
	}
}

func TestResolveCreatesDirectory(t *testing.T) {
	root := t.TempDir()
	loc := testLocation()
	target, err := archivist.Resolve(root, loc, catalog.KindImage, "camera", testDigest, ".jpg")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if target.Path() != filepath.Join(target.Dir, target.Filename) {
		t.Fatalf("Path() = %q", target.Path())
	}
	if !strings.HasPrefix(target.Dir, root) {
		t.Fatalf("target dir %q outside root", target.Dir)
	}
	info, err := os.Stat(target.Dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("target directory not created: %v", err)
	}
}
