package archivist

import (
	"fmt"
	"os"
	"path/filepath"

	"sitevault/internal/catalog"
	"sitevault/internal/hashing"
)

// EnsureDir creates the full directory chain for path. Calling it repeatedly
// for the same path is a no-op.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create archive directory %q: %w", path, err)
	}
	return nil
}

// Target bundles the resolved archive destination for one asset.
type Target struct {
	Dir      string
	Filename string
}

// Path returns the full destination path.
func (t Target) Path() string {
	return filepath.Join(t.Dir, t.Filename)
}

// Resolve computes the archive target for an asset and ensures its directory
// exists.
func Resolve(root string, loc *catalog.Location, kind catalog.MediaKind, category string, digest hashing.Digest, ext string) (Target, error) {
	target := Target{
		Dir:      TargetDir(root, loc, kind, category),
		Filename: CanonicalFilename(loc, kind, digest, ext),
	}
	if err := EnsureDir(target.Dir); err != nil {
		return Target{}, err
	}
	return target, nil
}
