package archivist

import (
	"fmt"
	"path/filepath"
	"strings"

	"sitevault/internal/catalog"
	"sitevault/internal/hashing"
	"sitevault/internal/textutil"
)

// KindDir returns the archive directory segment for a media kind.
func KindDir(kind catalog.MediaKind) string {
	switch kind {
	case catalog.KindImage:
		return "images"
	case catalog.KindVideo:
		return "videos"
	case catalog.KindDocument:
		return "documents"
	default:
		return "other"
	}
}

// KindTag returns the short media-kind tag used in canonical filenames.
func KindTag(kind catalog.MediaKind) string {
	switch kind {
	case catalog.KindImage:
		return "img"
	case catalog.KindVideo:
		return "vid"
	case catalog.KindDocument:
		return "doc"
	default:
		return "bin"
	}
}

// TargetDir computes the deterministic archive directory for an asset of the
// given kind and hardware category owned by loc.
func TargetDir(root string, loc *catalog.Location, kind catalog.MediaKind, category string) string {
	jurisdiction := textutil.SlugOr(loc.Jurisdiction, "zz")
	primary := textutil.SlugOr(loc.PrimaryCategory, "uncategorized")
	site := textutil.SlugOr(loc.Name, "site") + "_" + loc.ShortID()
	category = textutil.SlugOr(category, catalog.CategoryOther)

	return filepath.Join(root, jurisdiction+"-"+primary, site, KindDir(kind), category)
}

// CanonicalFilename computes the collision-resistant filename assigned at
// commit time: {id8}-{tag}_{digest8}.{ext}.
func CanonicalFilename(loc *catalog.Location, kind catalog.MediaKind, digest hashing.Digest, ext string) string {
	return fmt.Sprintf("%s-%s_%s%s", loc.ShortID(), KindTag(kind), digest.Short(), normalizeExt(ext))
}

// StagingDir returns the per-location staging directory.
func StagingDir(stagingRoot string, loc *catalog.Location) string {
	return filepath.Join(stagingRoot, loc.ShortID())
}

// StagingPath returns the deterministic staging location for an asset. The
// name is derived from the digest so re-runs and the verifier can recompute
// it without consulting the original source.
func StagingPath(stagingRoot string, loc *catalog.Location, digest hashing.Digest, ext string) string {
	return filepath.Join(StagingDir(stagingRoot, loc), digest.Short()+normalizeExt(ext))
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
