package catalog

import (
	"strings"
	"time"

	"sitevault/internal/hashing"
)

// Phase records where an asset's bytes currently live. It is always paired
// with a non-empty CurrentPath; there is no "unknown" placeholder state.
type Phase string

const (
	// PhaseStaged means CurrentPath points into the staging directory.
	PhaseStaged Phase = "staged"
	// PhaseArchived means CurrentPath points at the final archive location.
	PhaseArchived Phase = "archived"
)

// MediaKind partitions assets by broad file type.
type MediaKind string

const (
	KindImage    MediaKind = "image"
	KindVideo    MediaKind = "video"
	KindDocument MediaKind = "document"
)

// Flag marks an asset as needing operator attention. Flagged assets are never
// cleaned up automatically.
type Flag string

const (
	// FlagNone is the normal state.
	FlagNone Flag = ""
	// FlagVerificationFailed means the archived copy's digest did not match.
	FlagVerificationFailed Flag = "verification_failed"
	// FlagLost means the bytes could not be located at any known path.
	FlagLost Flag = "lost"
)

// CategoryOther is the fallback hardware category when no rule matches or
// metadata extraction produced no make/model fields.
const CategoryOther = "other"

// Location is a physical site that owns zero or more media assets.
type Location struct {
	ID                string
	Name              string
	Jurisdiction      string
	PrimaryCategory   string
	SecondaryCategory string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ShortID returns the leading identifier segment used in paths and filenames.
func (l *Location) ShortID() string {
	return ShortID(l.ID)
}

// ShortID shortens a location identifier to its first 8 characters, dropping
// UUID hyphens first so the result is always alphanumeric.
func ShortID(id string) string {
	compact := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(id)), "-", "")
	if len(compact) <= 8 {
		return compact
	}
	return compact[:8]
}

// Asset is one catalogued media file. Digest is the deduplication key;
// CurrentPath always names where the bytes currently live.
type Asset struct {
	Digest        hashing.Digest
	LocationID    string
	Phase         Phase
	CurrentPath   string
	OriginalPath  string
	Filename      string
	Kind          MediaKind
	CategoryFlags map[string]bool
	RawMetadata   string
	Classified    bool
	ExtractOK     bool
	Verified      bool
	Flag          Flag
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Category returns the single active hardware category, or CategoryOther when
// no flag is set. The rule table guarantees at most one flag in practice; if
// several are somehow set the lexicographically first wins so the result stays
// deterministic.
func (a *Asset) Category() string {
	chosen := ""
	for category, set := range a.CategoryFlags {
		if !set {
			continue
		}
		if chosen == "" || category < chosen {
			chosen = category
		}
	}
	if chosen == "" {
		return CategoryOther
	}
	return chosen
}

// SetCategory sets exactly one category flag, clearing all others.
func (a *Asset) SetCategory(category string) {
	category = strings.TrimSpace(strings.ToLower(category))
	if category == "" {
		category = CategoryOther
	}
	a.CategoryFlags = map[string]bool{category: true}
	a.Classified = true
}

// Flagged reports whether the asset requires manual resolution.
func (a *Asset) Flagged() bool {
	return a.Flag != FlagNone
}

// Batch scopes pipeline stages to the assets created by one stager run:
// everything owned by the location that was catalogued at or after Since.
// Batches are ephemeral; they are never persisted.
type Batch struct {
	LocationID string
	Since      time.Time
}

// Stats aggregates catalog counts for diagnostics.
type Stats struct {
	Locations int
	Assets    int
	Staged    int
	Archived  int
	Verified  int
	Flagged   int
}
