// Package export renders per-location catalog snapshots for external
// consumers.
package export

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"sitevault/internal/catalog"
)

// AssetRecord is one asset in an exported snapshot.
type AssetRecord struct {
	Digest       string    `json:"digest"`
	Phase        string    `json:"phase"`
	CurrentPath  string    `json:"current_path"`
	OriginalPath string    `json:"original_path,omitempty"`
	Filename     string    `json:"filename,omitempty"`
	Kind         string    `json:"kind"`
	Category     string    `json:"category"`
	ExtractOK    bool      `json:"extract_ok"`
	Verified     bool      `json:"verified"`
	Flag         string    `json:"flag,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LocationRecord is the exported location header.
type LocationRecord struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Jurisdiction      string    `json:"jurisdiction,omitempty"`
	PrimaryCategory   string    `json:"primary_category,omitempty"`
	SecondaryCategory string    `json:"secondary_category,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Snapshot is the full export payload for one location.
type Snapshot struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Location    LocationRecord `json:"location"`
	Assets      []AssetRecord  `json:"assets"`
}

// Build assembles the snapshot for one location.
func Build(ctx context.Context, store *catalog.Store, locationID string) (Snapshot, error) {
	loc, err := store.LocationByID(ctx, locationID)
	if err != nil {
		return Snapshot{}, err
	}
	assets, err := store.AssetsByLocation(ctx, locationID)
	if err != nil {
		return Snapshot{}, err
	}

	snapshot := Snapshot{
		GeneratedAt: time.Now().UTC(),
		Location: LocationRecord{
			ID:                loc.ID,
			Name:              loc.Name,
			Jurisdiction:      loc.Jurisdiction,
			PrimaryCategory:   loc.PrimaryCategory,
			SecondaryCategory: loc.SecondaryCategory,
			CreatedAt:         loc.CreatedAt,
		},
		Assets: make([]AssetRecord, 0, len(assets)),
	}
	for _, asset := range assets {
		snapshot.Assets = append(snapshot.Assets, AssetRecord{
			Digest:       string(asset.Digest),
			Phase:        string(asset.Phase),
			CurrentPath:  asset.CurrentPath,
			OriginalPath: asset.OriginalPath,
			Filename:     asset.Filename,
			Kind:         string(asset.Kind),
			Category:     asset.Category(),
			ExtractOK:    asset.ExtractOK,
			Verified:     asset.Verified,
			Flag:         string(asset.Flag),
			CreatedAt:    asset.CreatedAt,
			UpdatedAt:    asset.UpdatedAt,
		})
	}
	return snapshot, nil
}

// Write renders the snapshot as indented JSON.
func Write(w io.Writer, snapshot Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snapshot)
}
