package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sitevault/internal/hashing"
)

const assetColumns = "digest, location_id, phase, current_path, original_path, filename, kind, category_flags, raw_metadata, classified, extract_ok, verified, flag, created_at, updated_at"

// InsertAsset records a newly staged asset. The digest is the primary key:
// inserting a digest that exists anywhere in the catalog fails with
// ErrDuplicateDigest. CurrentPath must name the staging copy.
func (s *Store) InsertAsset(ctx context.Context, asset *Asset) error {
	if asset == nil {
		return errors.New("asset is nil")
	}
	if asset.CurrentPath == "" {
		return errors.New("asset current path required")
	}
	if asset.Phase == "" {
		asset.Phase = PhaseStaged
	}

	now := time.Now().UTC()
	asset.CreatedAt = now
	asset.UpdatedAt = now

	flags, err := marshalFlags(asset.CategoryFlags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO assets (`+assetColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(asset.Digest),
		asset.LocationID,
		string(asset.Phase),
		asset.CurrentPath,
		asset.OriginalPath,
		asset.Filename,
		string(asset.Kind),
		flags,
		asset.RawMetadata,
		boolToInt(asset.Classified),
		boolToInt(asset.ExtractOK),
		boolToInt(asset.Verified),
		string(asset.Flag),
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateDigest, asset.Digest.Short())
		}
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

// HasDigest reports whether a digest is catalogued anywhere.
func (s *Store) HasDigest(ctx context.Context, digest hashing.Digest) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM assets WHERE digest = ?`, string(digest)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check digest: %w", err)
	}
	return count > 0, nil
}

// AssetByDigest fetches an asset by content digest.
func (s *Store) AssetByDigest(ctx context.Context, digest hashing.Digest) (*Asset, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+assetColumns+` FROM assets WHERE digest = ?`, string(digest))
	return scanAsset(row)
}

// UpdateAsset persists changes to an existing asset record.
func (s *Store) UpdateAsset(ctx context.Context, asset *Asset) error {
	if asset == nil {
		return errors.New("asset is nil")
	}
	if asset.CurrentPath == "" {
		return errors.New("asset current path required")
	}
	asset.UpdatedAt = time.Now().UTC()

	flags, err := marshalFlags(asset.CategoryFlags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(
		ctx,
		`UPDATE assets
         SET location_id = ?, phase = ?, current_path = ?, original_path = ?,
             filename = ?, kind = ?, category_flags = ?, raw_metadata = ?,
             classified = ?, extract_ok = ?, verified = ?, flag = ?, updated_at = ?
         WHERE digest = ?`,
		asset.LocationID,
		string(asset.Phase),
		asset.CurrentPath,
		asset.OriginalPath,
		asset.Filename,
		string(asset.Kind),
		flags,
		asset.RawMetadata,
		boolToInt(asset.Classified),
		boolToInt(asset.ExtractOK),
		boolToInt(asset.Verified),
		string(asset.Flag),
		formatTime(asset.UpdatedAt),
		string(asset.Digest),
	)
	if err != nil {
		return fmt.Errorf("update asset: %w", err)
	}
	return nil
}

// SetAssetArchived moves an asset's location pointer to its archive path and
// records the canonical filename in the same statement, so the catalog never
// observes a half-committed record.
func (s *Store) SetAssetArchived(ctx context.Context, digest hashing.Digest, archivePath, filename string) error {
	if archivePath == "" {
		return errors.New("archive path required")
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE assets SET phase = ?, current_path = ?, filename = ?, updated_at = ? WHERE digest = ?`,
		string(PhaseArchived),
		archivePath,
		filename,
		formatTime(time.Now()),
		string(digest),
	)
	if err != nil {
		return fmt.Errorf("set asset archived: %w", err)
	}
	return requireRow(res)
}

// SetAssetClassification stores the extractor output and the exclusive
// category decision for an asset.
func (s *Store) SetAssetClassification(ctx context.Context, digest hashing.Digest, category, rawMetadata string, extractOK bool) error {
	flags, err := marshalFlags(map[string]bool{category: true})
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE assets SET category_flags = ?, raw_metadata = ?, classified = 1, extract_ok = ?, updated_at = ?
         WHERE digest = ?`,
		flags,
		rawMetadata,
		boolToInt(extractOK),
		formatTime(time.Now()),
		string(digest),
	)
	if err != nil {
		return fmt.Errorf("set asset classification: %w", err)
	}
	return requireRow(res)
}

// SetAssetVerified records the verification outcome for an asset.
func (s *Store) SetAssetVerified(ctx context.Context, digest hashing.Digest, verified bool) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE assets SET verified = ?, updated_at = ? WHERE digest = ?`,
		boolToInt(verified),
		formatTime(time.Now()),
		string(digest),
	)
	if err != nil {
		return fmt.Errorf("set asset verified: %w", err)
	}
	return requireRow(res)
}

// FlagAsset marks an asset for manual resolution. Flagged assets keep their
// staging copies and are surfaced in batch reports until an operator clears
// them.
func (s *Store) FlagAsset(ctx context.Context, digest hashing.Digest, flag Flag) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE assets SET flag = ?, verified = 0, updated_at = ? WHERE digest = ?`,
		string(flag),
		formatTime(time.Now()),
		string(digest),
	)
	if err != nil {
		return fmt.Errorf("flag asset: %w", err)
	}
	return requireRow(res)
}

// AssetsInBatch returns the assets a stager run created for one location,
// ordered by creation time. Every downstream stage scopes its work list with
// this query so unrelated historical assets are never touched.
func (s *Store) AssetsInBatch(ctx context.Context, batch Batch) ([]*Asset, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+assetColumns+` FROM assets
         WHERE location_id = ? AND created_at >= ?
         ORDER BY created_at`,
		batch.LocationID,
		formatTime(batch.Since),
	)
	if err != nil {
		return nil, fmt.Errorf("query batch assets: %w", err)
	}
	defer rows.Close()
	return collectAssets(rows)
}

// OldestUnfinishedAssetTime returns the creation time of the oldest asset at
// the location that still has pipeline work pending: unflagged and not both
// archived and verified. ok is false when every asset at the location is
// finished.
func (s *Store) OldestUnfinishedAssetTime(ctx context.Context, locationID string) (time.Time, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT MIN(created_at) FROM assets
         WHERE location_id = ? AND flag = '' AND NOT (phase = 'archived' AND verified = 1)`,
		locationID,
	)
	var value sql.NullString
	if err := row.Scan(&value); err != nil {
		return time.Time{}, false, fmt.Errorf("query oldest unfinished asset: %w", err)
	}
	if !value.Valid || value.String == "" {
		return time.Time{}, false, nil
	}
	oldest, err := parseTimeString(value.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse oldest unfinished asset time: %w", err)
	}
	return oldest, true, nil
}

// RetainedStagingDigests returns the short digest prefixes of every asset
// whose staging copy must not be reclaimed: anything not yet archived and
// verified, plus anything flagged.
func (s *Store) RetainedStagingDigests(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT digest FROM assets WHERE NOT (phase = 'archived' AND verified = 1 AND flag = '')`,
	)
	if err != nil {
		return nil, fmt.Errorf("query retained digests: %w", err)
	}
	defer rows.Close()

	retained := make(map[string]struct{})
	for rows.Next() {
		var digest string
		if err := rows.Scan(&digest); err != nil {
			return nil, fmt.Errorf("scan retained digest: %w", err)
		}
		retained[hashing.Digest(digest).Short()] = struct{}{}
	}
	return retained, rows.Err()
}

// AssetsByLocation returns every asset owned by a location.
func (s *Store) AssetsByLocation(ctx context.Context, locationID string) ([]*Asset, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+assetColumns+` FROM assets WHERE location_id = ? ORDER BY created_at`,
		locationID,
	)
	if err != nil {
		return nil, fmt.Errorf("query location assets: %w", err)
	}
	defer rows.Close()
	return collectAssets(rows)
}

// FlaggedAssets returns all assets awaiting manual resolution.
func (s *Store) FlaggedAssets(ctx context.Context) ([]*Asset, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+assetColumns+` FROM assets WHERE flag <> '' ORDER BY updated_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("query flagged assets: %w", err)
	}
	defer rows.Close()
	return collectAssets(rows)
}

func collectAssets(rows *sql.Rows) ([]*Asset, error) {
	var assets []*Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

func scanAsset(scanner interface{ Scan(dest ...any) error }) (*Asset, error) {
	var (
		asset      Asset
		digest     string
		phase      string
		kind       string
		flagsRaw   string
		classified int
		extractOK  int
		verified   int
		flag       string
		createdRaw string
		updatedRaw string
	)
	err := scanner.Scan(
		&digest,
		&asset.LocationID,
		&phase,
		&asset.CurrentPath,
		&asset.OriginalPath,
		&asset.Filename,
		&kind,
		&flagsRaw,
		&asset.RawMetadata,
		&classified,
		&extractOK,
		&verified,
		&flag,
		&createdRaw,
		&updatedRaw,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan asset: %w", err)
	}

	asset.Digest = hashing.Digest(digest)
	asset.Phase = Phase(phase)
	asset.Kind = MediaKind(kind)
	asset.Classified = classified != 0
	asset.ExtractOK = extractOK != 0
	asset.Verified = verified != 0
	asset.Flag = Flag(flag)

	if flagsRaw != "" {
		if err := json.Unmarshal([]byte(flagsRaw), &asset.CategoryFlags); err != nil {
			return nil, fmt.Errorf("decode category flags: %w", err)
		}
	}
	if asset.CategoryFlags == nil {
		asset.CategoryFlags = map[string]bool{}
	}

	if created, err := parseTimeString(createdRaw); err == nil {
		asset.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		asset.UpdatedAt = updated
	}
	return &asset, nil
}

func marshalFlags(flags map[string]bool) (string, error) {
	if len(flags) == 0 {
		return "{}", nil
	}
	encoded, err := json.Marshal(flags)
	if err != nil {
		return "", fmt.Errorf("encode category flags: %w", err)
	}
	return string(encoded), nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
