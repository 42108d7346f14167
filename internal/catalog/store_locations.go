package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocationMeta carries the human-entered fields of a location record.
type LocationMeta struct {
	Jurisdiction      string
	PrimaryCategory   string
	SecondaryCategory string
}

const locationColumns = "id, name, jurisdiction, primary_category, secondary_category, created_at, updated_at"

// InsertLocationIfAbsent returns the location with the exact given name,
// creating it when absent. The second return value reports whether a new
// record was created. Identifier collisions are checked at creation; an
// insert that races on the name unique constraint falls back to the winner.
func (s *Store) InsertLocationIfAbsent(ctx context.Context, name string, meta LocationMeta) (*Location, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, errors.New("location name required")
	}

	if existing, err := s.LocationByName(ctx, name); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	now := time.Now().UTC()
	timestamp := formatTime(now)

	const maxIDAttempts = 5
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := uuid.NewString()
		_, err := s.db.ExecContext(
			ctx,
			`INSERT INTO locations (id, name, jurisdiction, primary_category, secondary_category, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id,
			name,
			strings.TrimSpace(meta.Jurisdiction),
			strings.TrimSpace(meta.PrimaryCategory),
			strings.TrimSpace(meta.SecondaryCategory),
			timestamp,
			timestamp,
		)
		if err == nil {
			loc, getErr := s.LocationByID(ctx, id)
			return loc, true, getErr
		}
		if isUniqueViolation(err) {
			// Either the name was inserted concurrently or the generated
			// identifier collided. Resolve by re-reading the name first.
			if existing, lookupErr := s.LocationByName(ctx, name); lookupErr == nil {
				return existing, false, nil
			}
			continue
		}
		return nil, false, fmt.Errorf("insert location: %w", err)
	}
	return nil, false, fmt.Errorf("insert location %q: exhausted identifier attempts", name)
}

// LocationByID fetches a location by identifier.
func (s *Store) LocationByID(ctx context.Context, id string) (*Location, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = ?`, id)
	return scanLocation(row)
}

// LocationByName fetches a location by exact name match.
func (s *Store) LocationByName(ctx context.Context, name string) (*Location, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+locationColumns+` FROM locations WHERE name = ?`, strings.TrimSpace(name))
	return scanLocation(row)
}

// ListLocations returns all locations ordered by name.
func (s *Store) ListLocations(ctx context.Context) ([]*Location, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var locations []*Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

// UpdateLocationMeta persists edits to the human-entered location fields.
func (s *Store) UpdateLocationMeta(ctx context.Context, loc *Location) error {
	if loc == nil {
		return errors.New("location is nil")
	}
	loc.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE locations
         SET name = ?, jurisdiction = ?, primary_category = ?, secondary_category = ?, updated_at = ?
         WHERE id = ?`,
		strings.TrimSpace(loc.Name),
		strings.TrimSpace(loc.Jurisdiction),
		strings.TrimSpace(loc.PrimaryCategory),
		strings.TrimSpace(loc.SecondaryCategory),
		formatTime(loc.UpdatedAt),
		loc.ID,
	)
	if err != nil {
		return fmt.Errorf("update location: %w", err)
	}
	return nil
}

// DeleteLocation removes a location that owns no assets. Deleting a location
// with assets fails with ErrLocationInUse; there is no cascade.
func (s *Store) DeleteLocation(ctx context.Context, id string) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM assets WHERE location_id = ?`, id).Scan(&count); err != nil {
		return fmt.Errorf("count location assets: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %d assets", ErrLocationInUse, count)
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanLocation(scanner interface{ Scan(dest ...any) error }) (*Location, error) {
	var (
		loc        Location
		createdRaw string
		updatedRaw string
	)
	err := scanner.Scan(
		&loc.ID,
		&loc.Name,
		&loc.Jurisdiction,
		&loc.PrimaryCategory,
		&loc.SecondaryCategory,
		&createdRaw,
		&updatedRaw,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan location: %w", err)
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		loc.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		loc.UpdatedAt = updated
	}
	return &loc, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "constraint failed")
}
