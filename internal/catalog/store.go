package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"sitevault/internal/config"
)

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Open initializes or connects to the catalog database and verifies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.CatalogPath())
}

// OpenPath connects to the catalog database at an explicit path.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, locks: make(map[string]*sync.Mutex)}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// WithLocationLock serializes read-modify-write sequences against the assets
// of one location. SQLite already serializes individual statements; this lock
// keeps whole load-update-store cycles from interleaving.
func (s *Store) WithLocationLock(locationID string, fn func() error) error {
	s.mu.Lock()
	lock, ok := s.locks[locationID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[locationID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn()
}

// Stats returns aggregate catalog counts.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM locations`).Scan(&stats.Locations); err != nil {
		return Stats{}, fmt.Errorf("count locations: %w", err)
	}
	row := s.db.QueryRowContext(ctx, `
        SELECT COUNT(1),
               COALESCE(SUM(phase = 'staged'), 0),
               COALESCE(SUM(phase = 'archived'), 0),
               COALESCE(SUM(verified), 0),
               COALESCE(SUM(flag <> ''), 0)
        FROM assets`)
	if err := row.Scan(&stats.Assets, &stats.Staged, &stats.Archived, &stats.Verified, &stats.Flagged); err != nil {
		return Stats{}, fmt.Errorf("count assets: %w", err)
	}
	return stats, nil
}

// CheckHealth pings the database and verifies the expected tables exist.
func (s *Store) CheckHealth(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("catalog database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		return fmt.Errorf("ping catalog database: %w", err)
	}

	for _, table := range []string{"locations", "assets"} {
		var name string
		row := s.db.QueryRowContext(connCtx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table)
		if err := row.Scan(&name); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("catalog table %q missing", table)
			}
			return fmt.Errorf("query table info: %w", err)
		}
	}
	return nil
}

// timeFormat is RFC 3339 with a fixed-width fractional second so that the
// text ordering of stored timestamps matches their chronological ordering.
// Batch queries rely on this when comparing created_at against a cutoff.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
