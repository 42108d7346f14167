package testsupport

import (
	"context"
	"testing"

	"sitevault/internal/catalog"
	"sitevault/internal/config"
)

// MustOpenCatalog opens a catalog.Store for tests and registers cleanup.
func MustOpenCatalog(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewLocation creates a location record for tests using the provided store.
func NewLocation(t testing.TB, store *catalog.Store, name string, meta catalog.LocationMeta) *catalog.Location {
	t.Helper()

	loc, _, err := store.InsertLocationIfAbsent(context.Background(), name, meta)
	if err != nil {
		t.Fatalf("store.InsertLocationIfAbsent: %v", err)
	}
	return loc
}
