package catalog_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"sitevault/internal/catalog"
	"sitevault/internal/hashing"
	"sitevault/internal/testsupport"
)

func digestOf(t *testing.T, seed string) hashing.Digest {
	t.Helper()
	digest, err := hashing.HashReader(strings.NewReader(seed))
	if err != nil {
		t.Fatalf("HashReader: %v", err)
	}
	return digest
}

func TestOpenInitializesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)

	if err := store.CheckHealth(context.Background()); err != nil {
		t.Fatalf("CheckHealth: %v", err)
	}
	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Locations != 0 || stats.Assets != 0 {
		t.Fatalf("fresh catalog not empty: %+v", stats)
	}
}

func TestInsertLocationIfAbsentReusesByName(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()

	first, created, err := store.InsertLocationIfAbsent(ctx, "Harbor North", catalog.LocationMeta{Jurisdiction: "NL"})
	if err != nil {
		t.Fatalf("InsertLocationIfAbsent: %v", err)
	}
	if !created {
		t.Fatal("first insert should report created")
	}
	if first.ID == "" {
		t.Fatal("expected generated id")
	}

	second, created, err := store.InsertLocationIfAbsent(ctx, "Harbor North", catalog.LocationMeta{})
	if err != nil {
		t.Fatalf("second InsertLocationIfAbsent: %v", err)
	}
	if created {
		t.Fatal("second insert should reuse the record")
	}
	if second.ID != first.ID {
		t.Fatalf("expected same id, got %q and %q", first.ID, second.ID)
	}
	if second.Jurisdiction != "NL" {
		t.Fatalf("reuse dropped metadata: %+v", second)
	}
}

func TestInsertAssetRejectsDuplicateDigest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()

	locA := testsupport.NewLocation(t, store, "Site A", catalog.LocationMeta{})
	locB := testsupport.NewLocation(t, store, "Site B", catalog.LocationMeta{})
	digest := digestOf(t, "shared bytes")

	asset := &catalog.Asset{
		Digest:      digest,
		LocationID:  locA.ID,
		Phase:       catalog.PhaseStaged,
		CurrentPath: "/staging/a.jpg",
		Kind:        catalog.KindImage,
	}
	if err := store.InsertAsset(ctx, asset); err != nil {
		t.Fatalf("InsertAsset: %v", err)
	}

	// Dedup is global, not per location.
	dup := &catalog.Asset{
		Digest:      digest,
		LocationID:  locB.ID,
		Phase:       catalog.PhaseStaged,
		CurrentPath: "/staging/b.jpg",
		Kind:        catalog.KindImage,
	}
	if err := store.InsertAsset(ctx, dup); !errors.Is(err, catalog.ErrDuplicateDigest) {
		t.Fatalf("expected ErrDuplicateDigest, got %v", err)
	}
}

func TestInsertAssetRequiresCurrentPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	loc := testsupport.NewLocation(t, store, "Depot", catalog.LocationMeta{})

	asset := &catalog.Asset{
		Digest:     digestOf(t, "pathless"),
		LocationID: loc.ID,
		Phase:      catalog.PhaseStaged,
		Kind:       catalog.KindImage,
	}
	if err := store.InsertAsset(context.Background(), asset); err == nil {
		t.Fatal("expected error for empty current path")
	}
}

func TestAssetLifecycleUpdates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()
	loc := testsupport.NewLocation(t, store, "Quarry", catalog.LocationMeta{})
	digest := digestOf(t, "lifecycle")

	asset := &catalog.Asset{
		Digest:      digest,
		LocationID:  loc.ID,
		Phase:       catalog.PhaseStaged,
		CurrentPath: "/staging/x.jpg",
		Kind:        catalog.KindImage,
	}
	if err := store.InsertAsset(ctx, asset); err != nil {
		t.Fatalf("InsertAsset: %v", err)
	}

	if err := store.SetAssetClassification(ctx, digest, "drone", `{"Make":"DJI"}`, true); err != nil {
		t.Fatalf("SetAssetClassification: %v", err)
	}
	got, err := store.AssetByDigest(ctx, digest)
	if err != nil {
		t.Fatalf("AssetByDigest: %v", err)
	}
	if !got.Classified || got.Category() != "drone" || !got.ExtractOK {
		t.Fatalf("classification not recorded: %+v", got)
	}
	if got.RawMetadata == "" {
		t.Fatal("raw metadata not recorded")
	}

	if err := store.SetAssetArchived(ctx, digest, "/archive/final.jpg", "final.jpg"); err != nil {
		t.Fatalf("SetAssetArchived: %v", err)
	}
	got, err = store.AssetByDigest(ctx, digest)
	if err != nil {
		t.Fatalf("AssetByDigest: %v", err)
	}
	if got.Phase != catalog.PhaseArchived || got.CurrentPath != "/archive/final.jpg" || got.Filename != "final.jpg" {
		t.Fatalf("archive placement not recorded: %+v", got)
	}

	if err := store.SetAssetVerified(ctx, digest, true); err != nil {
		t.Fatalf("SetAssetVerified: %v", err)
	}
	got, err = store.AssetByDigest(ctx, digest)
	if err != nil {
		t.Fatalf("AssetByDigest: %v", err)
	}
	if !got.Verified {
		t.Fatal("verification not recorded")
	}

	if err := store.FlagAsset(ctx, digest, catalog.FlagVerificationFailed); err != nil {
		t.Fatalf("FlagAsset: %v", err)
	}
	got, err = store.AssetByDigest(ctx, digest)
	if err != nil {
		t.Fatalf("AssetByDigest: %v", err)
	}
	if got.Flag != catalog.FlagVerificationFailed {
		t.Fatalf("flag = %q", got.Flag)
	}
	if got.Verified {
		t.Fatal("flagging must clear the verified bit")
	}
}

func TestAssetsInBatchScopesByLocationAndTime(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()
	locA := testsupport.NewLocation(t, store, "Site A", catalog.LocationMeta{})
	locB := testsupport.NewLocation(t, store, "Site B", catalog.LocationMeta{})

	early := &catalog.Asset{
		Digest:      digestOf(t, "early"),
		LocationID:  locA.ID,
		Phase:       catalog.PhaseStaged,
		CurrentPath: "/staging/early.jpg",
		Kind:        catalog.KindImage,
	}
	if err := store.InsertAsset(ctx, early); err != nil {
		t.Fatalf("InsertAsset: %v", err)
	}

	since := time.Now().UTC()

	for _, seed := range []string{"in-batch-1", "in-batch-2"} {
		asset := &catalog.Asset{
			Digest:      digestOf(t, seed),
			LocationID:  locA.ID,
			Phase:       catalog.PhaseStaged,
			CurrentPath: "/staging/" + seed + ".jpg",
			Kind:        catalog.KindImage,
		}
		if err := store.InsertAsset(ctx, asset); err != nil {
			t.Fatalf("InsertAsset: %v", err)
		}
	}
	other := &catalog.Asset{
		Digest:      digestOf(t, "other-location"),
		LocationID:  locB.ID,
		Phase:       catalog.PhaseStaged,
		CurrentPath: "/staging/other.jpg",
		Kind:        catalog.KindImage,
	}
	if err := store.InsertAsset(ctx, other); err != nil {
		t.Fatalf("InsertAsset: %v", err)
	}

	assets, err := store.AssetsInBatch(ctx, catalog.Batch{LocationID: locA.ID, Since: since})
	if err != nil {
		t.Fatalf("AssetsInBatch: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("expected 2 assets in batch, got %d", len(assets))
	}
	for _, asset := range assets {
		if asset.LocationID != locA.ID {
			t.Fatalf("batch leaked location %s", asset.LocationID)
		}
		if asset.Digest.Equal(early.Digest) {
			t.Fatal("batch included an asset created before the cutoff")
		}
	}
}

func TestDeleteLocationRejectsWhileReferenced(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()
	loc := testsupport.NewLocation(t, store, "Tower", catalog.LocationMeta{})

	asset := &catalog.Asset{
		Digest:      digestOf(t, "holds reference"),
		LocationID:  loc.ID,
		Phase:       catalog.PhaseStaged,
		CurrentPath: "/staging/ref.jpg",
		Kind:        catalog.KindImage,
	}
	if err := store.InsertAsset(ctx, asset); err != nil {
		t.Fatalf("InsertAsset: %v", err)
	}

	if err := store.DeleteLocation(ctx, loc.ID); !errors.Is(err, catalog.ErrLocationInUse) {
		t.Fatalf("expected ErrLocationInUse, got %v", err)
	}

	empty := testsupport.NewLocation(t, store, "Empty", catalog.LocationMeta{})
	if err := store.DeleteLocation(ctx, empty.ID); err != nil {
		t.Fatalf("DeleteLocation: %v", err)
	}
	if _, err := store.LocationByID(ctx, empty.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStatsCountsPhases(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()
	loc := testsupport.NewLocation(t, store, "Yard", catalog.LocationMeta{})

	staged := &catalog.Asset{
		Digest:      digestOf(t, "staged"),
		LocationID:  loc.ID,
		Phase:       catalog.PhaseStaged,
		CurrentPath: "/staging/s.jpg",
		Kind:        catalog.KindImage,
	}
	if err := store.InsertAsset(ctx, staged); err != nil {
		t.Fatalf("InsertAsset: %v", err)
	}
	archived := &catalog.Asset{
		Digest:      digestOf(t, "archived"),
		LocationID:  loc.ID,
		Phase:       catalog.PhaseStaged,
		CurrentPath: "/staging/a.jpg",
		Kind:        catalog.KindVideo,
	}
	if err := store.InsertAsset(ctx, archived); err != nil {
		t.Fatalf("InsertAsset: %v", err)
	}
	if err := store.SetAssetArchived(ctx, archived.Digest, "/archive/a.mp4", "a.mp4"); err != nil {
		t.Fatalf("SetAssetArchived: %v", err)
	}
	if err := store.SetAssetVerified(ctx, archived.Digest, true); err != nil {
		t.Fatalf("SetAssetVerified: %v", err)
	}
	if err := store.FlagAsset(ctx, staged.Digest, catalog.FlagLost); err != nil {
		t.Fatalf("FlagAsset: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Locations != 1 || stats.Assets != 2 || stats.Staged != 1 || stats.Archived != 1 || stats.Flagged != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRetainedStagingDigests(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()
	loc := testsupport.NewLocation(t, store, "Pier", catalog.LocationMeta{})

	inflight := digestOf(t, "inflight")
	released := digestOf(t, "released")

	for _, d := range []hashing.Digest{inflight, released} {
		asset := &catalog.Asset{
			Digest:      d,
			LocationID:  loc.ID,
			Phase:       catalog.PhaseStaged,
			CurrentPath: "/staging/" + d.Short() + ".jpg",
			Kind:        catalog.KindImage,
		}
		if err := store.InsertAsset(ctx, asset); err != nil {
			t.Fatalf("InsertAsset: %v", err)
		}
	}
	if err := store.SetAssetArchived(ctx, released, "/archive/r.jpg", "r.jpg"); err != nil {
		t.Fatalf("SetAssetArchived: %v", err)
	}
	if err := store.SetAssetVerified(ctx, released, true); err != nil {
		t.Fatalf("SetAssetVerified: %v", err)
	}

	retained, err := store.RetainedStagingDigests(ctx)
	if err != nil {
		t.Fatalf("RetainedStagingDigests: %v", err)
	}
	if _, ok := retained[inflight.Short()]; !ok {
		t.Fatal("in-flight digest missing from retained set")
	}
	if _, ok := retained[released.Short()]; ok {
		t.Fatal("released digest should not be retained")
	}
}

func TestOldestUnfinishedAssetTime(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()
	loc := testsupport.NewLocation(t, store, "Pier West", catalog.LocationMeta{})
	other := testsupport.NewLocation(t, store, "Pier East", catalog.LocationMeta{})

	if _, ok, err := store.OldestUnfinishedAssetTime(ctx, loc.ID); err != nil {
		t.Fatalf("OldestUnfinishedAssetTime: %v", err)
	} else if ok {
		t.Fatal("empty location should have no unfinished assets")
	}

	stranded := digestOf(t, "stranded by a crash")
	finished := digestOf(t, "archived and verified")
	flagged := digestOf(t, "awaiting the operator")
	elsewhere := digestOf(t, "different location")

	for _, d := range []hashing.Digest{stranded, finished, flagged} {
		asset := &catalog.Asset{
			Digest:      d,
			LocationID:  loc.ID,
			Phase:       catalog.PhaseStaged,
			CurrentPath: "/staging/" + d.Short() + ".jpg",
			Kind:        catalog.KindImage,
		}
		if err := store.InsertAsset(ctx, asset); err != nil {
			t.Fatalf("InsertAsset: %v", err)
		}
	}
	if err := store.InsertAsset(ctx, &catalog.Asset{
		Digest:      elsewhere,
		LocationID:  other.ID,
		Phase:       catalog.PhaseStaged,
		CurrentPath: "/staging/" + elsewhere.Short() + ".jpg",
		Kind:        catalog.KindImage,
	}); err != nil {
		t.Fatalf("InsertAsset: %v", err)
	}

	if err := store.SetAssetArchived(ctx, finished, "/archive/f.jpg", "f.jpg"); err != nil {
		t.Fatalf("SetAssetArchived: %v", err)
	}
	if err := store.SetAssetVerified(ctx, finished, true); err != nil {
		t.Fatalf("SetAssetVerified: %v", err)
	}
	if err := store.FlagAsset(ctx, flagged, catalog.FlagLost); err != nil {
		t.Fatalf("FlagAsset: %v", err)
	}

	strandedAsset, err := store.AssetByDigest(ctx, stranded)
	if err != nil {
		t.Fatalf("AssetByDigest: %v", err)
	}

	oldest, ok, err := store.OldestUnfinishedAssetTime(ctx, loc.ID)
	if err != nil {
		t.Fatalf("OldestUnfinishedAssetTime: %v", err)
	}
	if !ok {
		t.Fatal("stranded asset should count as unfinished")
	}
	if !oldest.Equal(strandedAsset.CreatedAt) {
		t.Fatalf("oldest = %v, want %v", oldest, strandedAsset.CreatedAt)
	}

	// The stranded asset must fall inside a batch window starting at the
	// reported time.
	assets, err := store.AssetsInBatch(ctx, catalog.Batch{LocationID: loc.ID, Since: oldest})
	if err != nil {
		t.Fatalf("AssetsInBatch: %v", err)
	}
	found := false
	for _, asset := range assets {
		if asset.Digest == stranded {
			found = true
		}
	}
	if !found {
		t.Fatal("stranded asset missing from the widened batch window")
	}
}
