package export_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"sitevault/internal/catalog"
	"sitevault/internal/export"
	"sitevault/internal/hashing"
	"sitevault/internal/testsupport"
)

func seedAsset(t *testing.T, store *catalog.Store, loc *catalog.Location, seed string) hashing.Digest {
	t.Helper()
	digest, err := hashing.HashBytes([]byte(seed))
	if err != nil {
		t.Fatalf("HashBytes: %v", err)
	}
	asset := &catalog.Asset{
		Digest:      digest,
		LocationID:  loc.ID,
		Phase:       catalog.PhaseStaged,
		CurrentPath: fmt.Sprintf("/staging/%s.jpg", digest.Short()),
		Kind:        catalog.KindImage,
	}
	if err := store.InsertAsset(context.Background(), asset); err != nil {
		t.Fatalf("InsertAsset: %v", err)
	}
	return digest
}

func TestBuildSnapshot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	loc := testsupport.NewLocation(t, store, "Harbor North", catalog.LocationMeta{
		Jurisdiction:    "NL",
		PrimaryCategory: "harbor",
	})
	first := seedAsset(t, store, loc, "frame one")
	second := seedAsset(t, store, loc, "frame two")
	if err := store.SetAssetClassification(context.Background(), first, "camera", "", true); err != nil {
		t.Fatalf("SetAssetClassification: %v", err)
	}

	snapshot, err := export.Build(context.Background(), store, loc.ID)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if snapshot.Location.ID != loc.ID || snapshot.Location.Name != "Harbor North" {
		t.Fatalf("location = %+v", snapshot.Location)
	}
	if snapshot.Location.Jurisdiction != "NL" {
		t.Fatalf("jurisdiction = %q", snapshot.Location.Jurisdiction)
	}
	if len(snapshot.Assets) != 2 {
		t.Fatalf("assets = %d", len(snapshot.Assets))
	}

	byDigest := map[string]export.AssetRecord{}
	for _, record := range snapshot.Assets {
		byDigest[record.Digest] = record
	}
	classified, ok := byDigest[string(first)]
	if !ok {
		t.Fatalf("first asset missing from snapshot: %v", byDigest)
	}
	if classified.Category != "camera" || !classified.ExtractOK {
		t.Fatalf("classified record = %+v", classified)
	}
	if unclassified := byDigest[string(second)]; unclassified.Phase != string(catalog.PhaseStaged) {
		t.Fatalf("unclassified record = %+v", unclassified)
	}
}

func TestBuildUnknownLocation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	if _, err := export.Build(context.Background(), store, "no-such-id"); err == nil {
		t.Fatal("expected error for unknown location")
	}
}

func TestWriteRendersJSON(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	loc := testsupport.NewLocation(t, store, "Depot", catalog.LocationMeta{})
	seedAsset(t, store, loc, "a file")

	snapshot, err := export.Build(context.Background(), store, loc.ID)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, snapshot); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var decoded export.Snapshot
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if decoded.Location.Name != "Depot" || len(decoded.Assets) != 1 {
		t.Fatalf("decoded = %+v", decoded)
	}
}
