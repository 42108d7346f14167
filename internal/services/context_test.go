package services_test

import (
	"context"
	"testing"

	"sitevault/internal/services"
)

func TestContextAnnotations(t *testing.T) {
	ctx := context.Background()

	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("empty context should carry no stage")
	}

	ctx = services.WithStage(ctx, "committer")
	ctx = services.WithLocation(ctx, "loc-123")
	ctx = services.WithDigest(ctx, "abcdef12")

	if stage, ok := services.StageFromContext(ctx); !ok || stage != "committer" {
		t.Fatalf("stage = %q, %v", stage, ok)
	}
	if id, ok := services.LocationFromContext(ctx); !ok || id != "loc-123" {
		t.Fatalf("location = %q, %v", id, ok)
	}
	if digest, ok := services.DigestFromContext(ctx); !ok || digest != "abcdef12" {
		t.Fatalf("digest = %q, %v", digest, ok)
	}
}

func TestContextEmptyValuesIgnored(t *testing.T) {
	ctx := services.WithStage(context.Background(), "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("empty stage should not be stored")
	}

	ctx = services.WithLocation(context.Background(), "")
	if _, ok := services.LocationFromContext(ctx); ok {
		t.Fatal("empty location should not be stored")
	}
}
