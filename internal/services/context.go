package services

import "context"

type contextKey string

const (
	stageKey    contextKey = "stage"
	locationKey contextKey = "location_id"
	digestKey   contextKey = "digest"
)

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithLocation annotates context with the owning location identifier.
func WithLocation(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, locationKey, id)
}

// LocationFromContext returns the location identifier if present.
func LocationFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(locationKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithDigest annotates context with the content digest being processed.
func WithDigest(ctx context.Context, digest string) context.Context {
	if digest == "" {
		return ctx
	}
	return context.WithValue(ctx, digestKey, digest)
}

// DigestFromContext returns the content digest if present.
func DigestFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(digestKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
