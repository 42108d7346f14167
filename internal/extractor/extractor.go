package extractor

import (
	"context"
	"strings"
)

// Fields is the flattened key/value metadata an extractor produced for one file.
type Fields map[string]string

var makeKeys = []string{"Make", "Manufacturer", "DeviceManufacturer", "AndroidManufacturer"}

var modelKeys = []string{"Model", "CameraModelName", "DeviceModelName", "AndroidModel"}

// Make returns the device make field, trying the common tag spellings.
func (f Fields) Make() string {
	return f.first(makeKeys)
}

// Model returns the device model field, trying the common tag spellings.
func (f Fields) Model() string {
	return f.first(modelKeys)
}

func (f Fields) first(keys []string) string {
	for _, key := range keys {
		if value, ok := f[key]; ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	// tolerate case variations from less common tools
	lowered := make(map[string]string, len(f))
	for k, v := range f {
		lowered[strings.ToLower(k)] = v
	}
	for _, key := range keys {
		if value, ok := lowered[strings.ToLower(key)]; ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// Result bundles the parsed fields with the raw tool output for archival.
type Result struct {
	Fields Fields
	raw    []byte
}

// RawJSON returns the unmodified tool output.
func (r Result) RawJSON() []byte {
	return append([]byte(nil), r.raw...)
}

// Service describes the metadata extraction contract the organizer depends
// on. Implementations must respect context cancellation and return within
// their configured timeout.
type Service interface {
	Extract(ctx context.Context, path string) (Result, error)
}
