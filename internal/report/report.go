// Package report accumulates the per-import batch report, the single source
// of truth for import success or failure.
package report

import (
	"sync"
	"time"
)

// FlaggedAsset names an asset requiring manual resolution and why.
type FlaggedAsset struct {
	Digest string `json:"digest"`
	Reason string `json:"reason"`
}

// Summary is the immutable rendering of a batch report.
type Summary struct {
	LocationID           string         `json:"location_id"`
	LocationName         string         `json:"location_name"`
	StartedAt            time.Time      `json:"started_at"`
	Accepted             int            `json:"accepted"`
	DuplicateSkipped     int            `json:"duplicate_skipped"`
	UnsupportedSkipped   int            `json:"unsupported_skipped"`
	UnreadableSkipped    int            `json:"unreadable_skipped"`
	ClassificationFailed int            `json:"classification_failed"`
	VerificationFailed   int            `json:"verification_failed"`
	Lost                 int            `json:"lost"`
	Flagged              []FlaggedAsset `json:"flagged,omitempty"`
}

// Success reports whether the batch completed with zero integrity-fatal
// assets. Skips and classification failures do not fail a batch.
func (s Summary) Success() bool {
	return s.VerificationFailed == 0 && s.Lost == 0
}

// Report collects counts from all pipeline stages. Methods are safe for
// concurrent use by stage worker pools.
type Report struct {
	mu      sync.Mutex
	summary Summary
}

// New creates a report for one import batch.
func New(locationID, locationName string, startedAt time.Time) *Report {
	return &Report{summary: Summary{
		LocationID:   locationID,
		LocationName: locationName,
		StartedAt:    startedAt,
	}}
}

// SetLocation records the resolved location once the stager knows it.
func (r *Report) SetLocation(id, name string) {
	r.add(func(s *Summary) {
		s.LocationID = id
		s.LocationName = name
	})
}

// AddAccepted counts a newly staged asset.
func (r *Report) AddAccepted() { r.add(func(s *Summary) { s.Accepted++ }) }

// AddDuplicate counts a source file skipped because its digest is already catalogued.
func (r *Report) AddDuplicate() { r.add(func(s *Summary) { s.DuplicateSkipped++ }) }

// AddUnsupported counts a source file skipped for an unrecognized extension.
func (r *Report) AddUnsupported() { r.add(func(s *Summary) { s.UnsupportedSkipped++ }) }

// AddUnreadable counts a source file that could not be read.
func (r *Report) AddUnreadable() { r.add(func(s *Summary) { s.UnreadableSkipped++ }) }

// AddClassificationFailed counts an asset whose metadata extraction failed.
func (r *Report) AddClassificationFailed() { r.add(func(s *Summary) { s.ClassificationFailed++ }) }

// AddVerificationFailed counts and flags an asset whose archived copy did not
// match its digest.
func (r *Report) AddVerificationFailed(digest string) {
	r.add(func(s *Summary) {
		s.VerificationFailed++
		s.Flagged = append(s.Flagged, FlaggedAsset{Digest: digest, Reason: "verification_failed"})
	})
}

// AddLost counts and flags an asset whose bytes could not be located anywhere.
func (r *Report) AddLost(digest string) {
	r.add(func(s *Summary) {
		s.Lost++
		s.Flagged = append(s.Flagged, FlaggedAsset{Digest: digest, Reason: "lost"})
	})
}

// Snapshot returns a copy of the current counts.
func (r *Report) Snapshot() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.summary
	out.Flagged = append([]FlaggedAsset(nil), r.summary.Flagged...)
	return out
}

func (r *Report) add(fn func(*Summary)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.summary)
}
