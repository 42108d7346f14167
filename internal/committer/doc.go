// Package committer moves classified assets from staging into their final
// archive location.
//
// Placement prefers a hardlink when staging and archive share a filesystem
// and falls back to a verified copy otherwise. The commit is idempotent: an
// archive file that already holds the right bytes is adopted rather than
// rewritten, so an interrupted import can be re-run safely. An asset whose
// bytes cannot be found in staging or the archive is flagged as lost.
package committer
