// Package extractor invokes external metadata tools against media files.
//
// The pipeline only depends on the Service interface: given a file path,
// return a flat key/value map within a bounded time or fail explicitly.
// Extraction is best-effort by contract; callers treat any error as "no
// metadata" and continue. The default implementation shells out to exiftool,
// with command execution abstracted behind an Executor so tests can inject
// canned output.
package extractor
