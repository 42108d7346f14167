// Package stager ingests source directories into per-location staging.
//
// Each regular file is hashed, deduplicated against the whole catalog,
// classified by extension, and hardlinked or copied into the staging area
// before a pending asset record is written with its staging path. Unreadable
// files, unsupported extensions, and duplicates are counted skips; nothing a
// single bad file does can fail the batch.
package stager
