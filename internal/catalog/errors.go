package catalog

import "errors"

var (
	// ErrDuplicateDigest is returned when inserting an asset whose digest is
	// already catalogued anywhere, for any location.
	ErrDuplicateDigest = errors.New("digest already catalogued")

	// ErrLocationInUse is returned when deleting a location that still owns
	// assets. Deletion never cascades.
	ErrLocationInUse = errors.New("location still referenced by assets")

	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")
)
