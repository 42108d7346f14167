// Package verifier re-hashes freshly archived assets against their catalog
// digests.
//
// A matching asset has its staging copy released and is marked verified. A
// mismatched or missing archive file is flagged for manual resolution and the
// staging copy is retained so no bytes are lost.
package verifier
