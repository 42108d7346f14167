// Package hashing computes the content digests used for deduplication and
// integrity verification.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// ShortLen is the number of hex characters used in filenames and reports.
const ShortLen = 8

// Digest is a lowercase hex SHA-256 of file contents.
type Digest string

// HashFile streams the file at path and returns its digest.
func HashFile(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for hashing: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return Digest(hex.EncodeToString(h.Sum(nil))), nil
}

// HashReader consumes r and returns the digest of its contents.
func HashReader(r io.Reader) (Digest, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return Digest(hex.EncodeToString(h.Sum(nil))), nil
}

// HashBytes returns the digest of an in-memory buffer.
func HashBytes(data []byte) (Digest, error) {
	sum := sha256.Sum256(data)
	return Digest(hex.EncodeToString(sum[:])), nil
}

// Short returns the leading ShortLen characters for use in filenames.
func (d Digest) Short() string {
	s := string(d)
	if len(s) <= ShortLen {
		return s
	}
	return s[:ShortLen]
}

// String returns the full hex digest.
func (d Digest) String() string { return string(d) }

// Equal compares digests case-insensitively.
func (d Digest) Equal(other Digest) bool {
	return strings.EqualFold(string(d), string(other))
}

// Valid reports whether the digest looks like a full SHA-256 hex string.
func (d Digest) Valid() bool {
	if len(d) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(string(d))
	return err == nil
}
