// Package staging reclaims disk space from staging copies that verification
// has already released elsewhere or that no catalog record references.
//
// Cleanup is conservative: a staging file whose digest prefix matches any
// unarchived, unverified, or flagged asset is never touched.
package staging
