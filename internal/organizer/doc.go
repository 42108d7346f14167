// Package organizer classifies staged assets by originating hardware.
//
// It runs the metadata extractor against each unclassified asset in the
// batch, matches the reported make and model against the hardware rule
// table, and records the winning category on the catalog record. Extraction
// failures downgrade the asset to the fallback category rather than failing
// the batch.
package organizer
