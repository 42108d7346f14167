// Package pipeline drives one import batch through the staging,
// classification, commit, and verification stages in order.
//
// A filesystem lock serializes imports so two runs never race on the shared
// staging and archive trees. Stage health checks run before any file is
// touched.
package pipeline
