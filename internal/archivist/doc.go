// Package archivist owns the archive filesystem layout contract.
//
// Every path in the archive is a pure function of catalog state:
//
//	{root}/{jurisdiction}-{category}/{site-name}_{id8}/{kind}/{hardware}/{id8}-{tag}_{digest8}.{ext}
//
// Staging paths are equally deterministic, which lets crash recovery and the
// verifier recompute where bytes must live without extra bookkeeping.
// Directory creation is idempotent by construction.
package archivist
