// Package catalog persists locations and media assets in SQLite and exposes
// the bookkeeping operations the pipeline stages rely on.
//
// The Store manages database connections, schema initialization, duplicate
// detection by content digest, and the location-scoped write lock that keeps
// read-modify-write sequences on a single asset from interleaving. An asset's
// current path is a total field: the schema rejects empty values, and the
// phase column records whether the bytes live in staging or the archive.
//
// Treat this package as the single source of truth for catalog semantics;
// when you add new asset fields, update schema.sql and bump schemaVersion.
package catalog
