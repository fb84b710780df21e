// Package sqlite provides the SQLite-backed vector index and run log.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. A single database connection serves:
//
//   - VectorIndex: chunks, their unit metadata and embeddings
//   - RunLogStore: ingestion run summaries
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Search
//
// Metadata filters compile to a SQL WHERE clause. Similarity is computed in
// process over the rows that pass the filter, so a scoped query only ever
// ranks in-scope chunks.
//
// # Data Location
//
// By default, the database is stored at ~/.studyrag/data/index.db
package sqlite
