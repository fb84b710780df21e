// Package domain defines the core business entities for studyrag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Unit: A single source document placed in the collection hierarchy
//   - Chunk: A bounded text segment of a unit, the retrieval granule
//   - Scope: The active navigation restriction applied to retrieval
//   - Filter: A closed predicate over the indexed metadata fields
//   - Conversation: Messages exchanged with the completion service
//   - IngestionRun: The persisted summary of one ingestion invocation
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
