// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ContentSource: Enumerates and reads documents in the content hierarchy
//   - Normaliser: Extracts page text from raw bytes
//   - Chunker: Splits page text into overlapping chunks
//   - NormaliserRegistry: Selects a normaliser by file extension
//   - VectorIndex: Stores embedded chunks and answers filtered similarity queries
//   - EmbeddingService: Generates vector embeddings for chunks and queries
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - CompletionService: Tool-calling chat completions. Without it, ask/chat are disabled.
//   - RunLogStore: Ingestion run history. Without it, runs are not recorded.
//   - PromptStore: Editable prompt templates. Without it, built-in defaults are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
