package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or completions.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// IndexBackend identifies the vector index implementation.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendSQLite stores chunks and vectors in a local SQLite file.
	IndexBackendSQLite IndexBackend = "sqlite"

	// IndexBackendPostgres stores chunks in PostgreSQL with the pgvector extension.
	IndexBackendPostgres IndexBackend = "postgres"

	// IndexBackendMemory keeps everything in process memory.
	IndexBackendMemory IndexBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendSQLite, IndexBackendPostgres, IndexBackendMemory:
		return true
	default:
		return false
	}
}

// Description returns a human-readable description of the backend.
func (b IndexBackend) Description() string {
	switch b {
	case IndexBackendSQLite:
		return "SQLite (local file)"
	case IndexBackendPostgres:
		return "PostgreSQL + pgvector"
	case IndexBackendMemory:
		return "In-memory (not persisted)"
	default:
		return unknownDescription
	}
}

// SourceKind identifies the content source binding.
type SourceKind string

// Available content sources.
const (
	// SourceKindLocal reads a directory tree on the local filesystem.
	SourceKindLocal SourceKind = "local"

	// SourceKindGCS reads objects from a Google Cloud Storage bucket.
	SourceKindGCS SourceKind = "gcs"

	// SourceKindGitHub reads files from a GitHub repository tree.
	SourceKindGitHub SourceKind = "github"
)

// IsValid returns true if the source kind is recognised.
func (k SourceKind) IsValid() bool {
	switch k {
	case SourceKindLocal, SourceKindGCS, SourceKindGitHub:
		return true
	default:
		return false
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// RequestsPerSecond throttles embedding calls during ingestion. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// CompletionSettings holds completion provider configuration.
type CompletionSettings struct {
	// Provider is the completion service provider.
	Provider AIProvider

	// Model is the model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the completion provider is set up.
func (c CompletionSettings) IsConfigured() bool {
	if !c.Provider.IsValid() {
		return false
	}
	if c.Provider.RequiresAPIKey() && c.APIKey == "" {
		return false
	}
	return true
}

// IndexSettings holds vector index configuration.
type IndexSettings struct {
	// Backend selects the implementation.
	Backend IndexBackend

	// Path is the data directory for the SQLite backend.
	Path string

	// PostgresURL is the connection string for the Postgres backend.
	PostgresURL string
}

// SourceSettings holds content source configuration.
type SourceSettings struct {
	// Kind selects the binding.
	Kind SourceKind

	// Root is the local content root (local kind).
	Root string

	// Bucket and Prefix locate the content root in object storage (gcs kind).
	Bucket string
	Prefix string

	// Repo is "owner/name" and Ref the branch or commit (github kind).
	Repo  string
	Ref   string
	Token string

	// Tenant stamps ingested units with an owning user.
	Tenant string
}

// IngestSettings tunes the ingestion pipeline.
type IngestSettings struct {
	// Workers bounds concurrent document loading.
	Workers int

	// ChunkSize and ChunkOverlap are measured in characters.
	ChunkSize    int
	ChunkOverlap int

	// DiffLimit bounds the already-ingested lookup. Zero reads every source path.
	DiffLimit int

	// LogPath is the JSON run log file. Empty disables the file log.
	LogPath string
}

// AgentSettings tunes the reasoning loop.
type AgentSettings struct {
	// MaxIterations caps ASK steps per question.
	MaxIterations int

	// TopK is the number of chunks returned per retrieval.
	TopK int

	// CompletionTimeout bounds a single completion call. Zero disables the bound.
	CompletionTimeout time.Duration

	// ToolTimeout bounds a single tool invocation. Zero disables the bound.
	ToolTimeout time.Duration
}

// SessionSettings holds the session boundary identity.
type SessionSettings struct {
	// UserID becomes the mandatory tenant filter when set.
	UserID string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Completion CompletionSettings
	Embedding  EmbeddingSettings
	Index      IndexSettings
	Source     SourceSettings
	Ingest     IngestSettings
	Agent      AgentSettings
	Session    SessionSettings
}

// Defaults for settings that have sensible values out of the box.
const (
	DefaultChunkSize         = 1000
	DefaultChunkOverlap      = 200
	DefaultIngestWorkers     = 4
	DefaultTopK              = 5
	DefaultMaxIterations     = 8
	DefaultCompletionTimeout = 120 * time.Second
	DefaultToolTimeout       = 30 * time.Second
)

// DefaultAppSettings returns settings with sensible defaults.
// AI providers are left unconfigured; users set them in config.toml or .env.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Index: IndexSettings{
			Backend: IndexBackendSQLite,
		},
		Source: SourceSettings{
			Kind: SourceKindLocal,
			Root: "raw_data",
		},
		Ingest: IngestSettings{
			Workers:      DefaultIngestWorkers,
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
		},
		Agent: AgentSettings{
			MaxIterations:     DefaultMaxIterations,
			TopK:              DefaultTopK,
			CompletionTimeout: DefaultCompletionTimeout,
			ToolTimeout:       DefaultToolTimeout,
		},
	}
}

// AllCompletionProviders returns providers that support tool-calling completions.
func AllCompletionProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultCompletionModels returns default models for each completion provider.
func DefaultCompletionModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
