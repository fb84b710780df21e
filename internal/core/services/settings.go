package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
	"github.com/custodia-labs/studyrag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyCompletionProvider = "completion.provider"
	keyCompletionModel    = "completion.model"
	keyCompletionBaseURL  = "completion.base_url"
	keyCompletionAPIKey   = "completion.api_key"
	keyEmbedProvider      = "embedding.provider"
	keyEmbedModel         = "embedding.model"
	keyEmbedBaseURL       = "embedding.base_url"
	keyEmbedAPIKey        = "embedding.api_key"
	keyEmbedRPS           = "embedding.requests_per_second"
	keyIndexBackend       = "index.backend"
	keyIndexPath          = "index.path"
	keyIndexPostgresURL   = "index.postgres_url"
	keySourceKind         = "source.kind"
	keySourceRoot         = "source.root"
	keySourceBucket       = "source.bucket"
	keySourcePrefix       = "source.prefix"
	keySourceRepo         = "source.repo"
	keySourceRef          = "source.ref"
	keySourceToken        = "source.token"
	keySourceTenant       = "source.tenant"
	keyIngestWorkers      = "ingest.workers"
	keyIngestChunkSize    = "ingest.chunk_size"
	keyIngestChunkOverlap = "ingest.chunk_overlap"
	keyIngestDiffLimit    = "ingest.diff_limit"
	keyIngestLogPath      = "ingest.log_path"
	keyAgentMaxIter       = "agent.max_iterations"
	keyAgentTopK          = "agent.top_k"
	keyAgentCompletionTO  = "agent.completion_timeout"
	keyAgentToolTO        = "agent.tool_timeout"
	keySessionUserID      = "session.user_id"
)

// Environment variables consulted when the matching key is unset.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvGitHubToken     = "GITHUB_TOKEN"
	EnvUserID          = "STUDYRAG_USER"
)

// keyKind is how a key's string value is parsed and validated.
type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindDuration
	kindProvider
	kindBackend
	kindSource
)

var settingKeys = map[string]keyKind{
	keyCompletionProvider: kindProvider,
	keyCompletionModel:    kindString,
	keyCompletionBaseURL:  kindString,
	keyCompletionAPIKey:   kindString,
	keyEmbedProvider:      kindProvider,
	keyEmbedModel:         kindString,
	keyEmbedBaseURL:       kindString,
	keyEmbedAPIKey:        kindString,
	keyEmbedRPS:           kindFloat,
	keyIndexBackend:       kindBackend,
	keyIndexPath:          kindString,
	keyIndexPostgresURL:   kindString,
	keySourceKind:         kindSource,
	keySourceRoot:         kindString,
	keySourceBucket:       kindString,
	keySourcePrefix:       kindString,
	keySourceRepo:         kindString,
	keySourceRef:          kindString,
	keySourceToken:        kindString,
	keySourceTenant:       kindString,
	keyIngestWorkers:      kindInt,
	keyIngestChunkSize:    kindInt,
	keyIngestChunkOverlap: kindInt,
	keyIngestDiffLimit:    kindInt,
	keyIngestLogPath:      kindString,
	keyAgentMaxIter:       kindInt,
	keyAgentTopK:          kindInt,
	keyAgentCompletionTO:  kindDuration,
	keyAgentToolTO:        kindDuration,
	keySessionUserID:      kindString,
}

// SettingsService maps the flat config store onto domain.AppSettings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// SetEnv replaces the environment lookup. Used by tests.
func (s *SettingsService) SetEnv(getenv func(string) string) {
	s.getenv = getenv
}

// Get retrieves current application settings.
// Unset API keys fall back to the provider's environment variable.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Completion: domain.CompletionSettings{
			Provider: s.getProvider(keyCompletionProvider),
			BaseURL:  s.configStore.GetString(keyCompletionBaseURL),
			APIKey:   s.configStore.GetString(keyCompletionAPIKey),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL),
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			RequestsPerSecond: s.getFloat(keyEmbedRPS),
		},
		Index: domain.IndexSettings{
			Backend:     s.getBackend(d.Index.Backend),
			Path:        s.configStore.GetString(keyIndexPath),
			PostgresURL: s.configStore.GetString(keyIndexPostgresURL),
		},
		Source: domain.SourceSettings{
			Kind:   s.getSourceKind(d.Source.Kind),
			Root:   s.getString(keySourceRoot, d.Source.Root),
			Bucket: s.configStore.GetString(keySourceBucket),
			Prefix: s.configStore.GetString(keySourcePrefix),
			Repo:   s.configStore.GetString(keySourceRepo),
			Ref:    s.configStore.GetString(keySourceRef),
			Token:  s.getString(keySourceToken, s.getenv(EnvGitHubToken)),
			Tenant: s.configStore.GetString(keySourceTenant),
		},
		Ingest: domain.IngestSettings{
			Workers:      s.getInt(keyIngestWorkers, d.Ingest.Workers),
			ChunkSize:    s.getInt(keyIngestChunkSize, d.Ingest.ChunkSize),
			ChunkOverlap: s.getInt(keyIngestChunkOverlap, d.Ingest.ChunkOverlap),
			DiffLimit:    s.configStore.GetInt(keyIngestDiffLimit),
			LogPath:      s.configStore.GetString(keyIngestLogPath),
		},
		Agent: domain.AgentSettings{
			MaxIterations:     s.getInt(keyAgentMaxIter, d.Agent.MaxIterations),
			TopK:              s.getInt(keyAgentTopK, d.Agent.TopK),
			CompletionTimeout: s.getDuration(keyAgentCompletionTO, d.Agent.CompletionTimeout),
			ToolTimeout:       s.getDuration(keyAgentToolTO, d.Agent.ToolTimeout),
		},
		Session: domain.SessionSettings{
			UserID: s.getString(keySessionUserID, s.getenv(EnvUserID)),
		},
	}

	settings.Completion.Model = s.getString(keyCompletionModel,
		domain.DefaultCompletionModels()[settings.Completion.Provider])
	settings.Embedding.Model = s.getString(keyEmbedModel,
		domain.DefaultEmbeddingModels()[settings.Embedding.Provider])

	if settings.Completion.APIKey == "" {
		settings.Completion.APIKey = s.envAPIKey(settings.Completion.Provider)
	}
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = s.envAPIKey(settings.Embedding.Provider)
	}

	return settings, nil
}

// Save persists application settings. Empty secrets are not written.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := map[string]any{
		keyCompletionProvider: settings.Completion.Provider.String(),
		keyCompletionModel:    settings.Completion.Model,
		keyCompletionBaseURL:  settings.Completion.BaseURL,
		keyEmbedProvider:      settings.Embedding.Provider.String(),
		keyEmbedModel:         settings.Embedding.Model,
		keyEmbedBaseURL:       settings.Embedding.BaseURL,
		keyEmbedRPS:           settings.Embedding.RequestsPerSecond,
		keyIndexBackend:       string(settings.Index.Backend),
		keyIndexPath:          settings.Index.Path,
		keyIndexPostgresURL:   settings.Index.PostgresURL,
		keySourceKind:         string(settings.Source.Kind),
		keySourceRoot:         settings.Source.Root,
		keySourceBucket:       settings.Source.Bucket,
		keySourcePrefix:       settings.Source.Prefix,
		keySourceRepo:         settings.Source.Repo,
		keySourceRef:          settings.Source.Ref,
		keySourceTenant:       settings.Source.Tenant,
		keyIngestWorkers:      settings.Ingest.Workers,
		keyIngestChunkSize:    settings.Ingest.ChunkSize,
		keyIngestChunkOverlap: settings.Ingest.ChunkOverlap,
		keyIngestDiffLimit:    settings.Ingest.DiffLimit,
		keyIngestLogPath:      settings.Ingest.LogPath,
		keyAgentMaxIter:       settings.Agent.MaxIterations,
		keyAgentTopK:          settings.Agent.TopK,
		keyAgentCompletionTO:  settings.Agent.CompletionTimeout.String(),
		keyAgentToolTO:        settings.Agent.ToolTimeout.String(),
		keySessionUserID:      settings.Session.UserID,
	}
	secrets := map[string]string{
		keyCompletionAPIKey: settings.Completion.APIKey,
		keyEmbedAPIKey:      settings.Embedding.APIKey,
		keySourceToken:      settings.Source.Token,
	}
	for key, secret := range secrets {
		if secret != "" {
			values[key] = secret
		}
	}

	for _, key := range sortedSettingKeys(values) {
		if err := s.configStore.Set(key, values[key]); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return nil
}

// Set validates and stores a single key.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var stored any = value
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		stored = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		stored = f
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%w: %s must be a duration such as 30s", domain.ErrInvalidInput, key)
		}
	case kindProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, value)
		}
	case kindBackend:
		if !domain.IndexBackend(value).IsValid() {
			return fmt.Errorf("%w: unknown index backend %q", domain.ErrInvalidInput, value)
		}
	case kindSource:
		if !domain.SourceKind(value).IsValid() {
			return fmt.Errorf("%w: unknown source kind %q", domain.ErrInvalidInput, value)
		}
	case kindString:
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns the recognised keys, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Validate checks the settings for internal consistency.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.Ingest.ChunkOverlap >= settings.Ingest.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap must be smaller than chunk_size", domain.ErrInvalidInput)
	}
	switch settings.Index.Backend {
	case domain.IndexBackendPostgres:
		if settings.Index.PostgresURL == "" {
			return fmt.Errorf("%w: index.postgres_url is required for the postgres backend", domain.ErrInvalidInput)
		}
	case domain.IndexBackendSQLite, domain.IndexBackendMemory:
	}
	switch settings.Source.Kind {
	case domain.SourceKindGCS:
		if settings.Source.Bucket == "" {
			return fmt.Errorf("%w: source.bucket is required for the gcs source", domain.ErrInvalidInput)
		}
	case domain.SourceKindGitHub:
		if settings.Source.Repo == "" {
			return fmt.Errorf("%w: source.repo is required for the github source", domain.ErrInvalidInput)
		}
	case domain.SourceKindLocal:
		if settings.Source.Root == "" {
			return fmt.Errorf("%w: source.root is required for the local source", domain.ErrInvalidInput)
		}
	}
	if settings.Embedding.Provider != "" && !containsProvider(domain.AllEmbeddingProviders(), settings.Embedding.Provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, settings.Embedding.Provider)
	}
	return nil
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateCompletionConfig validates the current completion configuration by pinging the provider.
func (s *SettingsService) ValidateCompletionConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateCompletion(&settings.Completion)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string) float64 {
	val, ok := s.configStore.Get(key)
	if !ok {
		return 0
	}
	switch v := val.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return ""
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.IndexBackend) domain.IndexBackend {
	backend := domain.IndexBackend(s.configStore.GetString(keyIndexBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getSourceKind(defaultVal domain.SourceKind) domain.SourceKind {
	kind := domain.SourceKind(s.configStore.GetString(keySourceKind))
	if !kind.IsValid() {
		return defaultVal
	}
	return kind
}

func (s *SettingsService) envAPIKey(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return s.getenv(EnvOpenAIAPIKey)
	case domain.AIProviderAnthropic:
		return s.getenv(EnvAnthropicAPIKey)
	case domain.AIProviderOllama:
		return ""
	default:
		return ""
	}
}

func containsProvider(providers []domain.AIProvider, p domain.AIProvider) bool {
	for _, candidate := range providers {
		if candidate == p {
			return true
		}
	}
	return false
}

func sortedSettingKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
