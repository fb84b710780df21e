package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/studyrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/studyrag/internal/core/domain"
)

func newTestSettings(env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore()
	svc := NewSettingsService(store, &mockAIValidator{})
	svc.SetEnv(func(key string) string { return env[key] })
	return svc, store
}

func TestSettingsService_GetDefaults(t *testing.T) {
	svc, _ := newTestSettings(nil)

	settings, err := svc.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.IndexBackendSQLite, settings.Index.Backend)
	assert.Equal(t, domain.SourceKindLocal, settings.Source.Kind)
	assert.Equal(t, "raw_data", settings.Source.Root)
	assert.Equal(t, domain.DefaultChunkSize, settings.Ingest.ChunkSize)
	assert.Equal(t, domain.DefaultChunkOverlap, settings.Ingest.ChunkOverlap)
	assert.Equal(t, domain.DefaultTopK, settings.Agent.TopK)
	assert.Equal(t, domain.DefaultToolTimeout, settings.Agent.ToolTimeout)
	assert.False(t, settings.Completion.IsConfigured())
	assert.False(t, settings.Embedding.IsConfigured())
	assert.Equal(t, domain.DefaultAppSettings(), svc.GetDefaults())
}

func TestSettingsService_ProviderDefaultsAndEnv(t *testing.T) {
	svc, store := newTestSettings(map[string]string{
		EnvOpenAIAPIKey:    "sk-env",
		EnvAnthropicAPIKey: "ant-env",
		EnvGitHubToken:     "ghp-env",
		EnvUserID:          "student-7",
	})
	require.NoError(t, store.Set("completion.provider", "anthropic"))
	require.NoError(t, store.Set("embedding.provider", "openai"))

	settings, err := svc.Get()
	require.NoError(t, err)

	assert.Equal(t, "claude-3-5-sonnet-latest", settings.Completion.Model)
	assert.Equal(t, "ant-env", settings.Completion.APIKey)
	assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model)
	assert.Equal(t, "sk-env", settings.Embedding.APIKey)
	assert.Equal(t, "ghp-env", settings.Source.Token)
	assert.Equal(t, "student-7", settings.Session.UserID)
	assert.True(t, settings.Completion.IsConfigured())
}

func TestSettingsService_StoredValuesWin(t *testing.T) {
	svc, store := newTestSettings(map[string]string{EnvOpenAIAPIKey: "sk-env"})
	require.NoError(t, store.Set("completion.provider", "openai"))
	require.NoError(t, store.Set("completion.api_key", "sk-file"))
	require.NoError(t, store.Set("completion.model", "gpt-4o-mini"))

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "sk-file", settings.Completion.APIKey)
	assert.Equal(t, "gpt-4o-mini", settings.Completion.Model)
}

func TestSettingsService_InvalidProviderIgnored(t *testing.T) {
	svc, store := newTestSettings(nil)
	require.NoError(t, store.Set("completion.provider", "skynet"))
	require.NoError(t, store.Set("index.backend", "cassandra"))

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Empty(t, settings.Completion.Provider)
	assert.Equal(t, domain.IndexBackendSQLite, settings.Index.Backend)
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		wantErr bool
	}{
		{"completion.provider", "ollama", false},
		{"completion.provider", "skynet", true},
		{"index.backend", "postgres", false},
		{"index.backend", "mongo", true},
		{"source.kind", "gcs", false},
		{"source.kind", "ftp", true},
		{"ingest.chunk_size", "800", false},
		{"ingest.chunk_size", "big", true},
		{"ingest.workers", "-1", true},
		{"embedding.requests_per_second", "2.5", false},
		{"embedding.requests_per_second", "fast", true},
		{"agent.tool_timeout", "45s", false},
		{"agent.tool_timeout", "45", true},
		{"session.user_id", "u1", false},
		{"no.such.key", "x", true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			svc, _ := newTestSettings(nil)
			err := svc.Set(tt.key, tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSettingsService_SetThenGet(t *testing.T) {
	svc, _ := newTestSettings(nil)
	require.NoError(t, svc.Set("ingest.chunk_size", "800"))
	require.NoError(t, svc.Set("agent.tool_timeout", "45s"))
	require.NoError(t, svc.Set("embedding.requests_per_second", "2.5"))

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, 800, settings.Ingest.ChunkSize)
	assert.Equal(t, 45*time.Second, settings.Agent.ToolTimeout)
	assert.InDelta(t, 2.5, settings.Embedding.RequestsPerSecond, 1e-9)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	svc, store := newTestSettings(nil)
	want := domain.DefaultAppSettings()
	want.Completion = domain.CompletionSettings{Provider: domain.AIProviderOllama, Model: "llama3.2"}
	want.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "nomic-embed-text"}
	want.Source.Tenant = "u1"
	want.Agent.TopK = 8

	require.NoError(t, svc.Save(&want))

	got, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	_, ok := store.Get("completion.api_key")
	assert.False(t, ok, "empty secrets are not written")
}

func TestSettingsService_Keys(t *testing.T) {
	svc, _ := newTestSettings(nil)
	keys := svc.Keys()
	assert.IsIncreasing(t, keys)
	assert.Contains(t, keys, "agent.top_k")
	assert.Contains(t, keys, "source.bucket")
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		wantErr bool
	}{
		{name: "defaults", values: nil},
		{name: "overlap too large", values: map[string]any{"ingest.chunk_size": 100, "ingest.chunk_overlap": 100}, wantErr: true},
		{name: "postgres without url", values: map[string]any{"index.backend": "postgres"}, wantErr: true},
		{name: "postgres with url", values: map[string]any{"index.backend": "postgres", "index.postgres_url": "postgres://localhost/rag"}},
		{name: "gcs without bucket", values: map[string]any{"source.kind": "gcs"}, wantErr: true},
		{name: "github without repo", values: map[string]any{"source.kind": "github"}, wantErr: true},
		{name: "anthropic embeddings", values: map[string]any{"embedding.provider": "anthropic"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestSettings(nil)
			for k, v := range tt.values {
				require.NoError(t, store.Set(k, v))
			}
			err := svc.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSettingsService_ValidateProviders(t *testing.T) {
	store := memory.NewConfigStore()
	validator := &mockAIValidator{completionErr: errors.New("connection refused")}
	svc := NewSettingsService(store, validator)

	assert.NoError(t, svc.ValidateEmbeddingConfig())
	assert.EqualError(t, svc.ValidateCompletionConfig(), "connection refused")

	svc = NewSettingsService(store, nil)
	assert.NoError(t, svc.ValidateCompletionConfig())
}
