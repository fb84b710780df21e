package driving

import "github.com/custodia-labs/studyrag/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, defaults filled in.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set stores a single dotted key (e.g., "agent.top_k") after validating it.
	Set(key, value string) error

	// Keys returns the recognised dotted keys, sorted.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// Validate checks the settings for internal consistency.
	Validate() error

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateCompletionConfig validates the current completion configuration by pinging the provider.
	ValidateCompletionConfig() error
}
