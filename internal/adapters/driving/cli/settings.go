package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change the configuration stored in ~/.studyrag/config.toml.

Keys use dotted names such as completion.provider or source.root.
Run 'studyrag settings keys' for the full list.`,
	Annotations: noServices(),
	RunE:        runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:     "set <key> <value>",
	Short:   "Set a configuration value",
	Example: `  studyrag settings set completion.provider anthropic`,
	Args:    cobra.ExactArgs(2),
	RunE:    runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List configuration keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate settings and ping the AI providers",
	Args:  cobra.NoArgs,
	RunE:  runSettingsCheck,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Completion]")
	printProvider(cmd, settings.Completion.Provider, settings.Completion.Model,
		settings.Completion.BaseURL, settings.Completion.APIKey, settings.Completion.IsConfigured())

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	if settings.Embedding.RequestsPerSecond > 0 {
		cmd.Printf("  Requests/s: %g\n", settings.Embedding.RequestsPerSecond)
	}
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Backend: %s\n", settings.Index.Backend.Description())
	switch settings.Index.Backend {
	case domain.IndexBackendSQLite:
		cmd.Printf("  Path: %s\n", settings.Index.Path)
	case domain.IndexBackendPostgres:
		cmd.Printf("  URL: %s\n", maskAPIKey(settings.Index.PostgresURL))
	}
	cmd.Println()

	cmd.Println("[Source]")
	cmd.Printf("  Kind: %s\n", settings.Source.Kind)
	switch settings.Source.Kind {
	case domain.SourceKindLocal:
		cmd.Printf("  Root: %s\n", settings.Source.Root)
	case domain.SourceKindGCS:
		cmd.Printf("  Bucket: %s\n", settings.Source.Bucket)
		cmd.Printf("  Prefix: %s\n", settings.Source.Prefix)
	case domain.SourceKindGitHub:
		cmd.Printf("  Repo: %s\n", settings.Source.Repo)
		if settings.Source.Ref != "" {
			cmd.Printf("  Ref: %s\n", settings.Source.Ref)
		}
		if settings.Source.Token != "" {
			cmd.Printf("  Token: %s\n", maskAPIKey(settings.Source.Token))
		}
	}
	if settings.Source.Tenant != "" {
		cmd.Printf("  Tenant: %s\n", settings.Source.Tenant)
	}
	cmd.Println()

	cmd.Println("[Ingest]")
	cmd.Printf("  Workers: %d\n", settings.Ingest.Workers)
	cmd.Printf("  Chunk size: %d (overlap %d)\n", settings.Ingest.ChunkSize, settings.Ingest.ChunkOverlap)
	if settings.Ingest.LogPath != "" {
		cmd.Printf("  Run log: %s\n", settings.Ingest.LogPath)
	}
	cmd.Println()

	cmd.Println("[Agent]")
	cmd.Printf("  Max iterations: %d\n", settings.Agent.MaxIterations)
	cmd.Printf("  Top K: %d\n", settings.Agent.TopK)
	cmd.Println()

	if settings.Session.UserID != "" {
		cmd.Println("[Session]")
		cmd.Printf("  User: %s\n", settings.Session.UserID)
		cmd.Println()
	}

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'studyrag settings set <key> <value>' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}
	keys := settingsService.Keys()
	sort.Strings(keys)
	for _, k := range keys {
		cmd.Println(k)
	}
	return nil
}

// runSettingsCheck validates the settings and pings both providers.
func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	failed := false
	check := func(name string, fn func() error) {
		cmd.Printf("%s... ", name)
		if err := fn(); err != nil {
			failed = true
			cmd.Printf("FAILED: %v\n", err)
			return
		}
		cmd.Println("OK")
	}

	check("Settings", settingsService.Validate)
	check("Completion provider", settingsService.ValidateCompletionConfig)
	check("Embedding provider", settingsService.ValidateEmbeddingConfig)

	if failed {
		return fmt.Errorf("%w: configuration check failed", domain.ErrInvalidInput)
	}
	return nil
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
