// Package cli provides the cobra command tree for studyrag.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/studyrag/internal/adapters/driving/watch"
	"github.com/custodia-labs/studyrag/internal/core/ports/driving"
	"github.com/custodia-labs/studyrag/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// annotationNoServices marks commands that only need the settings service.
const annotationNoServices = "studyrag/no-services"

// Options are the global flags handed to the bootstrap function.
type Options struct {
	// UserID is the tenant for this invocation. Empty falls back to settings.
	UserID string

	// Verbose enables debug logging.
	Verbose bool
}

// Services holds the driving ports commands run against.
type Services struct {
	Catalog   driving.CatalogService
	Scope     driving.ScopeService
	Retriever driving.RetrieverService
	Agent     driving.AgentService
	Ingestion driving.IngestionService

	// Watch is set when the content source supports change notifications.
	Watch watch.Source

	// Tenant is the resolved user id.
	Tenant string

	// Close releases adapters opened by the bootstrap.
	Close func()
}

// Bootstrap builds services once flags are parsed.
type Bootstrap func(ctx context.Context, opts Options) (*Services, error)

var (
	catalogService   driving.CatalogService
	scopeService     driving.ScopeService
	retrieverService driving.RetrieverService
	agentService     driving.AgentService
	ingestionService driving.IngestionService
	settingsService  driving.SettingsService
	watchSource      watch.Source
	tenant           string

	bootstrap  Bootstrap
	closeHooks []func()

	flagVerbose bool
	flagUser    string
)

// ErrNotConfigured is returned when a command's service was not wired.
var ErrNotConfigured = errors.New("service not configured")

var rootCmd = &cobra.Command{
	Use:   "studyrag",
	Short: "Scoped question answering over your study material",
	Long: `studyrag ingests a library of documents organised as
collection / sub-collection / unit, and answers questions about it with
citations, restricted to the scope you choose.

Run 'studyrag ingest' first, then 'studyrag chat' or 'studyrag ask'.`,
	SilenceUsage:      true,
	PersistentPreRunE: preRun,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		for _, fn := range closeHooks {
			fn()
		}
		closeHooks = nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "user id that scopes ingestion and retrieval")
}

// SetSettingsService sets the settings service. It does not depend on flags.
func SetSettingsService(svc driving.SettingsService) {
	settingsService = svc
}

// SetBootstrap sets the function that builds the remaining services.
func SetBootstrap(fn Bootstrap) {
	bootstrap = fn
}

// SetServices installs services directly.
func SetServices(s *Services) {
	catalogService = s.Catalog
	scopeService = s.Scope
	retrieverService = s.Retriever
	agentService = s.Agent
	ingestionService = s.Ingestion
	watchSource = s.Watch
	tenant = s.Tenant
	if s.Close != nil {
		closeHooks = append(closeHooks, s.Close)
	}
}

// Execute runs the root command. Command output goes to stdout.
func Execute(ctx context.Context) error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}

func preRun(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(flagVerbose)

	if bootstrap == nil || skipsServices(cmd) {
		return nil
	}
	services, err := bootstrap(cmd.Context(), Options{UserID: flagUser, Verbose: flagVerbose})
	if err != nil {
		return fmt.Errorf("initialising: %w", err)
	}
	SetServices(services)
	return nil
}

func skipsServices(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[annotationNoServices]; ok {
			return true
		}
	}
	return false
}

func noServices() map[string]string {
	return map[string]string{annotationNoServices: ""}
}

func notConfigured(name string) error {
	return fmt.Errorf("%s: %w", name, ErrNotConfigured)
}
