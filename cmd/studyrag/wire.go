package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/studyrag/internal/adapters/driven/ai"
	"github.com/custodia-labs/studyrag/internal/adapters/driven/config/file"
	filelog "github.com/custodia-labs/studyrag/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/studyrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/studyrag/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/studyrag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/studyrag/internal/adapters/driving/cli"
	"github.com/custodia-labs/studyrag/internal/connectors/filesystem"
	"github.com/custodia-labs/studyrag/internal/connectors/gcs"
	"github.com/custodia-labs/studyrag/internal/connectors/github"
	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
	"github.com/custodia-labs/studyrag/internal/core/ports/driving"
	"github.com/custodia-labs/studyrag/internal/core/services"
	"github.com/custodia-labs/studyrag/internal/logger"
	"github.com/custodia-labs/studyrag/internal/normalisers"
	"github.com/custodia-labs/studyrag/internal/postprocessors/chunker"
)

// closers releases adapters in reverse order of opening.
type closers []func()

func (c *closers) add(fn func()) {
	*c = append(*c, fn)
}

func (c closers) close() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// newBootstrap returns the function that builds services once flags are parsed.
func newBootstrap(home string, settingsService driving.SettingsService) cli.Bootstrap {
	return func(ctx context.Context, opts cli.Options) (*cli.Services, error) {
		settings, err := settingsService.Get()
		if err != nil {
			return nil, fmt.Errorf("loading settings: %w", err)
		}
		return build(ctx, home, settings, opts)
	}
}

//nolint:gocyclo // wiring every adapter is sequential by nature
func build(ctx context.Context, home string, settings *domain.AppSettings, opts cli.Options) (*cli.Services, error) {
	var cleanup closers
	fail := func(err error) (*cli.Services, error) {
		cleanup.close()
		return nil, err
	}

	tenant := resolveTenant(opts, settings)
	settings.Source.Tenant = tenant

	aiResult := ai.Init(settings)
	cleanup.add(aiResult.Close)
	for _, w := range aiResult.Warnings {
		logger.Warn("%s", w)
	}
	embedder := aiResult.EmbeddingService

	index, runLog, err := openIndex(ctx, home, settings, embedder, &cleanup)
	if err != nil {
		return fail(err)
	}

	runLogs := []driven.RunLogStore{runLog}
	if settings.Ingest.LogPath != "" {
		runLogs = append(runLogs, filelog.NewRunLogStore(settings.Ingest.LogPath))
	}

	source, err := openSource(ctx, settings)
	if err != nil {
		return fail(err)
	}

	catalog := services.NewCatalog(index, services.WithTenant(tenant))
	scope := services.NewScopeResolver(catalog)
	retriever := services.NewRetriever(embedder, index, scope, services.WithTopK(settings.Agent.TopK))

	agent := services.NewAgent(aiResult.CompletionService, retriever, catalog, services.AgentConfig{
		MaxIterations:     settings.Agent.MaxIterations,
		CompletionTimeout: settings.Agent.CompletionTimeout,
		ToolTimeout:       settings.Agent.ToolTimeout,
	})
	prompts, err := file.NewPromptStore(filepath.Join(home, "prompts"))
	if err != nil {
		return fail(err)
	}
	agent.SetPromptStore(prompts)

	chunks := chunker.New(
		chunker.WithChunkSize(settings.Ingest.ChunkSize),
		chunker.WithOverlap(settings.Ingest.ChunkOverlap),
	)
	ingestion := services.NewIngestionPipeline(source, normalisers.NewDefaultRegistry(), chunks, embedder, index,
		services.IngestionConfig{
			Workers:   settings.Ingest.Workers,
			DiffLimit: settings.Ingest.DiffLimit,
			Tenant:    tenant,
			RunLogs:   runLogs,
			Catalog:   catalog,
		})

	svc := &cli.Services{
		Catalog:   catalog,
		Scope:     scope,
		Retriever: retriever,
		Agent:     agent,
		Ingestion: ingestion,
		Tenant:    tenant,
		Close:     cleanup.close,
	}
	if fs, ok := source.(*filesystem.Source); ok {
		svc.Watch = fs
	}

	logger.Debug("services ready: source=%s index=%s tenant=%q", source.Name(), settings.Index.Backend, tenant)
	return svc, nil
}

// resolveTenant picks the user id: the --user flag, then session.user_id,
// then source.tenant.
func resolveTenant(opts cli.Options, settings *domain.AppSettings) string {
	switch {
	case opts.UserID != "":
		return opts.UserID
	case settings.Session.UserID != "":
		return settings.Session.UserID
	}
	return settings.Source.Tenant
}

// openIndex opens the configured vector index and the run log that lives
// alongside it.
func openIndex(
	ctx context.Context,
	home string,
	settings *domain.AppSettings,
	embedder driven.EmbeddingService,
	cleanup *closers,
) (driven.VectorIndex, driven.RunLogStore, error) {
	switch settings.Index.Backend {
	case domain.IndexBackendPostgres:
		dim := domain.EmbeddingDimensions()[settings.Embedding.Model]
		if embedder != nil {
			dim = embedder.Dimensions()
		}
		index, err := postgres.NewVectorIndex(ctx, settings.Index.PostgresURL, dim)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
		}
		cleanup.add(func() { _ = index.Close() })
		// Postgres has no run table; runs go to the file log or memory.
		return index, memory.NewRunLogStore(), nil

	case domain.IndexBackendMemory:
		return memory.NewVectorIndex(), memory.NewRunLogStore(), nil

	case domain.IndexBackendSQLite:
	}

	dir := settings.Index.Path
	if dir == "" {
		dir = filepath.Join(home, "data")
	}
	store, err := sqlite.NewStore(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	cleanup.add(func() { _ = store.Close() })
	return store.VectorIndex(), store.RunLogStore(), nil
}

// openSource binds the configured content source. The tenant only changes
// the default bucket prefix; local roots are used as configured.
func openSource(ctx context.Context, settings *domain.AppSettings) (driven.ContentSource, error) {
	switch settings.Source.Kind {
	case domain.SourceKindGCS:
		cfg, err := gcs.ParseConfig(settings.Source)
		if err != nil {
			return nil, err
		}
		svc, err := gcs.NewStorageService(ctx)
		if err != nil {
			return nil, fmt.Errorf("opening gcs source: %w", err)
		}
		return gcs.NewSource(svc, cfg, nil), nil

	case domain.SourceKindGitHub:
		cfg, err := github.ParseConfig(settings.Source)
		if err != nil {
			return nil, err
		}
		client := github.NewClient(ctx, settings.Source.Token, github.ProactiveRate)
		return github.NewSource(client, cfg), nil

	case domain.SourceKindLocal:
	}

	return filesystem.New(settings.Source.Root), nil
}
