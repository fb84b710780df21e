package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
	"github.com/custodia-labs/studyrag/internal/core/ports/driving"
	"github.com/custodia-labs/studyrag/internal/logger"
)

// Ensure IngestionPipeline implements the interface.
var _ driving.IngestionService = (*IngestionPipeline)(nil)

// DefaultEmbedBatchSize is the number of chunks sent per embedding request.
const DefaultEmbedBatchSize = 64

// IngestionConfig tunes the pipeline.
type IngestionConfig struct {
	// Workers bounds concurrent document loading.
	Workers int

	// DiffLimit bounds the already-ingested lookup. Zero reads every source path.
	DiffLimit int

	// EmbedBatchSize is the number of chunks per embedding request.
	EmbedBatchSize int

	// Tenant stamps every unit and scopes the diff to the tenant's units.
	Tenant string

	// RunLogs receive the run summary. The first store also serves Runs.
	RunLogs []driven.RunLogStore

	// Catalog is invalidated after every successful commit.
	Catalog driving.CatalogService
}

// IngestionPipeline populates the vector index from a content source.
// A run is scan, diff, process, commit and log. Runs never overlap.
type IngestionPipeline struct {
	source   driven.ContentSource
	registry driven.NormaliserRegistry
	chunker  driven.Chunker
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	cfg      IngestionConfig

	running atomic.Bool
}

// NewIngestionPipeline creates a pipeline. Zero config values are replaced by defaults.
func NewIngestionPipeline(
	source driven.ContentSource,
	registry driven.NormaliserRegistry,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	cfg IngestionConfig,
) *IngestionPipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = domain.DefaultIngestWorkers
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = DefaultEmbedBatchSize
	}
	return &IngestionPipeline{
		source:   source,
		registry: registry,
		chunker:  chunker,
		embedder: embedder,
		index:    index,
		cfg:      cfg,
	}
}

// candidateResult is the Process outcome of one candidate.
type candidateResult struct {
	chunks []domain.Chunk
	err    error
}

// Run executes one ingestion cycle.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (p *IngestionPipeline) Run(ctx context.Context, opts driving.IngestOptions) (*domain.IngestionRun, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, domain.ErrIngestionInProgress
	}
	defer p.running.Store(false)

	if err := p.ready(); err != nil {
		return nil, err
	}

	logger.Section("Ingestion")
	logger.Info("Scanning %s", p.source.Name())

	// 1. Scan
	candidates, snapshot, failures, err := p.scan(ctx)
	if err != nil {
		return nil, err
	}

	run := &domain.IngestionRun{
		ID:                uuid.New().String(),
		Force:             opts.Force,
		Failures:          failures,
		UnitsFailed:       len(failures),
		HierarchySnapshot: snapshot,
	}

	// 2. Diff
	pending, err := p.diff(ctx, candidates, opts, run)
	if err != nil {
		return nil, err
	}
	logger.Info("%d candidates, %d pending, %d skipped", len(candidates), len(pending), run.UnitsSkipped)

	// 3. Process
	results, err := p.process(ctx, pending)
	if err != nil {
		return nil, err
	}

	var chunks []domain.Chunk
	for i, res := range results {
		unit := pending[i]
		if res.err != nil {
			logger.Warn("load %s: %v", unit.SourcePath, res.err)
			run.UnitsFailed++
			run.Failures = append(run.Failures, domain.LoadFailureRecord{
				SourcePath: unit.SourcePath,
				Error:      res.err.Error(),
			})
			report(opts, driving.IngestProgress{Unit: unit, Status: driving.IngestStatusFailed, Err: res.err})
			continue
		}
		run.UnitsProcessed++
		chunks = append(chunks, res.chunks...)
		report(opts, driving.IngestProgress{Unit: unit, Status: driving.IngestStatusProcessed, Chunks: len(res.chunks)})
	}

	// 4. Commit
	if len(chunks) > 0 {
		if err := p.commit(ctx, chunks); err != nil {
			return nil, err
		}
		if p.cfg.Catalog != nil {
			p.cfg.Catalog.Invalidate()
		}
	}
	run.TotalChunks = len(chunks)
	run.Timestamp = time.Now()

	logger.Record("ingestion",
		"run", run.ID,
		"processed", run.UnitsProcessed,
		"skipped", run.UnitsSkipped,
		"failed", run.UnitsFailed,
		"chunks", run.TotalChunks,
	)

	// 5. Log
	var errs []error
	for _, store := range p.cfg.RunLogs {
		if err := store.Save(ctx, *run); err != nil {
			errs = append(errs, fmt.Errorf("save run log: %w", err))
		}
	}
	return run, errors.Join(errs...)
}

// Runs returns past runs from the primary run log, newest first.
func (p *IngestionPipeline) Runs(ctx context.Context, limit int) ([]domain.IngestionRun, error) {
	if len(p.cfg.RunLogs) == 0 {
		return nil, nil
	}
	return p.cfg.RunLogs[0].List(ctx, limit)
}

func (p *IngestionPipeline) ready() error {
	switch {
	case p.source == nil:
		return domain.ErrSourceUnavailable
	case p.embedder == nil:
		return domain.ErrEmbeddingUnavailable
	case p.index == nil:
		return domain.ErrIndexUnavailable
	case p.registry == nil || p.chunker == nil:
		return fmt.Errorf("%w: normaliser registry and chunker are required", domain.ErrInvalidInput)
	}
	return nil
}

// scan walks collection, sub-collection and unit levels and returns one unit
// per supported document. Failures below the root are recorded, not returned.
func (p *IngestionPipeline) scan(ctx context.Context) ([]domain.Unit, domain.HierarchySnapshot, []domain.LoadFailureRecord, error) {
	collections, err := p.source.ListCollections(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("scan %s: %w", p.source.Name(), err)
	}

	var (
		units    []domain.Unit
		failures []domain.LoadFailureRecord
	)
	snapshot := make(domain.HierarchySnapshot)
	for _, collection := range collections {
		subcollections, err := p.source.ListSubcollections(ctx, collection)
		if err != nil {
			failures = append(failures, domain.LoadFailureRecord{SourcePath: collection, Error: err.Error()})
			continue
		}
		for _, subcollection := range subcollections {
			items, err := p.source.ListUnits(ctx, collection, subcollection)
			if err != nil {
				failures = append(failures, domain.LoadFailureRecord{
					SourcePath: collection + "/" + subcollection,
					Error:      err.Error(),
				})
				continue
			}
			for _, item := range items {
				if !p.registry.Supports(item.Extension()) {
					logger.Debug("skip unsupported %s", item.SourcePath)
					continue
				}
				unit := domain.Unit{
					Collection:    item.Collection,
					Subcollection: item.Subcollection,
					UnitID:        item.UnitID,
					Title:         item.Title(),
					SourcePath:    item.SourcePath,
					Tenant:        p.cfg.Tenant,
				}
				units = append(units, unit)
				snapshot[collection] = append(snapshot[collection], unit)
			}
		}
	}
	return units, snapshot, failures, nil
}

// diff drops candidates whose source path is already indexed, unless forced
// or listed in opts.Refresh.
func (p *IngestionPipeline) diff(
	ctx context.Context,
	candidates []domain.Unit,
	opts driving.IngestOptions,
	run *domain.IngestionRun,
) ([]domain.Unit, error) {
	if opts.Force {
		return candidates, nil
	}

	var filter domain.Filter
	if p.cfg.Tenant != "" {
		filter = domain.Eq{Field: domain.FieldTenant, Value: p.cfg.Tenant}
	}
	existing, err := p.index.SourcePaths(ctx, filter, p.cfg.DiffLimit)
	if err != nil {
		return nil, fmt.Errorf("read indexed source paths: %w", err)
	}

	refresh := make(map[string]struct{}, len(opts.Refresh))
	for _, path := range opts.Refresh {
		refresh[path] = struct{}{}
	}

	pending := make([]domain.Unit, 0, len(candidates))
	for _, unit := range candidates {
		_, indexed := existing[unit.SourcePath]
		_, stale := refresh[unit.SourcePath]
		if indexed && !stale {
			run.UnitsSkipped++
			report(opts, driving.IngestProgress{Unit: unit, Status: driving.IngestStatusSkipped})
			continue
		}
		pending = append(pending, unit)
	}
	return pending, nil
}

// process loads, normalises and chunks every pending unit on a bounded pool.
// results[i] belongs to pending[i].
func (p *IngestionPipeline) process(ctx context.Context, pending []domain.Unit) ([]candidateResult, error) {
	results := make([]candidateResult, len(pending))
	if len(pending) == 0 {
		return results, nil
	}

	pool, err := ants.NewPool(p.cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := range pending {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			chunks, err := p.load(ctx, pending[i])
			results[i] = candidateResult{chunks: chunks, err: err}
		})
		if err != nil {
			wg.Done()
			results[i] = candidateResult{err: fmt.Errorf("%w: submit: %w", domain.ErrLoadFailure, err)}
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// load reads one unit and returns its chunks without embeddings.
func (p *IngestionPipeline) load(ctx context.Context, unit domain.Unit) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := p.source.Read(ctx, unit.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %w", domain.ErrLoadFailure, err)
	}

	result, err := p.registry.Normalise(ctx, &domain.RawDocument{
		SourcePath: unit.SourcePath,
		Name:       path.Base(unit.SourcePath),
		Content:    content,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: normalise: %w", domain.ErrLoadFailure, err)
	}

	chunks := p.chunker.Split(unit, result.Pages)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no extractable text", domain.ErrLoadFailure)
	}
	return chunks, nil
}

// commit embeds every chunk in batches and writes them in one upsert.
func (p *IngestionPipeline) commit(ctx context.Context, chunks []domain.Chunk) error {
	logger.Info("Embedding %d chunks with %s", len(chunks), p.embedder.ModelName())

	for start := 0; start < len(chunks); start += p.cfg.EmbedBatchSize {
		end := min(start+p.cfg.EmbedBatchSize, len(chunks))
		texts := make([]string, end-start)
		for i := range texts {
			texts[i] = chunks[start+i].Text
		}

		vectors, err := p.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks: %w", err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("embed chunks: got %d vectors for %d texts", len(vectors), len(texts))
		}
		for i, vec := range vectors {
			chunks[start+i].Embedding = vec
		}
	}

	if err := p.index.Upsert(ctx, chunks); err != nil {
		return fmt.Errorf("commit chunks: %w", err)
	}
	return nil
}

func report(opts driving.IngestOptions, progress driving.IngestProgress) {
	if opts.Progress != nil {
		opts.Progress(progress)
	}
}
