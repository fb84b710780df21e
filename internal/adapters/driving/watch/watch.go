// Package watch re-runs ingestion when documents under a local content root change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/studyrag/internal/connectors/filesystem"
	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driving"
	"github.com/custodia-labs/studyrag/internal/logger"
)

// DefaultDebounce is the quiet period after the last change before a run starts.
const DefaultDebounce = 2 * time.Second

// Source emits document changes until its context is cancelled.
type Source interface {
	Watch(ctx context.Context) (<-chan filesystem.Change, error)
}

// Config configures a Watcher.
type Config struct {
	// Debounce is the quiet period before a run (default: 2s).
	Debounce time.Duration

	// Progress receives per-unit progress of triggered runs.
	Progress func(driving.IngestProgress)

	// OnRun is called after every triggered run.
	OnRun func(run *domain.IngestionRun, err error)
}

// Watcher batches changes and triggers ingestion runs.
type Watcher struct {
	source    Source
	ingestion driving.IngestionService
	catalog   driving.CatalogService
	cfg       Config
}

// New creates a watcher. catalog may be nil.
func New(source Source, ingestion driving.IngestionService, catalog driving.CatalogService, cfg Config) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	return &Watcher{
		source:    source,
		ingestion: ingestion,
		catalog:   catalog,
		cfg:       cfg,
	}
}

// batch accumulates the changes seen during one debounce window.
type batch struct {
	created, deleted int
	updated          []string
	seen             map[string]struct{}
}

func (b *batch) add(c filesystem.Change) {
	switch c.Type {
	case filesystem.ChangeCreated:
		b.created++
	case filesystem.ChangeUpdated:
		if b.seen == nil {
			b.seen = make(map[string]struct{})
		}
		if _, dup := b.seen[c.SourcePath]; !dup {
			b.seen[c.SourcePath] = struct{}{}
			b.updated = append(b.updated, c.SourcePath)
		}
	case filesystem.ChangeDeleted:
		b.deleted++
	}
}

func (b batch) empty() bool {
	return b.created+len(b.updated)+b.deleted == 0
}

// Run blocks until ctx is cancelled or the source stops.
func (w *Watcher) Run(ctx context.Context) error {
	changes, err := w.source.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	timer := time.NewTimer(w.cfg.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	var pending batch
	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Debug("watch: %s %s", change.Type, change.SourcePath)
			pending.add(change)
			timer.Reset(w.cfg.Debounce)
		case <-timer.C:
			if pending.empty() {
				continue
			}
			w.trigger(ctx, pending)
			pending = batch{}
		}
	}
}

// trigger runs an incremental ingest for one batch. Updated documents keep
// their source path, so the diff would skip them: they are refreshed by path.
func (w *Watcher) trigger(ctx context.Context, b batch) {
	logger.Info("watch: %d created, %d updated, %d deleted", b.created, len(b.updated), b.deleted)

	run, err := w.ingestion.Run(ctx, driving.IngestOptions{
		Refresh:  b.updated,
		Progress: w.cfg.Progress,
	})
	switch {
	case errors.Is(err, domain.ErrIngestionInProgress):
		logger.Warn("watch: ingestion already running, changes picked up next time")
	case err != nil && run == nil:
		logger.Warn("watch: ingestion failed: %v", err)
	}

	if b.deleted > 0 {
		logger.Warn("watch: %d deleted documents stay indexed until the index is rebuilt", b.deleted)
	}

	// A run that commits nothing leaves the catalog cached.
	if w.catalog != nil {
		w.catalog.Invalidate()
	}

	if w.cfg.OnRun != nil {
		w.cfg.OnRun(run, err)
	}
}
