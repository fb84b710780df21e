package watch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/studyrag/internal/connectors/filesystem"
	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driving"
)

type mockSource struct {
	changes chan filesystem.Change
	err     error
}

func (m *mockSource) Watch(_ context.Context) (<-chan filesystem.Change, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.changes, nil
}

type mockIngestion struct {
	mu   sync.Mutex
	opts []driving.IngestOptions
	err  error
}

func (m *mockIngestion) Run(_ context.Context, opts driving.IngestOptions) (*domain.IngestionRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IngestionRun{ID: "run"}, nil
}

func (m *mockIngestion) Runs(_ context.Context, _ int) ([]domain.IngestionRun, error) {
	return nil, nil
}

func (m *mockIngestion) calls() []driving.IngestOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]driving.IngestOptions(nil), m.opts...)
}

type mockCatalog struct {
	mu          sync.Mutex
	invalidated int
}

func (m *mockCatalog) ListCollections(context.Context) []string { return nil }

func (m *mockCatalog) ListSubcollections(context.Context, string) []string { return nil }

func (m *mockCatalog) ListUnits(context.Context, string, string) []domain.UnitDescriptor {
	return nil
}

func (m *mockCatalog) DescribeScope(domain.Scope) string { return "" }

func (m *mockCatalog) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated++
}

// runWatcher starts w and returns a channel that receives each OnRun call.
func runWatcher(t *testing.T, source *mockSource, ingestion *mockIngestion, catalog *mockCatalog) (chan error, context.CancelFunc, chan error) {
	t.Helper()
	runs := make(chan error, 8)
	w := New(source, ingestion, catalog, Config{
		Debounce: 20 * time.Millisecond,
		OnRun:    func(_ *domain.IngestionRun, err error) { runs <- err },
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	return runs, cancel, done
}

func waitRun(t *testing.T, runs chan error) error {
	t.Helper()
	select {
	case err := <-runs:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ingestion run")
		return nil
	}
}

func TestWatcher_DebouncesChanges(t *testing.T) {
	source := &mockSource{changes: make(chan filesystem.Change, 8)}
	ingestion := &mockIngestion{}
	catalog := &mockCatalog{}
	runs, cancel, done := runWatcher(t, source, ingestion, catalog)

	source.changes <- filesystem.Change{Type: filesystem.ChangeCreated, SourcePath: "Y3S2/Finance/Report1/a.pdf"}
	source.changes <- filesystem.Change{Type: filesystem.ChangeCreated, SourcePath: "Y3S2/Finance/Report1/b.pdf"}

	require.NoError(t, waitRun(t, runs))
	calls := ingestion.calls()
	require.Len(t, calls, 1)
	assert.False(t, calls[0].Force)
	assert.Empty(t, calls[0].Refresh)

	source.changes <- filesystem.Change{Type: filesystem.ChangeUpdated, SourcePath: "Y3S2/Finance/Report1/a.pdf"}
	source.changes <- filesystem.Change{Type: filesystem.ChangeUpdated, SourcePath: "Y3S2/Law/Intro/notes.md"}
	source.changes <- filesystem.Change{Type: filesystem.ChangeUpdated, SourcePath: "Y3S2/Finance/Report1/a.pdf"}
	require.NoError(t, waitRun(t, runs))
	calls = ingestion.calls()
	require.Len(t, calls, 2)
	assert.False(t, calls[1].Force, "updates never re-embed the whole library")
	assert.Equal(t, []string{"Y3S2/Finance/Report1/a.pdf", "Y3S2/Law/Intro/notes.md"}, calls[1].Refresh)

	cancel()
	require.NoError(t, <-done)

	catalog.mu.Lock()
	defer catalog.mu.Unlock()
	assert.Equal(t, 2, catalog.invalidated)
}

func TestWatcher_RunErrors(t *testing.T) {
	source := &mockSource{changes: make(chan filesystem.Change, 8)}
	ingestion := &mockIngestion{err: domain.ErrIngestionInProgress}
	runs, cancel, done := runWatcher(t, source, ingestion, &mockCatalog{})
	defer cancel()

	source.changes <- filesystem.Change{Type: filesystem.ChangeDeleted, SourcePath: "Y3S2/Finance/Report1/a.pdf"}
	assert.ErrorIs(t, waitRun(t, runs), domain.ErrIngestionInProgress)

	close(source.changes)
	require.NoError(t, <-done)
}

func TestWatcher_SourceError(t *testing.T) {
	w := New(&mockSource{err: errors.New("no inotify")}, &mockIngestion{}, nil, Config{})
	err := w.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no inotify")
	assert.Equal(t, DefaultDebounce, w.cfg.Debounce)
}

func TestBatch(t *testing.T) {
	var b batch
	assert.True(t, b.empty())

	b.add(filesystem.Change{Type: filesystem.ChangeCreated})
	b.add(filesystem.Change{Type: filesystem.ChangeDeleted})
	b.add(filesystem.Change{Type: "renamed"})
	assert.Equal(t, batch{created: 1, deleted: 1}, b)
	assert.False(t, b.empty())
}
