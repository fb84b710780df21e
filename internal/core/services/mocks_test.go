package services

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService hashes words into a small vector space so that
// texts sharing words are similar.
type mockEmbeddingService struct {
	err        error
	batchCalls atomic.Int32
}

const mockDims = 64

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	return hashEmbed(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.batchCalls.Add(1)
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int              { return mockDims }
func (m *mockEmbeddingService) ModelName() string            { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return m.err }
func (m *mockEmbeddingService) Close() error                 { return nil }

func hashEmbed(text string) []float32 {
	vec := make([]float32, mockDims)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,?!%")
		if word == "" {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		vec[h.Sum32()%mockDims]++
	}
	return vec
}

// mockVectorIndex records calls and returns canned results.
type mockVectorIndex struct {
	mu        sync.Mutex
	units     []domain.Unit
	hits      []domain.RetrievalHit
	paths     map[string]struct{}
	scanErr   error
	queryErr  error
	upsertErr error
	scans     int
	upserts   [][]domain.Chunk
	lastK     int
	lastQuery domain.Filter
}

func (m *mockVectorIndex) Upsert(_ context.Context, chunks []domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts = append(m.upserts, chunks)
	return nil
}

func (m *mockVectorIndex) Query(_ context.Context, _ []float32, k int, filter domain.Filter) ([]domain.RetrievalHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastK = k
	m.lastQuery = filter
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.hits, nil
}

func (m *mockVectorIndex) Scan(_ context.Context, filter domain.Filter) ([]domain.Unit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans++
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	var out []domain.Unit
	for _, u := range m.units {
		if domain.MatchFilter(filter, u) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockVectorIndex) SourcePaths(_ context.Context, _ domain.Filter, _ int) (map[string]struct{}, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	return m.paths, nil
}

func (m *mockVectorIndex) Close() error { return nil }

// mockCatalog is a fixed catalog for resolver and tool tests.
type mockCatalog struct {
	collections    []string
	subcollections []string
	units          []domain.UnitDescriptor
	invalidated    atomic.Int32
}

func (m *mockCatalog) ListCollections(_ context.Context) []string { return m.collections }
func (m *mockCatalog) ListSubcollections(_ context.Context, _ string) []string {
	return m.subcollections
}
func (m *mockCatalog) ListUnits(_ context.Context, _, _ string) []domain.UnitDescriptor {
	return m.units
}
func (m *mockCatalog) DescribeScope(scope domain.Scope) string {
	return NewCatalog(nil).DescribeScope(scope)
}
func (m *mockCatalog) Invalidate() { m.invalidated.Add(1) }

// mockRetriever returns a fixed result and records the scope it was called with.
type mockRetriever struct {
	mu      sync.Mutex
	result  domain.RetrievalResult
	queries []string
	scopes  []domain.Scope
}

func (m *mockRetriever) Retrieve(_ context.Context, query string, scope domain.Scope) domain.RetrievalResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	m.scopes = append(m.scopes, scope)
	return m.result
}

// scriptedCompletion replays replies in order; the last reply repeats.
type scriptedCompletion struct {
	mu      sync.Mutex
	replies []domain.Message
	err     error
	calls   [][]domain.Message
	tools   []driven.ToolDefinition
	opts    []driven.CompletionOptions
}

func (m *scriptedCompletion) Complete(
	ctx context.Context,
	messages []domain.Message,
	tools []driven.ToolDefinition,
	opts driven.CompletionOptions,
) (domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([]domain.Message, len(messages))
	copy(copied, messages)
	m.calls = append(m.calls, copied)
	m.tools = tools
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return domain.Message{}, m.err
	}
	if err := ctx.Err(); err != nil {
		return domain.Message{}, err
	}
	i := len(m.calls) - 1
	if i >= len(m.replies) {
		i = len(m.replies) - 1
	}
	return m.replies[i], nil
}

func (m *scriptedCompletion) ModelName() string            { return "scripted" }
func (m *scriptedCompletion) Ping(_ context.Context) error { return nil }
func (m *scriptedCompletion) Close() error                 { return nil }

// blockingCompletion never answers; it returns once ctx is done.
type blockingCompletion struct{}

func (blockingCompletion) Complete(
	ctx context.Context,
	_ []domain.Message,
	_ []driven.ToolDefinition,
	_ driven.CompletionOptions,
) (domain.Message, error) {
	<-ctx.Done()
	return domain.Message{}, ctx.Err()
}

func (blockingCompletion) ModelName() string            { return "blocking" }
func (blockingCompletion) Ping(_ context.Context) error { return nil }
func (blockingCompletion) Close() error                 { return nil }

// blockingEmbedder hangs until ctx is done, like an unresponsive provider.
type blockingEmbedder struct{}

func (blockingEmbedder) Embed(ctx context.Context, _ string) ([]float32, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (b blockingEmbedder) EmbedBatch(ctx context.Context, _ []string) ([][]float32, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingEmbedder) Dimensions() int              { return mockDims }
func (blockingEmbedder) ModelName() string            { return "blocking" }
func (blockingEmbedder) Ping(_ context.Context) error { return nil }
func (blockingEmbedder) Close() error                 { return nil }

// mockSource is an in-memory content tree: collection/subcollection/unit/file.
type mockSource struct {
	files   map[string]string
	readErr map[string]error
	missing bool
}

func (m *mockSource) Name() string { return "mock" }

func (m *mockSource) ListCollections(_ context.Context) ([]string, error) {
	if m.missing {
		return nil, domain.ErrNotFound
	}
	return m.level(0, ""), nil
}

func (m *mockSource) ListSubcollections(_ context.Context, collection string) ([]string, error) {
	return m.level(1, collection+"/"), nil
}

func (m *mockSource) ListUnits(_ context.Context, collection, subcollection string) ([]domain.SourceItem, error) {
	prefix := collection + "/" + subcollection + "/"
	var items []domain.SourceItem
	for path, content := range m.files {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		parts := strings.Split(path, "/")
		items = append(items, domain.SourceItem{
			Collection:    parts[0],
			Subcollection: parts[1],
			UnitID:        parts[2],
			Name:          parts[3],
			SourcePath:    path,
			Size:          int64(len(content)),
		})
	}
	return items, nil
}

func (m *mockSource) Read(_ context.Context, sourcePath string) ([]byte, error) {
	if err := m.readErr[sourcePath]; err != nil {
		return nil, err
	}
	content, ok := m.files[sourcePath]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return []byte(content), nil
}

func (m *mockSource) Stat(_ context.Context, sourcePath string) (domain.SourceInfo, error) {
	content, ok := m.files[sourcePath]
	return domain.SourceInfo{Exists: ok, Size: int64(len(content))}, nil
}

func (m *mockSource) level(depth int, prefix string) []string {
	seen := map[string]bool{}
	var out []string
	for path := range m.files {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		name := strings.Split(path, "/")[depth]
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// textRegistry normalises .txt and .md files into a single page.
type textRegistry struct{}

func (textRegistry) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if strings.Contains(string(raw.Content), "\x00") {
		return nil, errors.New("binary content")
	}
	return &driven.NormaliseResult{Pages: []domain.Page{{Number: 1, Text: string(raw.Content)}}}, nil
}
func (textRegistry) Register(driven.Normaliser) {}
func (textRegistry) Supports(ext string) bool     { return ext == ".txt" || ext == ".md" }
func (textRegistry) SupportedExtensions() []string { return []string{".md", ".txt"} }

// wordChunker emits one chunk per page, stamped with the unit.
type wordChunker struct{}

func (wordChunker) Split(unit domain.Unit, pages []domain.Page) []domain.Chunk {
	var chunks []domain.Chunk
	for _, p := range pages {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			ID:       unit.SourcePath + "#" + string(rune('0'+len(chunks))),
			Unit:     unit,
			Page:     p.Number,
			Position: len(chunks),
			Text:     p.Text,
		})
	}
	return chunks
}

// mockPromptStore serves prompts from a map.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}
func (m *mockPromptStore) Reload() {}

// mockAIValidator records validation calls.
type mockAIValidator struct {
	embeddingErr  error
	completionErr error
}

func (m *mockAIValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error {
	return m.embeddingErr
}

func (m *mockAIValidator) ValidateCompletion(_ *domain.CompletionSettings) error {
	return m.completionErr
}
