package mcp

import (
	"context"
	"strings"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driving"
)

// mockCatalogService is a mock implementation of driving.CatalogService.
type mockCatalogService struct {
	units []domain.UnitDescriptor
}

func (m *mockCatalogService) ListCollections(_ context.Context) []string {
	var out []string
	seen := map[string]bool{}
	for _, u := range m.units {
		if !seen[u.Collection] {
			seen[u.Collection] = true
			out = append(out, u.Collection)
		}
	}
	return out
}

func (m *mockCatalogService) ListSubcollections(_ context.Context, collection string) []string {
	var out []string
	seen := map[string]bool{}
	for _, u := range m.units {
		if collection != "" && !strings.EqualFold(u.Collection, collection) {
			continue
		}
		if !seen[u.Subcollection] {
			seen[u.Subcollection] = true
			out = append(out, u.Subcollection)
		}
	}
	return out
}

func (m *mockCatalogService) ListUnits(_ context.Context, collection, subcollection string) []domain.UnitDescriptor {
	var out []domain.UnitDescriptor
	for _, u := range m.units {
		if collection != "" && !strings.EqualFold(u.Collection, collection) {
			continue
		}
		if subcollection != "" && !strings.EqualFold(u.Subcollection, subcollection) {
			continue
		}
		out = append(out, u)
	}
	return out
}

func (m *mockCatalogService) DescribeScope(scope domain.Scope) string {
	if scope.Collection == "" {
		return "All materials"
	}
	return "Collection: " + scope.Collection
}

func (m *mockCatalogService) Invalidate() {}

// mockScopeService resolves against the mock catalog case-insensitively.
type mockScopeService struct {
	catalog *mockCatalogService
}

func (m *mockScopeService) ResolveCollection(ctx context.Context, candidate string) driving.Resolution {
	return match(m.catalog.ListCollections(ctx), candidate)
}

func (m *mockScopeService) ResolveSubcollection(ctx context.Context, collection, candidate string) driving.Resolution {
	return match(m.catalog.ListSubcollections(ctx, collection), candidate)
}

func (m *mockScopeService) ResolveUnit(ctx context.Context, collection, subcollection, candidate string) driving.Resolution {
	var ids []string
	for _, u := range m.catalog.ListUnits(ctx, collection, subcollection) {
		ids = append(ids, u.UnitID)
	}
	return match(ids, candidate)
}

func (m *mockScopeService) Filter(domain.Scope) domain.Filter {
	return nil
}

func match(available []string, candidate string) driving.Resolution {
	for _, name := range available {
		if strings.EqualFold(name, candidate) {
			return driving.Resolution{Value: name, Matched: true}
		}
	}
	return driving.Resolution{Value: candidate}
}

// mockRetrieverService records the last call.
type mockRetrieverService struct {
	result domain.RetrievalResult
	query  string
	scope  domain.Scope
}

func (m *mockRetrieverService) Retrieve(_ context.Context, query string, scope domain.Scope) domain.RetrievalResult {
	m.query = query
	m.scope = scope
	return m.result
}

// mockAgentService records the conversation it was given.
type mockAgentService struct {
	answer string
	err    error
	conv   *domain.Conversation
}

func (m *mockAgentService) Ask(_ context.Context, conv *domain.Conversation, _ string) (string, error) {
	m.conv = conv
	return m.answer, m.err
}

// mockIngestionService is a mock implementation of driving.IngestionService.
type mockIngestionService struct {
	runs  []domain.IngestionRun
	limit int
	err   error
}

func (m *mockIngestionService) Run(_ context.Context, _ driving.IngestOptions) (*domain.IngestionRun, error) {
	return nil, m.err
}

func (m *mockIngestionService) Runs(_ context.Context, limit int) ([]domain.IngestionRun, error) {
	m.limit = limit
	return m.runs, m.err
}

func testUnits() []domain.UnitDescriptor {
	return []domain.UnitDescriptor{
		{UnitID: "Report1", Title: "Report1", Collection: "Y3S2", Subcollection: "Finance"},
		{UnitID: "Intro", Title: "Intro", Collection: "Y3S2", Subcollection: "Law"},
		{UnitID: "Basics", Title: "Basics", Collection: "Y1S1", Subcollection: "Maths"},
	}
}

func newTestPorts() (*Ports, *mockRetrieverService) {
	catalog := &mockCatalogService{units: testUnits()}
	retriever := &mockRetrieverService{}
	return &Ports{
		Catalog:   catalog,
		Scope:     &mockScopeService{catalog: catalog},
		Retriever: retriever,
		Tenant:    "user-1",
	}, retriever
}
