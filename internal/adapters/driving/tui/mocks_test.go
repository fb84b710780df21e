package tui

import (
	"context"
	"strings"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/services"
)

type mockCatalog struct {
	units []domain.UnitDescriptor
}

func (m *mockCatalog) ListCollections(context.Context) []string {
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

func (m *mockCatalog) ListSubcollections(_ context.Context, collection string) []string {
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

func (m *mockCatalog) ListUnits(_ context.Context, collection, subcollection string) []domain.UnitDescriptor {
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

func (m *mockCatalog) DescribeScope(scope domain.Scope) string {
	return services.NewCatalog(nil).DescribeScope(scope)
}

func (m *mockCatalog) Invalidate() {}

type mockAgent struct {
	answer string
	err    error
	scopes []domain.Scope
}

func (m *mockAgent) Ask(_ context.Context, conv *domain.Conversation, _ string) (string, error) {
	m.scopes = append(m.scopes, conv.Scope)
	return m.answer, m.err
}

func newTestPorts() *Ports {
	catalog := &mockCatalog{units: []domain.UnitDescriptor{
		{UnitID: "Report1", Collection: "Y3S2", Subcollection: "Finance"},
		{UnitID: "Intro", Collection: "Y3S2", Subcollection: "Law"},
	}}
	return &Ports{
		Catalog: catalog,
		Scope:   services.NewScopeResolver(catalog),
		Agent:   &mockAgent{answer: "Ratios compare figures."},
		Tenant:  "user-1",
	}
}
