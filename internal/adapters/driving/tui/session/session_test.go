package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/studyrag/internal/adapters/driving/shell"
	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/services"
)

type mockCatalog struct{}

func (mockCatalog) ListCollections(context.Context) []string { return []string{"Y3S2"} }

func (mockCatalog) ListSubcollections(context.Context, string) []string { return []string{"Finance"} }

func (mockCatalog) ListUnits(context.Context, string, string) []domain.UnitDescriptor {
	return []domain.UnitDescriptor{{UnitID: "Report1", Collection: "Y3S2", Subcollection: "Finance"}}
}

func (mockCatalog) DescribeScope(scope domain.Scope) string {
	return services.NewCatalog(nil).DescribeScope(scope)
}

func (mockCatalog) Invalidate() {}

func TestLocked_Execute(t *testing.T) {
	catalog := mockCatalog{}
	l := NewLocked(shell.New(catalog, services.NewScopeResolver(catalog), nil, "user-1"))

	assert.Equal(t, services.NoScopeDescription, l.DescribeScope())

	reply, err := l.Execute(context.Background(), "use y3s2")
	require.NoError(t, err)
	assert.Equal(t, "Active collection: Y3S2", reply.Text)
	assert.Equal(t, "Collection: Y3S2", l.DescribeScope())
}

func TestLocked_ConcurrentUse(t *testing.T) {
	catalog := mockCatalog{}
	l := NewLocked(shell.New(catalog, services.NewScopeResolver(catalog), nil, "user-1"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.Execute(context.Background(), "select Report1")
			_ = l.DescribeScope()
		}()
	}
	wg.Wait()

	assert.Equal(t, "Unit: Report1", l.DescribeScope())
}
