package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

func TestServer_catalogTools(t *testing.T) {
	ctx := context.Background()
	ports, _ := newTestPorts()
	server, err := NewServer(ports)
	require.NoError(t, err)

	t.Run("list collections", func(t *testing.T) {
		_, out, err := server.handleListCollections(ctx, nil, ListCollectionsInput{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Y3S2", "Y1S1"}, out.Collections)
	})

	t.Run("list subcollections", func(t *testing.T) {
		_, out, err := server.handleListSubcollections(ctx, nil, ListSubcollectionsInput{Collection: "y3s2"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Finance", "Law"}, out.Subcollections)
	})

	t.Run("list units", func(t *testing.T) {
		_, out, err := server.handleListUnits(ctx, nil, ListUnitsInput{Collection: "Y3S2", Subcollection: "Finance"})
		require.NoError(t, err)
		assert.Equal(t, 1, out.Count)
		assert.Equal(t, "Report1", out.Units[0].UnitID)
	})

	t.Run("empty results are empty lists", func(t *testing.T) {
		_, out, err := server.handleListUnits(ctx, nil, ListUnitsInput{Collection: "none"})
		require.NoError(t, err)
		assert.NotNil(t, out.Units)
		assert.Equal(t, 0, out.Count)

		_, subs, err := server.handleListSubcollections(ctx, nil, ListSubcollectionsInput{Collection: "none"})
		require.NoError(t, err)
		assert.NotNil(t, subs.Subcollections)
	})
}

func TestServer_handleRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves scope and maps hits", func(t *testing.T) {
		ports, retriever := newTestPorts()
		retriever.result = domain.RetrievalResult{
			Status: domain.RetrievalFound,
			Text:   "[Source: Report1, Page: 3]\nliquidity",
			Hits: []domain.RetrievalHit{{
				Unit:  domain.Unit{UnitID: "Report1", Title: "Report1", Collection: "Y3S2", Subcollection: "Finance", SourcePath: "Y3S2/Finance/Report1/Report1.pdf"},
				Page:  3,
				Text:  "liquidity",
				Score: 0.9,
			}},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, out, err := server.handleRetrieve(ctx, nil, RetrieveInput{
			Query:         "liquidity",
			Collection:    "y3s2",
			Subcollection: "finance",
			Units:         []string{"report1", ""},
		})
		require.NoError(t, err)

		assert.Equal(t, "liquidity", retriever.query)
		assert.Equal(t, domain.Scope{
			Collection:    "Y3S2",
			Subcollection: "Finance",
			Units:         []string{"Report1"},
			Tenant:        "user-1",
		}, retriever.scope)

		assert.Equal(t, "found", out.Status)
		require.Len(t, out.Hits, 1)
		assert.Equal(t, 3, out.Hits[0].Page)
		assert.Equal(t, "Y3S2/Finance/Report1/Report1.pdf", out.Hits[0].SourcePath)
		assert.Empty(t, out.Error)
	})

	t.Run("reports failures in the output", func(t *testing.T) {
		ports, retriever := newTestPorts()
		retriever.result = domain.RetrievalResult{
			Status: domain.RetrievalFailed,
			Text:   "Error searching materials",
			Err:    domain.ErrRetrievalFailure,
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, out, err := server.handleRetrieve(ctx, nil, RetrieveInput{Query: "x"})
		require.NoError(t, err)
		assert.Equal(t, "failed", out.Status)
		assert.Equal(t, domain.ErrRetrievalFailure.Error(), out.Error)
	})

	t.Run("names pass through without a scope service", func(t *testing.T) {
		ports, retriever := newTestPorts()
		ports.Scope = nil
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleRetrieve(ctx, nil, RetrieveInput{Query: "x", Collection: "y3s2"})
		require.NoError(t, err)
		assert.Equal(t, "y3s2", retriever.scope.Collection)
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("without agent", func(t *testing.T) {
		ports, _ := newTestPorts()
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "q"})
		assert.ErrorIs(t, err, ErrMissingAgent)
	})

	t.Run("answers in a fresh scoped conversation", func(t *testing.T) {
		ports, _ := newTestPorts()
		agent := &mockAgentService{answer: "Ratios compare quantities [Source: Report1, Page: 2]"}
		ports.Agent = agent
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, out, err := server.handleAsk(ctx, nil, AskInput{Question: "What are ratios?", Collection: "Y3S2"})
		require.NoError(t, err)
		assert.Equal(t, agent.answer, out.Answer)
		assert.Equal(t, "Collection: Y3S2", out.Scope)
		require.NotNil(t, agent.conv)
		assert.Empty(t, agent.conv.Messages)
		assert.Equal(t, "user-1", agent.conv.Scope.Tenant)
	})

	t.Run("agent error", func(t *testing.T) {
		ports, _ := newTestPorts()
		ports.Agent = &mockAgentService{err: errors.New("budget")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "q"})
		assert.EqualError(t, err, "budget")
	})
}
