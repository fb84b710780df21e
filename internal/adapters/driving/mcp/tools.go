package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// ListCollectionsInput is the input schema for the list_collections tool.
type ListCollectionsInput struct{}

// ListCollectionsOutput is the output schema for the list_collections tool.
type ListCollectionsOutput struct {
	Collections []string `json:"collections"`
}

// ListSubcollectionsInput is the input schema for the list_subcollections tool.
type ListSubcollectionsInput struct {
	Collection string `json:"collection,omitempty" jsonschema:"collection to list; empty lists every sub-collection"`
}

// ListSubcollectionsOutput is the output schema for the list_subcollections tool.
type ListSubcollectionsOutput struct {
	Subcollections []string `json:"subcollections"`
}

// ListUnitsInput is the input schema for the list_units tool.
type ListUnitsInput struct {
	Collection    string `json:"collection,omitempty" jsonschema:"collection filter"`
	Subcollection string `json:"subcollection,omitempty" jsonschema:"sub-collection filter"`
}

// ListUnitsOutput is the output schema for the list_units tool.
type ListUnitsOutput struct {
	Units []domain.UnitDescriptor `json:"units"`
	Count int                     `json:"count"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query         string   `json:"query" jsonschema:"what to search for"`
	Collection    string   `json:"collection,omitempty" jsonschema:"collection to restrict to"`
	Subcollection string   `json:"subcollection,omitempty" jsonschema:"sub-collection to restrict to"`
	Units         []string `json:"units,omitempty" jsonschema:"unit ids to restrict to"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Status string      `json:"status"`
	Text   string      `json:"text"`
	Hits   []HitOutput `json:"hits,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// HitOutput represents a single retrieved passage.
type HitOutput struct {
	Title         string  `json:"title"`
	UnitID        string  `json:"unit_id"`
	Collection    string  `json:"collection"`
	Subcollection string  `json:"subcollection"`
	SourcePath    string  `json:"source_path"`
	Page          int     `json:"page"`
	Score         float64 `json:"score"`
	Text          string  `json:"text"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question      string   `json:"question" jsonschema:"the question to answer from the study material"`
	Collection    string   `json:"collection,omitempty" jsonschema:"collection to restrict to"`
	Subcollection string   `json:"subcollection,omitempty" jsonschema:"sub-collection to restrict to"`
	Units         []string `json:"units,omitempty" jsonschema:"unit ids to restrict to"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer string `json:"answer"`
	Scope  string `json:"scope"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_collections",
		Description: "List the collections of ingested study material",
	}, s.handleListCollections)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_subcollections",
		Description: "List the sub-collections, optionally within one collection",
	}, s.handleListSubcollections)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_units",
		Description: "List units (documents grouped by unit id) with optional collection and sub-collection filters",
	}, s.handleListUnits)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Search the study material within an optional scope and return cited passages",
	}, s.handleRetrieve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the study material within an optional scope, citing sources",
	}, s.handleAsk)
}

func (s *Server) handleListCollections(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListCollectionsInput,
) (*mcp.CallToolResult, ListCollectionsOutput, error) {
	return nil, ListCollectionsOutput{Collections: nonNil(s.ports.Catalog.ListCollections(ctx))}, nil
}

func (s *Server) handleListSubcollections(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListSubcollectionsInput,
) (*mcp.CallToolResult, ListSubcollectionsOutput, error) {
	names := s.ports.Catalog.ListSubcollections(ctx, input.Collection)
	return nil, ListSubcollectionsOutput{Subcollections: nonNil(names)}, nil
}

func (s *Server) handleListUnits(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListUnitsInput,
) (*mcp.CallToolResult, ListUnitsOutput, error) {
	units := s.ports.Catalog.ListUnits(ctx, input.Collection, input.Subcollection)
	if units == nil {
		units = []domain.UnitDescriptor{}
	}
	return nil, ListUnitsOutput{Units: units, Count: len(units)}, nil
}

// handleRetrieve reports retrieval failures in the output rather than as a tool error.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	result := s.ports.Retriever.Retrieve(ctx, input.Query, s.scope(ctx, input.Collection, input.Subcollection, input.Units))

	output := RetrieveOutput{
		Status: string(result.Status),
		Text:   result.Text,
	}
	if result.Err != nil {
		output.Error = result.Err.Error()
	}
	for _, h := range result.Hits {
		output.Hits = append(output.Hits, HitOutput{
			Title:         h.Unit.Title,
			UnitID:        h.Unit.UnitID,
			Collection:    h.Unit.Collection,
			Subcollection: h.Unit.Subcollection,
			SourcePath:    h.Unit.SourcePath,
			Page:          h.Page,
			Score:         h.Score,
			Text:          h.Text,
		})
	}
	return nil, output, nil
}

// handleAsk answers in a fresh conversation; MCP clients keep their own history.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Agent == nil {
		return nil, AskOutput{}, ErrMissingAgent
	}

	conv := domain.NewConversation(s.ports.Tenant)
	conv.Scope = s.scope(ctx, input.Collection, input.Subcollection, input.Units)

	answer, err := s.ports.Agent.Ask(ctx, conv, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{Answer: answer, Scope: s.ports.Catalog.DescribeScope(conv.Scope)}, nil
}

// scope builds a scope from tool arguments, resolving names case-insensitively
// when a scope service is available.
func (s *Server) scope(ctx context.Context, collection, subcollection string, units []string) domain.Scope {
	scope := domain.Scope{Tenant: s.ports.Tenant}

	if s.ports.Scope != nil {
		if collection != "" {
			collection = s.ports.Scope.ResolveCollection(ctx, collection).Value
		}
		if subcollection != "" {
			subcollection = s.ports.Scope.ResolveSubcollection(ctx, collection, subcollection).Value
		}
	}
	scope = scope.WithCollection(collection).WithSubcollection(subcollection)

	for _, unit := range units {
		if unit == "" {
			continue
		}
		if s.ports.Scope != nil {
			unit = s.ports.Scope.ResolveUnit(ctx, collection, subcollection, unit).Value
		}
		scope = scope.WithUnit(unit)
	}
	return scope
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
