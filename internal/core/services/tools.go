package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
	"github.com/custodia-labs/studyrag/internal/core/ports/driving"
)

// Tool names offered to the completion service.
const (
	ToolRetriever      = "retriever"
	ToolLibraryCatalog = "library_catalog"
)

// UnknownToolText is the result of a call to a tool that does not exist.
const UnknownToolText = "Incorrect tool name. Please retry and select the tool from the list of available tools."

// agentTool is one tool variant. The set is closed: retrieverTool,
// catalogTool and unknownTool. Scope is passed in at every call.
type agentTool interface {
	definition() driven.ToolDefinition
	invoke(ctx context.Context, arguments string, scope domain.Scope) string
}

// toolset is the static name to tool map built when the agent is constructed.
type toolset struct {
	byName map[string]agentTool
	defs   []driven.ToolDefinition
}

func newToolset(tools ...agentTool) toolset {
	ts := toolset{byName: make(map[string]agentTool, len(tools))}
	for _, t := range tools {
		def := t.definition()
		ts.byName[def.Name] = t
		ts.defs = append(ts.defs, def)
	}
	return ts
}

// lookup never fails: unknown names resolve to the unknownTool variant.
func (ts toolset) lookup(name string) agentTool {
	if t, ok := ts.byName[name]; ok {
		return t
	}
	return unknownTool{name: name}
}

// retrieverTool searches the index within the caller's scope.
type retrieverTool struct {
	retriever driving.RetrieverService
}

func (retrieverTool) definition() driven.ToolDefinition {
	return driven.ToolDefinition{
		Name: ToolRetriever,
		Description: "Search the document library for passages relevant to a query. " +
			"Results are restricted to the current scope and cite title, page and collection.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query.",
				},
			},
			"required": []string{"query"},
		},
	}
}

func (t retrieverTool) invoke(ctx context.Context, arguments string, scope domain.Scope) string {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return fmt.Sprintf("Invalid arguments for %s: %v", ToolRetriever, err)
	}
	if strings.TrimSpace(args.Query) == "" {
		return fmt.Sprintf("Invalid arguments for %s: query is required", ToolRetriever)
	}
	return t.retriever.Retrieve(ctx, args.Query, scope).Text
}

// catalogTool lists what is available inside the caller's scope.
type catalogTool struct {
	catalog driving.CatalogService
}

func (catalogTool) definition() driven.ToolDefinition {
	return driven.ToolDefinition{
		Name:        ToolLibraryCatalog,
		Description: "List the collections, sub-collections and units available in the current scope.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}
}

func (t catalogTool) invoke(ctx context.Context, _ string, scope domain.Scope) string {
	if err := ctx.Err(); err != nil {
		return fmt.Sprintf("Error listing catalog: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Current scope: %s\n", t.catalog.DescribeScope(scope))

	collections := []string{scope.Collection}
	if scope.Collection == "" {
		collections = t.catalog.ListCollections(ctx)
	}
	fmt.Fprintf(&b, "Collections: %s\n", joinOrNone(collections))

	subcollections := []string{scope.Subcollection}
	if scope.Subcollection == "" {
		subcollections = t.catalog.ListSubcollections(ctx, scope.Collection)
	}
	fmt.Fprintf(&b, "Sub-collections: %s\n", joinOrNone(subcollections))

	selected := make(map[string]bool, len(scope.Units))
	for _, u := range scope.Units {
		selected[u] = true
	}
	b.WriteString("Units:")
	n := 0
	for _, u := range t.catalog.ListUnits(ctx, scope.Collection, scope.Subcollection) {
		if len(selected) > 0 && !selected[u.UnitID] {
			continue
		}
		fmt.Fprintf(&b, "\n- %s: %s (%s/%s)", u.UnitID, u.Title, u.Collection, u.Subcollection)
		n++
	}
	if n == 0 {
		b.WriteString(" none")
	}
	return b.String()
}

// unknownTool answers calls to names outside the tool set.
type unknownTool struct {
	name string
}

func (t unknownTool) definition() driven.ToolDefinition {
	return driven.ToolDefinition{Name: t.name}
}

func (unknownTool) invoke(context.Context, string, domain.Scope) string {
	return UnknownToolText
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}
