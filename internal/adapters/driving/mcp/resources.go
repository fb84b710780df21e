package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for studyrag resources.
	uriScheme = "studyrag://"

	// runsLimit bounds the run log resource.
	runsLimit = 20
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for the catalog tree.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "catalog",
		Name:        "catalog",
		Description: "Collections with their sub-collections",
		MIMEType:    "application/json",
	}, s.handleCatalogResource)

	// Static resource for the ingestion run log.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "runs",
		Name:        "runs",
		Description: "Recent ingestion runs, newest first",
		MIMEType:    "application/json",
	}, s.handleRunsResource)

	// Template for the units of a collection.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "collections/{collection}/units",
		Name:        "collection-units",
		Description: "Units ingested into a specific collection",
		MIMEType:    "application/json",
	}, s.handleUnitsResource)
}

// handleCatalogResource returns collection -> sub-collections.
func (s *Server) handleCatalogResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	tree := make(map[string][]string)
	for _, collection := range s.ports.Catalog.ListCollections(ctx) {
		tree[collection] = nonNil(s.ports.Catalog.ListSubcollections(ctx, collection))
	}
	return jsonResource(req.Params.URI, tree)
}

// handleRunsResource returns the latest ingestion runs.
func (s *Server) handleRunsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Ingestion == nil {
		return jsonResource(req.Params.URI, []domain.IngestionRun{})
	}

	runs, err := s.ports.Ingestion.Runs(ctx, runsLimit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	if runs == nil {
		runs = []domain.IngestionRun{}
	}
	return jsonResource(req.Params.URI, runs)
}

// handleUnitsResource returns the units of one collection.
func (s *Server) handleUnitsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	collection := extractCollection(req.Params.URI)
	if collection == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if s.ports.Scope != nil {
		res := s.ports.Scope.ResolveCollection(ctx, collection)
		if !res.Matched {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		collection = res.Value
	}

	units := s.ports.Catalog.ListUnits(ctx, collection, "")
	if units == nil {
		units = []domain.UnitDescriptor{}
	}
	return jsonResource(req.Params.URI, units)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractCollection extracts the collection from a URI like studyrag://collections/{collection}/units.
func extractCollection(uri string) string {
	const prefix = uriScheme + "collections/"
	const suffix = "/units"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	collection, err := url.PathUnescape(strings.TrimSuffix(uri, suffix))
	if err != nil || strings.Contains(collection, "/") {
		return ""
	}
	return collection
}
