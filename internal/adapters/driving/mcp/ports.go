package mcp

import (
	"github.com/custodia-labs/studyrag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Catalog lists collections, sub-collections and units.
	Catalog driving.CatalogService

	// Scope resolves tool arguments to stored names. Optional: names are used as given without it.
	Scope driving.ScopeService

	// Retriever runs scoped similarity search.
	Retriever driving.RetrieverService

	// Agent answers questions. Optional.
	Agent driving.AgentService

	// Ingestion exposes the run log. Optional.
	Ingestion driving.IngestionService

	// Tenant is applied to every scope built by the server.
	Tenant string
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Catalog == nil {
		return ErrMissingCatalog
	}
	if p.Retriever == nil {
		return ErrMissingRetriever
	}
	return nil
}
