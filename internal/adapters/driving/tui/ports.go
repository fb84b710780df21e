// Package tui provides an interactive terminal user interface for studyrag.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/studyrag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
type Ports struct {
	// Catalog lists the ingested hierarchy.
	Catalog driving.CatalogService

	// Scope resolves typed names.
	Scope driving.ScopeService

	// Agent answers questions. Without it the TUI only navigates.
	Agent driving.AgentService

	// Tenant is the user id every conversation is bound to.
	Tenant string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Catalog == nil {
		return ErrMissingCatalog
	}
	if p.Scope == nil {
		return ErrMissingScope
	}
	return nil
}
