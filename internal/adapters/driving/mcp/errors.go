// Package mcp provides an MCP (Model Context Protocol) server adapter for studyrag.
// It lets AI assistants browse the catalog, run scoped retrieval and ask the
// study agent questions.
package mcp

import "errors"

// Server errors.
var (
	// ErrMissingCatalog is returned when the catalog service is not provided.
	ErrMissingCatalog = errors.New("mcp: catalog service is required")

	// ErrMissingRetriever is returned when the retriever service is not provided.
	ErrMissingRetriever = errors.New("mcp: retriever service is required")

	// ErrMissingAgent is returned by the ask tool when no completion service is configured.
	ErrMissingAgent = errors.New("mcp: question answering is not configured")
)
