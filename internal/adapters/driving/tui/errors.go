package tui

import "errors"

// ErrMissingCatalog is returned when the catalog service is not provided.
var ErrMissingCatalog = errors.New("tui: catalog service is required")

// ErrMissingScope is returned when the scope service is not provided.
var ErrMissingScope = errors.New("tui: scope service is required")
