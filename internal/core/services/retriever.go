package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
	"github.com/custodia-labs/studyrag/internal/core/ports/driving"
	"github.com/custodia-labs/studyrag/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.RetrieverService = (*Retriever)(nil)

const (
	// EmptyRetrievalText is the tool result when nothing in scope matches.
	EmptyRetrievalText = "No relevant information found in the current scope. " +
		"Try using 'clear' to search all materials or adjust your scope."

	// SectionSeparator separates formatted hits.
	SectionSeparator = "\n\n---\n\n"
)

// Retriever embeds a query and runs a filtered similarity search.
type Retriever struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	scope    driving.ScopeService
	topK     int
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithTopK sets the number of hits per query.
func WithTopK(k int) RetrieverOption {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// NewRetriever creates a retriever. embedder and index may be nil, in which case
// every retrieval reports a failure.
func NewRetriever(
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	scope driving.ScopeService,
	opts ...RetrieverOption,
) *Retriever {
	r := &Retriever{
		embedder: embedder,
		index:    index,
		scope:    scope,
		topK:     domain.DefaultTopK,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve returns the formatted top-K passages for query under scope.
// Embedding and index errors are reported with the failed status, never returned.
func (r *Retriever) Retrieve(ctx context.Context, query string, scope domain.Scope) domain.RetrievalResult {
	filter := r.scope.Filter(scope)

	hits, err := r.search(ctx, query, filter)
	if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrRetrievalFailure, err)
		logger.Record("retrieval", "query", query, "filter", domain.DescribeFilter(filter), "error", err)
		return domain.RetrievalResult{
			Status: domain.RetrievalFailed,
			Text:   "Error during retrieval: " + err.Error(),
			Err:    err,
		}
	}

	logger.Record("retrieval",
		"query", query,
		"filter", domain.DescribeFilter(filter),
		"count", len(hits),
		"units", strings.Join(hitTitles(hits), ","),
	)

	if len(hits) == 0 {
		return domain.RetrievalResult{Status: domain.RetrievalEmpty, Text: EmptyRetrievalText}
	}

	sections := make([]string, len(hits))
	for i, h := range hits {
		sections[i] = FormatHit(h)
	}
	return domain.RetrievalResult{
		Status: domain.RetrievalFound,
		Text:   strings.Join(sections, SectionSeparator),
		Hits:   hits,
	}
}

func (r *Retriever) search(ctx context.Context, query string, filter domain.Filter) ([]domain.RetrievalHit, error) {
	if r.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if r.index == nil {
		return nil, domain.ErrIndexUnavailable
	}
	if filter != nil {
		if err := filter.Validate(); err != nil {
			return nil, err
		}
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := r.index.Query(ctx, vec, r.topK, filter)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	return hits, nil
}

// FormatHit renders one hit as "[title | Page n | collection/subcollection]\ntext".
func FormatHit(h domain.RetrievalHit) string {
	page := "N/A"
	if h.Page > 0 {
		page = strconv.Itoa(h.Page)
	}
	return fmt.Sprintf("[%s | Page %s | %s]\n%s", h.Unit.Title, page, h.Unit.Path(), h.Text)
}

func hitTitles(hits []domain.RetrievalHit) []string {
	seen := make(map[string]bool)
	var titles []string
	for _, h := range hits {
		if !seen[h.Unit.Title] {
			seen[h.Unit.Title] = true
			titles = append(titles, h.Unit.Title)
		}
	}
	return titles
}
