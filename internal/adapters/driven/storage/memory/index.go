package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/studyrag/internal/adapters/driven/storage/similarity"
	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory implementation of driven.VectorIndex.
// Queries scan every chunk matching the filter and rank by cosine similarity.
type VectorIndex struct {
	mu     sync.RWMutex
	chunks map[string][]domain.Chunk // keyed by source path
}

// NewVectorIndex creates a new in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		chunks: make(map[string][]domain.Chunk),
	}
}

// Upsert replaces the chunks of every source path in the batch under one lock.
func (s *VectorIndex) Upsert(_ context.Context, chunks []domain.Chunk) error {
	bySource := make(map[string][]domain.Chunk)
	for _, c := range chunks {
		bySource[c.Unit.SourcePath] = append(bySource[c.Unit.SourcePath], c)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for path, batch := range bySource {
		s.chunks[path] = batch
	}
	return nil
}

// Query returns the k nearest chunks matching filter.
func (s *VectorIndex) Query(_ context.Context, vector []float32, k int, filter domain.Filter) ([]domain.RetrievalHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ranker := similarity.NewRanker(k)
	for _, batch := range s.chunks {
		if len(batch) == 0 || !domain.MatchFilter(filter, batch[0].Unit) {
			continue
		}
		for _, c := range batch {
			ranker.Offer(domain.RetrievalHit{
				Unit:  c.Unit,
				Page:  c.Page,
				Text:  c.Text,
				Score: similarity.Cosine(vector, c.Embedding),
			})
		}
	}
	return ranker.Hits(), nil
}

// Scan returns one unit per indexed source path matching filter, ordered by source path.
func (s *VectorIndex) Scan(_ context.Context, filter domain.Filter) ([]domain.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	units := make([]domain.Unit, 0, len(s.chunks))
	for _, batch := range s.chunks {
		if len(batch) == 0 || !domain.MatchFilter(filter, batch[0].Unit) {
			continue
		}
		units = append(units, batch[0].Unit)
	}
	sort.Slice(units, func(i, j int) bool {
		return units[i].SourcePath < units[j].SourcePath
	})
	return units, nil
}

// SourcePaths returns indexed source paths matching filter, at most limit when positive.
func (s *VectorIndex) SourcePaths(ctx context.Context, filter domain.Filter, limit int) (map[string]struct{}, error) {
	units, err := s.Scan(ctx, filter)
	if err != nil {
		return nil, err
	}
	paths := make(map[string]struct{}, len(units))
	for _, u := range units {
		if limit > 0 && len(paths) >= limit {
			break
		}
		paths[u.SourcePath] = struct{}{}
	}
	return paths, nil
}

// ChunkCount returns the number of stored chunks.
func (s *VectorIndex) ChunkCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, batch := range s.chunks {
		n += len(batch)
	}
	return n
}

// Close is a no-op.
func (s *VectorIndex) Close() error {
	return nil
}
