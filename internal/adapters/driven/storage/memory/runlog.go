package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

// Ensure RunLogStore implements the interface.
var _ driven.RunLogStore = (*RunLogStore)(nil)

// RunLogStore is an in-memory implementation of driven.RunLogStore.
type RunLogStore struct {
	mu   sync.RWMutex
	runs []domain.IngestionRun
}

// NewRunLogStore creates a new in-memory run log.
func NewRunLogStore() *RunLogStore {
	return &RunLogStore{}
}

// Save appends a run.
func (s *RunLogStore) Save(_ context.Context, run domain.IngestionRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	return nil
}

// Latest returns the most recently saved run.
func (s *RunLogStore) Latest(_ context.Context) (*domain.IngestionRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.runs) == 0 {
		return nil, domain.ErrNotFound
	}
	run := s.runs[len(s.runs)-1]
	return &run, nil
}

// List returns runs newest first.
func (s *RunLogStore) List(_ context.Context, limit int) ([]domain.IngestionRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.runs)
	if limit > 0 && limit < n {
		n = limit
	}
	result := make([]domain.IngestionRun, 0, n)
	for i := len(s.runs) - 1; i >= 0 && len(result) < n; i-- {
		result = append(result, s.runs[i])
	}
	return result, nil
}
