// Package file provides a JSON file run log for ingestion summaries.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

// Ensure RunLogStore implements the interface.
var _ driven.RunLogStore = (*RunLogStore)(nil)

// DefaultRunLogName is the file name used under the cache directory.
const DefaultRunLogName = "ingestion_log.json"

// RunLogStore keeps every run in one JSON array, oldest first on disk.
// Writes go to a temporary file that is renamed over the log.
type RunLogStore struct {
	mu   sync.Mutex
	path string
}

// NewRunLogStore creates a run log at path. The file is created on first save.
func NewRunLogStore(path string) *RunLogStore {
	return &RunLogStore{path: path}
}

// Path returns the log file path.
func (s *RunLogStore) Path() string {
	return s.path
}

// Save appends run to the log, replacing an earlier entry with the same ID.
func (s *RunLogStore) Save(_ context.Context, run domain.IngestionRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs, err := s.read()
	if err != nil {
		return err
	}

	replaced := false
	for i := range runs {
		if runs[i].ID == run.ID {
			runs[i] = run
			replaced = true
		}
	}
	if !replaced {
		runs = append(runs, run)
	}

	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling run log: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating run log directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing run log: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing run log: %w", err)
	}
	return nil
}

// Latest returns the most recent run, or domain.ErrNotFound when the log is empty.
func (s *RunLogStore) Latest(ctx context.Context) (*domain.IngestionRun, error) {
	runs, err := s.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, domain.ErrNotFound
	}
	return &runs[0], nil
}

// List returns up to limit runs, newest first. Zero means no limit.
func (s *RunLogStore) List(_ context.Context, limit int) ([]domain.IngestionRun, error) {
	s.mu.Lock()
	runs, err := s.read()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *RunLogStore) read() ([]domain.IngestionRun, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading run log: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var runs []domain.IngestionRun
	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, fmt.Errorf("parsing run log %s: %w", s.path, err)
	}
	return runs, nil
}
