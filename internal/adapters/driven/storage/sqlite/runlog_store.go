package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

// timeLayout is fixed width so that started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// runLogStore implements driven.RunLogStore.
type runLogStore struct {
	store *Store
}

var _ driven.RunLogStore = (*runLogStore)(nil)

// Save records a run summary. Saving the same run ID again overwrites it.
func (s *runLogStore) Save(ctx context.Context, run domain.IngestionRun) error {
	failures, err := json.Marshal(run.Failures)
	if err != nil {
		return fmt.Errorf("marshalling failures: %w", err)
	}
	hierarchy, err := json.Marshal(run.HierarchySnapshot)
	if err != nil {
		return fmt.Errorf("marshalling hierarchy: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO ingestion_runs (id, started_at, forced, units_processed, units_skipped,
			units_failed, total_chunks, failures, hierarchy)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			started_at = excluded.started_at,
			forced = excluded.forced,
			units_processed = excluded.units_processed,
			units_skipped = excluded.units_skipped,
			units_failed = excluded.units_failed,
			total_chunks = excluded.total_chunks,
			failures = excluded.failures,
			hierarchy = excluded.hierarchy
	`, run.ID, run.Timestamp.UTC().Format(timeLayout), boolToInt(run.Force),
		run.UnitsProcessed, run.UnitsSkipped, run.UnitsFailed, run.TotalChunks,
		string(failures), string(hierarchy))
	if err != nil {
		return fmt.Errorf("saving ingestion run: %w", err)
	}
	return nil
}

// Latest returns the most recent run, or domain.ErrNotFound when none exist.
func (s *runLogStore) Latest(ctx context.Context) (*domain.IngestionRun, error) {
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
func (s *runLogStore) List(ctx context.Context, limit int) ([]domain.IngestionRun, error) {
	query := `
		SELECT id, started_at, forced, units_processed, units_skipped, units_failed,
			total_chunks, failures, hierarchy
		FROM ingestion_runs ORDER BY started_at DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying ingestion runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.IngestionRun //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ingestion runs: %w", err)
	}
	return runs, nil
}

func scanRun(rows *sql.Rows) (*domain.IngestionRun, error) {
	var (
		run                 domain.IngestionRun
		startedAt           string
		forced              int
		failures, hierarchy string
	)
	if err := rows.Scan(&run.ID, &startedAt, &forced, &run.UnitsProcessed, &run.UnitsSkipped,
		&run.UnitsFailed, &run.TotalChunks, &failures, &hierarchy); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning ingestion run: %w", err)
	}

	ts, err := time.Parse(timeLayout, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}
	run.Timestamp = ts
	run.Force = forced != 0

	if err := json.Unmarshal([]byte(failures), &run.Failures); err != nil {
		return nil, fmt.Errorf("unmarshalling failures: %w", err)
	}
	if err := json.Unmarshal([]byte(hierarchy), &run.HierarchySnapshot); err != nil {
		return nil, fmt.Errorf("unmarshalling hierarchy: %w", err)
	}
	return &run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
