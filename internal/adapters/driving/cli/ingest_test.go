package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driving"
)

func testRun() *domain.IngestionRun {
	return &domain.IngestionRun{
		ID:             "run-1",
		Timestamp:      time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		UnitsProcessed: 1,
		UnitsSkipped:   1,
		UnitsFailed:    1,
		TotalChunks:    12,
		Failures:       []domain.LoadFailureRecord{{SourcePath: "Y3S2/Law/Broken/broken.pdf", Error: "corrupt xref"}},
		HierarchySnapshot: domain.HierarchySnapshot{
			"Y3S2": {{UnitID: "Report1"}, {UnitID: "Intro"}},
		},
	}
}

func TestIngestCmd_NotConfigured(t *testing.T) {
	_, _, err := runCommand(t, "", "ingest")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestIngestCmd_Progress(t *testing.T) {
	svc, _, ingestion := testServices()
	ingestion.run = testRun()
	ingestion.progress = []driving.IngestProgress{
		{Unit: domain.Unit{SourcePath: "Y3S2/Finance/Report1/report.pdf"}, Status: driving.IngestStatusProcessed, Chunks: 12},
		{Unit: domain.Unit{SourcePath: "Y3S2/Law/Intro/intro.md"}, Status: driving.IngestStatusSkipped},
		{Unit: domain.Unit{SourcePath: "Y3S2/Law/Broken/broken.pdf"}, Status: driving.IngestStatusFailed, Err: errors.New("corrupt xref")},
	}
	installServices(t, svc)

	out, _, err := runCommand(t, "", "ingest")
	require.NoError(t, err)

	assert.Contains(t, out, "  + Y3S2/Finance/Report1/report.pdf (12 chunks)")
	assert.Contains(t, out, "  = Y3S2/Law/Intro/intro.md (already ingested)")
	assert.Contains(t, out, "  ! Y3S2/Law/Broken/broken.pdf: corrupt xref")
	assert.Contains(t, out, "Run run-1: 1 processed, 1 skipped, 1 failed, 12 chunks")
	assert.Contains(t, out, "Library: 1 collections, 2 units")

	require.Len(t, ingestion.opts, 1)
	assert.False(t, ingestion.opts[0].Force)
}

func TestIngestCmd_Force(t *testing.T) {
	svc, _, ingestion := testServices()
	ingestion.run = &domain.IngestionRun{ID: "run-2", Force: true}
	installServices(t, svc)

	_, _, err := runCommand(t, "", "ingest", "--force")
	require.NoError(t, err)

	require.Len(t, ingestion.opts, 1)
	assert.True(t, ingestion.opts[0].Force)
}

func TestIngestCmd_Errors(t *testing.T) {
	t.Run("failure without run", func(t *testing.T) {
		svc, _, ingestion := testServices()
		ingestion.err = domain.ErrIngestionInProgress
		installServices(t, svc)

		_, _, err := runCommand(t, "", "ingest")
		assert.ErrorIs(t, err, domain.ErrIngestionInProgress)
		assert.Contains(t, err.Error(), "ingestion failed")
	})

	t.Run("run with error warns", func(t *testing.T) {
		svc, _, ingestion := testServices()
		ingestion.run = testRun()
		ingestion.err = errors.New("writing run log: disk full")
		installServices(t, svc)

		out, errOut, err := runCommand(t, "", "ingest")
		require.NoError(t, err)
		assert.Contains(t, out, "Run run-1")
		assert.Contains(t, errOut, "Warning: writing run log: disk full")
	})
}

func TestIngestCmd_Watch(t *testing.T) {
	t.Run("unsupported source", func(t *testing.T) {
		svc, _, _ := testServices()
		installServices(t, svc)

		_, _, err := runCommand(t, "", "ingest", "--watch")
		assert.ErrorIs(t, err, errWatchUnsupported)
	})

	t.Run("stops when the source closes", func(t *testing.T) {
		svc, _, ingestion := testServices()
		svc.Watch = closedSource{}
		ingestion.run = testRun()
		installServices(t, svc)

		out, _, err := runCommand(t, "", "ingest", "-w")
		require.NoError(t, err)
		assert.Contains(t, out, "Watching for changes.")
		assert.Len(t, ingestion.opts, 1)
	})
}
