package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

func TestRunsCmd_NotConfigured(t *testing.T) {
	_, _, err := runCommand(t, "", "runs")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestRunsCmd_Empty(t *testing.T) {
	svc, _, _ := testServices()
	installServices(t, svc)

	out, _, err := runCommand(t, "", "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "No ingestion runs yet.")

	out, _, err = runCommand(t, "", "runs", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
}

func TestRunsCmd_Text(t *testing.T) {
	svc, _, ingestion := testServices()
	forced := *testRun()
	forced.ID, forced.Force, forced.Failures = "run-0", true, nil
	ingestion.runs = []domain.IngestionRun{*testRun(), forced}
	installServices(t, svc)

	out, _, err := runCommand(t, "", "runs", "-n", "2")
	require.NoError(t, err)

	assert.Equal(t, 2, ingestion.runLimit)
	assert.Contains(t, out, "2026-03-01 09:30:00  run-1\n")
	assert.Contains(t, out, "run-0 (forced)")
	assert.Contains(t, out, "processed 1, skipped 1, failed 1, chunks 12")
	assert.Contains(t, out, "  ! Y3S2/Law/Broken/broken.pdf: corrupt xref")
}

func TestRunsCmd_JSON(t *testing.T) {
	svc, _, ingestion := testServices()
	ingestion.runs = []domain.IngestionRun{*testRun()}
	installServices(t, svc)

	out, _, err := runCommand(t, "", "runs", "--json")
	require.NoError(t, err)
	assert.Equal(t, 5, ingestion.runLimit)

	var runs []domain.IngestionRun
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, 2, runs[0].HierarchySnapshot.UnitCount())
}

func TestRunsCmd_Error(t *testing.T) {
	svc, _, ingestion := testServices()
	ingestion.runsErr = errors.New("database is locked")
	installServices(t, svc)

	_, _, err := runCommand(t, "", "runs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing runs")
}
