package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

var (
	runsLimit int
	runsJSON  bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent ingestion runs",
	Long:  `Lists the latest ingestion runs, newest first, with their failures.`,
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 5, "maximum number of runs")
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "output runs as JSON")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	if ingestionService == nil {
		return notConfigured("ingestion")
	}

	runs, err := ingestionService.Runs(cmd.Context(), runsLimit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	if runsJSON {
		if runs == nil {
			runs = []domain.IngestionRun{}
		}
		data, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal runs: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(runs) == 0 {
		cmd.Println("No ingestion runs yet. Run 'studyrag ingest' first.")
		return nil
	}

	for i := range runs {
		run := &runs[i]
		force := ""
		if run.Force {
			force = " (forced)"
		}
		cmd.Printf("%s  %s%s\n", run.Timestamp.Format("2006-01-02 15:04:05"), run.ID, force)
		cmd.Printf("  processed %d, skipped %d, failed %d, chunks %d\n",
			run.UnitsProcessed, run.UnitsSkipped, run.UnitsFailed, run.TotalChunks)
		for _, f := range run.Failures {
			cmd.Printf("  ! %s: %s\n", f.SourcePath, f.Error)
		}
	}
	return nil
}
