package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/studyrag/internal/adapters/driving/watch"
	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driving"
)

var (
	ingestForce bool
	ingestWatch bool
)

// errWatchUnsupported is returned by --watch for sources without change notifications.
var errWatchUnsupported = errors.New("--watch requires a local content source")

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest documents from the content source",
	Long: `Scans the content source, loads every unit not yet in the index,
splits it into chunks and stores their embeddings.

Units already ingested are skipped unless --force is given. With --watch
the command keeps running and re-ingests when local documents change.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestForce, "force", "f", false, "re-ingest units that are already indexed")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep running and re-ingest on changes")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if ingestionService == nil {
		return notConfigured("ingestion")
	}
	if ingestWatch && watchSource == nil {
		return errWatchUnsupported
	}

	progress := func(p driving.IngestProgress) { printProgress(cmd, p) }

	run, err := ingestionService.Run(cmd.Context(), driving.IngestOptions{
		Force:    ingestForce,
		Progress: progress,
	})
	if run != nil {
		printRunSummary(cmd, run)
	}
	if err != nil {
		if run == nil {
			return fmt.Errorf("ingestion failed: %w", err)
		}
		cmd.PrintErrf("Warning: %v\n", err)
	}

	if !ingestWatch {
		return nil
	}

	cmd.Println("Watching for changes. Press Ctrl+C to stop.")
	w := watch.New(watchSource, ingestionService, catalogService, watch.Config{
		Progress: progress,
		OnRun: func(run *domain.IngestionRun, err error) {
			if run != nil {
				printRunSummary(cmd, run)
			}
			if err != nil {
				cmd.PrintErrf("Warning: %v\n", err)
			}
		},
	})
	return w.Run(cmd.Context())
}

func printProgress(cmd *cobra.Command, p driving.IngestProgress) {
	switch p.Status {
	case driving.IngestStatusProcessed:
		cmd.Printf("  + %s (%d chunks)\n", p.Unit.SourcePath, p.Chunks)
	case driving.IngestStatusSkipped:
		cmd.Printf("  = %s (already ingested)\n", p.Unit.SourcePath)
	case driving.IngestStatusFailed:
		cmd.Printf("  ! %s: %v\n", p.Unit.SourcePath, p.Err)
	}
}

func printRunSummary(cmd *cobra.Command, run *domain.IngestionRun) {
	cmd.Printf("\nRun %s: %d processed, %d skipped, %d failed, %d chunks\n",
		run.ID, run.UnitsProcessed, run.UnitsSkipped, run.UnitsFailed, run.TotalChunks)
	if n := len(run.HierarchySnapshot); n > 0 {
		cmd.Printf("Library: %d collections, %d units\n", n, run.HierarchySnapshot.UnitCount())
	}
}
