package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/studyrag/internal/adapters/driving/tui"
	"github.com/custodia-labs/studyrag/internal/adapters/driving/watch"
	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/logger"
)

var tuiWatch bool

// runProgram runs the bubbletea program. Tests replace it.
var runProgram = func(app *tui.App) error {
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for studyrag.

Browse the library to narrow the scope, then ask questions in the chat
view. Chat accepts the same commands as 'studyrag chat'.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Select / Send
  Tab      - Jump to chat from the library
  c        - Clear scope (library view)
  Esc      - Back
  q        - Quit

With --watch, local documents are re-ingested in the background while
the UI is open.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().BoolVarP(&tuiWatch, "watch", "w", false, "re-ingest local changes in the background")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ports := &tui.Ports{
		Catalog: catalogService,
		Scope:   scopeService,
		Agent:   agentService,
		Tenant:  tenant,
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if tuiWatch {
		if watchSource == nil || ingestionService == nil {
			return errWatchUnsupported
		}
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		// The UI owns the terminal, so run results only go to the log.
		w := watch.New(watchSource, ingestionService, catalogService, watch.Config{
			OnRun: func(run *domain.IngestionRun, _ error) {
				if run != nil {
					logger.Info("background ingestion %s: %d processed, %d failed", run.ID, run.UnitsProcessed, run.UnitsFailed)
				}
			},
		})
		go func() {
			if err := w.Run(ctx); err != nil {
				logger.Warn("watcher stopped: %v", err)
			}
		}()
	}

	if err := runProgram(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
