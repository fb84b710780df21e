package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/studyrag/internal/adapters/driving/shell"
)

var (
	askCollection    string
	askSubcollection string
	askUnits         []string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one question from the study material",
	Long: `Answers a single question using the ingested material and cites the
sources it used. Scope flags restrict retrieval; names are matched
case-insensitively.`,
	Example: `  studyrag ask "What is the liquidity ratio?" --collection Y3S2 --subcollection Finance`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askCollection, "collection", "c", "", "restrict to a collection")
	askCmd.Flags().StringVarP(&askSubcollection, "subcollection", "s", "", "restrict to a sub-collection")
	askCmd.Flags().StringSliceVarP(&askUnits, "unit", "u", nil, "restrict to units (repeatable)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	session, err := newSession()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var lines []string
	if askCollection != "" {
		lines = append(lines, "use "+askCollection)
	}
	if askSubcollection != "" {
		lines = append(lines, "open "+askSubcollection)
	}
	for _, unit := range askUnits {
		lines = append(lines, "select "+unit)
	}
	for _, line := range lines {
		if _, err := execute(ctx, cmd, session, line, false); err != nil {
			return err
		}
	}

	_, err = execute(ctx, cmd, session, "ask "+strings.Join(args, " "), true)
	return err
}

// newSession builds a shell session from the wired services.
func newSession() (*shell.Session, error) {
	if catalogService == nil {
		return nil, notConfigured("catalog")
	}
	if scopeService == nil {
		return nil, notConfigured("scope")
	}
	return shell.New(catalogService, scopeService, agentService, tenant), nil
}

// execute runs one shell line, printing warnings to stderr and, when
// show is set, the reply text to stdout.
func execute(ctx context.Context, cmd *cobra.Command, session *shell.Session, line string, show bool) (shell.Reply, error) {
	reply, err := session.Execute(ctx, line)
	if err != nil {
		return reply, err
	}
	for _, w := range reply.Warnings {
		cmd.PrintErrln("Warning: " + w)
	}
	if show && reply.Text != "" {
		cmd.Println(reply.Text)
	}
	return reply, nil
}
