package cli

import (
	"bufio"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/studyrag/internal/adapters/driving/shell"
	"github.com/custodia-labs/studyrag/internal/core/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive study session",
	Long: `Starts an interactive session. Navigate the library with commands
such as 'use', 'open' and 'select', and type any question to ask it within
the current scope. Type 'help' for all commands and 'exit' to leave.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

// isTerminal reports whether stdin is interactive.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func runChat(cmd *cobra.Command, _ []string) error {
	session, err := newSession()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	interactive := isTerminal()

	if interactive {
		cmd.Println("studyrag chat. Type 'help' for commands, 'exit' to leave.")
		cmd.Println("Current scope: " + session.DescribeScope())
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		if interactive {
			cmd.Print("\n> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}

		reply, err := execute(ctx, cmd, session, scanner.Text(), true)
		switch {
		case errors.Is(err, shell.ErrMissingArgument):
			cmd.PrintErrln(err)
			continue
		case errors.Is(err, domain.ErrIterationBudgetExceeded):
			cmd.PrintErrln("I couldn't finish answering that within the step limit. Try a narrower question.")
			continue
		case err != nil:
			cmd.PrintErrln("Error: " + err.Error())
			continue
		}
		if reply.Quit {
			return nil
		}
		if reply.Answer && interactive {
			cmd.Println("\n[" + session.DescribeScope() + "]")
		}
	}
}
