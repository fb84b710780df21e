package driving

import (
	"context"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// AgentService answers questions with the tool-using reasoning loop.
type AgentService interface {
	// Ask appends question to conv, runs the loop and returns the final answer.
	// On failure conv holds either no new messages or the question plus
	// complete request/result pairs.
	Ask(ctx context.Context, conv *domain.Conversation, question string) (string, error)
}
