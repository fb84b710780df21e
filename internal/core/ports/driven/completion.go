package driven

import (
	"context"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// CompletionService produces chat completions that may request tool invocations.
//
// Implementations may include:
//   - OpenAI (GPT-4o)
//   - Anthropic (Claude)
//   - Ollama (local models with tool support)
type CompletionService interface {
	// Complete sends the message history and the available tools and returns
	// one assistant message. The message carries zero or more tool calls.
	Complete(ctx context.Context, messages []domain.Message, tools []ToolDefinition, opts CompletionOptions) (domain.Message, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ToolDefinition describes a tool offered to the completion service.
type ToolDefinition struct {
	// Name is the identifier the model uses to request the tool.
	Name string

	// Description tells the model when to use the tool.
	Description string

	// Parameters is the JSON Schema of the argument object.
	Parameters map[string]any
}

// CompletionOptions configures completion behaviour.
type CompletionOptions struct {
	// MaxTokens is the maximum number of tokens to generate. Zero uses the provider default.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
