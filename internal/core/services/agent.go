package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
	"github.com/custodia-labs/studyrag/internal/core/ports/driving"
	"github.com/custodia-labs/studyrag/internal/logger"
)

// Ensure Agent implements the interfaces.
var (
	_ driving.AgentService    = (*Agent)(nil)
	_ driven.PromptStoreAware = (*Agent)(nil)
)

// defaultSystemPrompt is used when no prompt store is set.
// The %s placeholder receives the scope description.
const defaultSystemPrompt = `You are an intelligent study assistant who helps students navigate and learn from their document library.
You have access to a retriever tool that searches the library and a library_catalog tool that lists what is available.
The library is organised by collection, sub-collection and unit.

When answering questions:
1. Use the retriever tool to find relevant information. You can make multiple calls if needed.
2. Always cite specific sources (title, page number).
3. Provide clear, educational explanations.
4. If the answer isn't in the current scope, say so.

Current scope: %s`

// AgentConfig bounds the reasoning loop.
type AgentConfig struct {
	// MaxIterations caps ASK steps per question.
	MaxIterations int

	// CompletionTimeout bounds each completion call. Zero disables the bound.
	CompletionTimeout time.Duration

	// ToolTimeout bounds each tool invocation. Zero disables the bound.
	ToolTimeout time.Duration
}

// Agent runs the ASK/ACT loop: it asks the completion service, executes any
// requested tools and repeats until an answer without tool calls is produced.
type Agent struct {
	completion driven.CompletionService
	catalog    driving.CatalogService
	prompts    driven.PromptStore
	tools      toolset
	cfg        AgentConfig
}

// NewAgent creates an agent with the retriever and library_catalog tools.
func NewAgent(
	completion driven.CompletionService,
	retriever driving.RetrieverService,
	catalog driving.CatalogService,
	cfg AgentConfig,
) *Agent {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = domain.DefaultMaxIterations
	}
	return &Agent{
		completion: completion,
		catalog:    catalog,
		tools: newToolset(
			retrieverTool{retriever: retriever},
			catalogTool{catalog: catalog},
		),
		cfg: cfg,
	}
}

// SetPromptStore sets the store the system prompt template is loaded from.
func (a *Agent) SetPromptStore(store driven.PromptStore) {
	a.prompts = store
}

// Ask appends question to conv and runs the loop until a final answer.
// conv is only extended at complete boundaries: the question is committed
// together with the first request/result pair or with the final answer.
func (a *Agent) Ask(ctx context.Context, conv *domain.Conversation, question string) (string, error) {
	if a.completion == nil {
		return "", domain.ErrCompletionUnavailable
	}
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	pending := []domain.Message{{Role: domain.RoleUser, Content: question}}
	scope := conv.Scope

	for iteration := 1; iteration <= a.cfg.MaxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		// ASK
		history := make([]domain.Message, 0, len(conv.Messages)+len(pending)+1)
		history = append(history, domain.Message{Role: domain.RoleSystem, Content: a.systemPrompt(scope)})
		history = append(history, conv.Messages...)
		history = append(history, pending...)

		reply, err := a.complete(ctx, history)
		if err != nil {
			return "", fmt.Errorf("completion: %w", err)
		}
		reply.Role = domain.RoleAssistant

		if !reply.HasToolCalls() {
			conv.Messages = append(conv.Messages, pending...)
			conv.Messages = append(conv.Messages, reply)
			logger.Debug("agent: answered after %d iteration(s)", iteration)
			return reply.Content, nil
		}

		// ACT
		results := a.act(ctx, reply.ToolCalls, scope)
		pending = append(pending, reply)
		pending = append(pending, results...)
		conv.Messages = append(conv.Messages, pending...)
		pending = nil
	}

	return "", fmt.Errorf("%w: %d iterations", domain.ErrIterationBudgetExceeded, a.cfg.MaxIterations)
}

func (a *Agent) complete(ctx context.Context, history []domain.Message) (domain.Message, error) {
	if a.cfg.CompletionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.CompletionTimeout)
		defer cancel()
	}
	return a.completion.Complete(ctx, history, a.tools.defs, driven.CompletionOptions{
		Temperature: 0,
	})
}

// act runs every call concurrently and returns the results in issue order,
// each correlated by the call id.
func (a *Agent) act(ctx context.Context, calls []domain.ToolCall, scope domain.Scope) []domain.Message {
	results := make([]domain.Message, len(calls))

	var g errgroup.Group
	for i, call := range calls {
		g.Go(func() error {
			tctx := ctx
			if a.cfg.ToolTimeout > 0 {
				var cancel context.CancelFunc
				tctx, cancel = context.WithTimeout(ctx, a.cfg.ToolTimeout)
				defer cancel()
			}

			tool := a.tools.lookup(call.Name)
			if _, unknown := tool.(unknownTool); unknown {
				logger.Warn("agent: unknown tool %q", call.Name)
			}
			logger.Debug("agent: calling %s with %s", call.Name, call.Arguments)

			results[i] = domain.Message{
				Role:       domain.RoleTool,
				Content:    tool.invoke(tctx, call.Arguments, scope),
				ToolCallID: call.ID,
				Name:       call.Name,
			}
			// The result text already reports the failure; the error only feeds the log.
			if err := tctx.Err(); err != nil {
				return fmt.Errorf("tool %s (%s): %w", call.Name, call.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Warn("agent: %v", err)
	}

	return results
}

func (a *Agent) systemPrompt(scope domain.Scope) string {
	template := defaultSystemPrompt
	if a.prompts != nil {
		if p, err := a.prompts.Load(driven.PromptAgentSystem); err == nil && strings.Contains(p, "%s") {
			template = p
		} else if err != nil {
			logger.Warn("agent: load prompt: %v", err)
		}
	}
	// Templates are user-edited, so other '%' characters must stay literal.
	return strings.Replace(template, "%s", a.catalog.DescribeScope(scope), 1)
}
