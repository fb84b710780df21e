package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

func TestNewCompletionService(t *testing.T) {
	_, err := NewCompletionService(Config{})
	assert.Error(t, err)

	svc, err := NewCompletionService(Config{APIKey: "key"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
}

func TestToMessages(t *testing.T) {
	system, msgs, err := toMessages([]domain.Message{
		{Role: domain.RoleSystem, Content: "be helpful"},
		{Role: domain.RoleUser, Content: "what are ratios?"},
		{Role: domain.RoleAssistant, Content: "Let me look.", ToolCalls: []domain.ToolCall{
			{ID: "tu_1", Name: "retrieve", Arguments: `{"query":"ratios"}`},
			{ID: "tu_2", Name: "list_units", Arguments: ""},
		}},
		{Role: domain.RoleTool, ToolCallID: "tu_1", Name: "retrieve", Content: "hit"},
		{Role: domain.RoleTool, ToolCallID: "tu_2", Name: "list_units", Content: "units"},
	})
	require.NoError(t, err)

	assert.Equal(t, "be helpful", system)
	require.Len(t, msgs, 3)

	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "assistant", msgs[1].Role)
	require.Len(t, msgs[1].Content, 3)
	assert.Equal(t, "text", msgs[1].Content[0].Type)
	assert.Equal(t, "tool_use", msgs[1].Content[1].Type)
	assert.JSONEq(t, `{}`, string(msgs[1].Content[2].Input))

	// Both tool results fold into one user turn.
	assert.Equal(t, "user", msgs[2].Role)
	require.Len(t, msgs[2].Content, 2)
	assert.Equal(t, "tool_result", msgs[2].Content[0].Type)
	assert.Equal(t, "tu_2", msgs[2].Content[1].ToolUseID)
}

func TestToMessages_Invalid(t *testing.T) {
	_, _, err := toMessages([]domain.Message{
		{Role: domain.RoleAssistant, ToolCalls: []domain.ToolCall{{ID: "x", Name: "retrieve", Arguments: "{"}}},
	})
	assert.Error(t, err)

	_, _, err = toMessages([]domain.Message{{Role: "narrator", Content: "x"}})
	assert.Error(t, err)
}

func TestCompletionService_Complete(t *testing.T) {
	var got messagesRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/models":
			_, _ = w.Write([]byte(`{"data":[]}`))
		case "/v1/messages":
			assert.Equal(t, "key", r.Header.Get("x-api-key"))
			assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`{"content":[` +
				`{"type":"text","text":"Searching."},` +
				`{"type":"tool_use","id":"tu_9","name":"retrieve","input":{"query":"ratios"}}],` +
				`"stop_reason":"tool_use"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	svc, err := NewCompletionService(Config{APIKey: "key", BaseURL: server.URL})
	require.NoError(t, err)

	tools := []driven.ToolDefinition{{Name: "retrieve", Description: "search", Parameters: map[string]any{"type": "object"}}}
	msg, err := svc.Complete(context.Background(), []domain.Message{
		{Role: domain.RoleSystem, Content: "sys"},
		{Role: domain.RoleUser, Content: "q"},
	}, tools, driven.CompletionOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Searching.", msg.Content)
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "tu_9", msg.ToolCalls[0].ID)
	assert.JSONEq(t, `{"query":"ratios"}`, msg.ToolCalls[0].Arguments)

	assert.Equal(t, "sys", got.System)
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
	require.Len(t, got.Tools, 1)
	assert.Equal(t, "object", got.Tools[0].InputSchema["type"])

	assert.NoError(t, svc.Ping(context.Background()))
}

func TestCompletionService_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer server.Close()

	svc, err := NewCompletionService(Config{APIKey: "key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), []domain.Message{{Role: domain.RoleUser, Content: "q"}}, nil, driven.CompletionOptions{})
	assert.ErrorContains(t, err, "invalid x-api-key")
	assert.Error(t, svc.Ping(context.Background()))
}
