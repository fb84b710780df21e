package domain

// Role identifies the author of a conversation message.
type Role string

// Message roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a tool invocation requested by the completion service.
type ToolCall struct {
	// ID correlates the call with its result message.
	ID string

	// Name is the requested tool name.
	Name string

	// Arguments is the JSON-encoded argument object.
	Arguments string
}

// Message is a single entry of a conversation.
type Message struct {
	Role    Role
	Content string

	// ToolCalls is set on assistant messages that request tools.
	ToolCalls []ToolCall

	// ToolCallID and Name are set on tool result messages.
	ToolCallID string
	Name       string
}

// HasToolCalls reports whether the message requests any tool invocation.
func (m Message) HasToolCalls() bool {
	return m.Role == RoleAssistant && len(m.ToolCalls) > 0
}

// Conversation is the ordered message history plus the current scope.
// It is owned by a single session and is not safe for concurrent use.
type Conversation struct {
	Messages []Message
	Scope    Scope
}

// NewConversation creates an empty conversation for tenant.
func NewConversation(tenant string) *Conversation {
	return &Conversation{Scope: Scope{Tenant: tenant}}
}

// Reset drops the message history but keeps the scope.
func (c *Conversation) Reset() {
	c.Messages = nil
}

// LastAnswer returns the content of the last assistant message without tool calls.
func (c *Conversation) LastAnswer() string {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		m := c.Messages[i]
		if m.Role == RoleAssistant && !m.HasToolCalls() {
			return m.Content
		}
	}
	return ""
}
