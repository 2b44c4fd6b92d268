package schema

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall represents one function call in an assistant message.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// Message is one entry in the conversation history.
//
// Content is empty for assistant messages that only carry tool calls.
// ToolCallID and ToolName are set for tool-result messages.
// ReasoningContent carries the provider's separate thinking block, if any.
type Message struct {
	Role             string
	Content          string
	ToolCalls        []ToolCall
	ToolCallID       string
	ToolName         string
	ReasoningContent string
}
