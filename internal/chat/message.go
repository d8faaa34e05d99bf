package chat

import "time"

// Role identifies who produced a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry in a conversation log. Immutable once appended.
//
// Field usage by role:
//   - system/user: Content only.
//   - assistant: Content and/or Refusal and/or ToolCalls; any may be empty.
//   - tool: Content plus ToolCallID (the invocation this result answers);
//     IsError marks a failed invocation.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	Refusal    string     `json:"refusal,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	IsError    bool       `json:"is_error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ToolCall is a structured request, emitted by the assistant, to execute a
// named capability. Arguments holds the accumulated argument text exactly as
// streamed by the provider; it is decoded (and validated) at dispatch time so
// a malformed invocation never corrupts the persisted message.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolResult answers exactly one ToolCall of the immediately preceding
// assistant message. Content carries the success payload or an error
// description; IsError distinguishes the two.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error,omitempty"`
}

// NewUserMessage builds a user message with the timestamp set.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text, CreatedAt: time.Now().UTC()}
}

// NewToolMessage folds a ToolResult into its tool-role message form.
func NewToolMessage(res ToolResult) Message {
	return Message{
		Role:       RoleTool,
		Content:    res.Content,
		ToolCallID: res.ToolCallID,
		IsError:    res.IsError,
		CreatedAt:  time.Now().UTC(),
	}
}
