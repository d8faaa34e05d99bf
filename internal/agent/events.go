package agent

import "github.com/petasbytes/book-tutor/internal/chat"

// EventKind discriminates the payload of an Event.
type EventKind int

const (
	// EventContent carries one streamed text delta in Text.
	EventContent EventKind = iota
	// EventRefusal carries the full refusal text in Text, emitted once
	// after the stream ends.
	EventRefusal
	// EventToolCall announces a finalized invocation before it runs.
	EventToolCall
	// EventToolResult carries the outcome of one invocation.
	EventToolResult
)

// Event is one ordered observation of a turn in progress.
type Event struct {
	Kind   EventKind
	Text   string
	Call   *chat.ToolCall
	Result *chat.ToolResult
}
