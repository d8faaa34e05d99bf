package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/petasbytes/book-tutor/internal/chat"
)

// Definition declares one invocable capability.
type Definition struct {
	Name        string
	Description string
	InputSchema anthropic.ToolInputSchemaParam
	Function    func(ctx context.Context, input json.RawMessage) (string, error)
}

// Registry maps tool names to definitions. Tools are registered before the
// orchestrator starts; dispatch is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]Definition
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register inserts a tool when its name is not in use.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("tool name is empty")
	}
	if def.Function == nil {
		return fmt.Errorf("tool %s has no handler", def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.Name]; exists {
		return fmt.Errorf("tool %s already registered", def.Name)
	}
	r.defs[def.Name] = def
	r.order = append(r.order, def.Name)
	return nil
}

// Definitions returns the registered tools in registration order, for
// inclusion in the next provider request.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.defs[name])
	}
	return out
}

// Call dispatches one turn's batch of invocations. Invocations execute
// concurrently and independently: an unknown name, malformed argument text,
// or execution failure is captured as that invocation's error result and
// never blocks or cancels a sibling. Results come back in invocation order.
func (r *Registry) Call(ctx context.Context, calls []chat.ToolCall) []chat.ToolResult {
	results := make([]chat.ToolResult, len(calls))

	var g errgroup.Group
	for i, call := range calls {
		g.Go(func() error {
			results[i] = r.callOne(ctx, call)
			return nil
		})
	}
	// Workers never return errors; Wait is only a join point.
	_ = g.Wait()
	return results
}

func (r *Registry) callOne(ctx context.Context, call chat.ToolCall) chat.ToolResult {
	r.mu.RLock()
	def, ok := r.defs[call.Name]
	r.mu.RUnlock()
	if !ok {
		return errResult(call.ID, fmt.Sprintf("tool not found: %s", call.Name))
	}

	// Argument text was accumulated from stream deltas and is validated
	// here so a malformed invocation fails alone.
	if !gjson.Valid(call.Arguments) {
		return errResult(call.ID, fmt.Sprintf("malformed tool arguments for %s", call.Name))
	}

	out, err := def.Function(ctx, json.RawMessage(call.Arguments))
	if err != nil {
		return errResult(call.ID, err.Error())
	}
	return chat.ToolResult{ToolCallID: call.ID, Content: out}
}

func errResult(id, msg string) chat.ToolResult {
	return chat.ToolResult{ToolCallID: id, Content: msg, IsError: true}
}
