// Package assembly merges ordered partial response fragments into a
// finished turn: accumulated text, accumulated refusal text, and the
// completed tool invocations in index order.
//
// State is turn-scoped: construct a fresh Assembler per provider stream and
// discard it after Finalize.
package assembly

import (
	"sort"
	"strings"

	"github.com/petasbytes/book-tutor/internal/chat"
)

// Turn is the finalized output of one provider stream.
type Turn struct {
	Content string
	Refusal string
	Calls   []chat.ToolCall
}

// Assembler accumulates fragments for a single turn.
//
// Tool-call deltas are keyed by index: a delta may supply the identifier
// and/or name (first occurrence) and/or an argument-text fragment, and
// deltas for distinct indices may interleave. Every piece is concatenated
// into its index's accumulator, never overwritten.
type Assembler struct {
	content strings.Builder
	refusal strings.Builder
	calls   map[int]*pendingCall
}

type pendingCall struct {
	id   strings.Builder
	name strings.Builder
	args strings.Builder
}

// New returns an empty turn-scoped assembler.
func New() *Assembler {
	return &Assembler{calls: make(map[int]*pendingCall)}
}

// Add folds one fragment into the turn, in arrival order.
func (a *Assembler) Add(f chat.Fragment) {
	a.content.WriteString(f.TextDelta)
	a.refusal.WriteString(f.RefusalDelta)
	for _, d := range f.ToolDeltas {
		pc, ok := a.calls[d.Index]
		if !ok {
			pc = &pendingCall{}
			a.calls[d.Index] = pc
		}
		pc.id.WriteString(d.ID)
		pc.name.WriteString(d.Name)
		pc.args.WriteString(d.ArgsDelta)
	}
}

// Finalize completes the turn. Tool invocations are returned in index
// order; an invocation whose accumulator stayed empty is dropped, and empty
// argument text finalizes as "{}" so downstream decoding sees an object.
// Argument text is otherwise preserved verbatim; syntactic validation
// happens at dispatch so a malformed invocation fails alone.
func (a *Assembler) Finalize() Turn {
	turn := Turn{
		Content: a.content.String(),
		Refusal: a.refusal.String(),
	}
	if len(a.calls) == 0 {
		return turn
	}

	indices := make([]int, 0, len(a.calls))
	for idx := range a.calls {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	for _, idx := range indices {
		pc := a.calls[idx]
		if pc.id.Len() == 0 && pc.name.Len() == 0 && pc.args.Len() == 0 {
			continue
		}
		args := pc.args.String()
		if args == "" {
			args = "{}"
		}
		turn.Calls = append(turn.Calls, chat.ToolCall{
			ID:        pc.id.String(),
			Name:      pc.name.String(),
			Arguments: args,
		})
	}
	return turn
}
