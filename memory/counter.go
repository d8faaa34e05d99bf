package memory

import (
	"unicode/utf8"

	"github.com/petasbytes/book-tutor/internal/chat"
)

// TokenCounter estimates the provider-accounting cost of one message.
// Estimates must be deterministic and monotonic in content length so budget
// enforcement is reproducible; tokenizer fidelity is out of scope.
type TokenCounter func(chat.Message) int

// Fixed per-message overhead for deterministic counts.
const messageOverhead = 4

// CountMessage is the default heuristic estimator: rune counts of every
// text-bearing field plus a small fixed overhead.
func CountMessage(m chat.Message) int {
	total := messageOverhead
	total += utf8.RuneCountInString(m.Content)
	total += utf8.RuneCountInString(m.Refusal)
	total += utf8.RuneCountInString(m.ToolCallID)
	for _, c := range m.ToolCalls {
		total += utf8.RuneCountInString(c.ID)
		total += utf8.RuneCountInString(c.Name)
		total += utf8.RuneCountInString(c.Arguments)
	}
	return total
}
