package memory

import "github.com/petasbytes/book-tutor/internal/chat"

// Group describes a contiguous span of messages [Start, End) that must be
// kept or evicted as a unit when enforcing the budget.
type Group struct {
	Start int // inclusive index
	End   int // exclusive index
}

// GroupMessages groups a log into atomic units.
// Invariants:
//   - An assistant message carrying tool invocations forms one group with
//     the contiguous run of tool-role messages that follows it, so an
//     invocation is never separated from its results.
//   - Every other message is a singleton.
func GroupMessages(msgs []chat.Message) []Group {
	groups := make([]Group, 0, len(msgs))
	for i := 0; i < len(msgs); {
		if msgs[i].Role == chat.RoleAssistant && len(msgs[i].ToolCalls) > 0 {
			end := i + 1
			for end < len(msgs) && msgs[end].Role == chat.RoleTool {
				end++
			}
			groups = append(groups, Group{Start: i, End: end})
			i = end
			continue
		}
		groups = append(groups, Group{Start: i, End: i + 1})
		i++
	}
	return groups
}

// costOf sums the counter over a group's span.
func costOf(g Group, msgs []chat.Message, c TokenCounter) int {
	total := 0
	for i := g.Start; i < g.End; i++ {
		total += c(msgs[i])
	}
	return total
}

// trimToBudget returns the newest suffix of whole groups whose cumulative
// cost fits within budget. A leading system message is pinned: it always
// survives and its cost counts against the budget. budget <= 0 means
// unbounded.
func trimToBudget(msgs []chat.Message, budget int, c TokenCounter) []chat.Message {
	if budget <= 0 || len(msgs) == 0 {
		return msgs
	}

	var pinned []chat.Message
	rest := msgs
	total := 0
	if msgs[0].Role == chat.RoleSystem {
		pinned = msgs[:1]
		rest = msgs[1:]
		total = c(msgs[0])
	}

	groups := GroupMessages(rest)
	start := len(groups)
	for gi := len(groups) - 1; gi >= 0; gi-- {
		cost := costOf(groups[gi], rest, c)
		if total+cost > budget {
			break
		}
		total += cost
		start = gi
	}

	if start == len(groups) {
		return pinned
	}
	out := make([]chat.Message, 0, len(pinned)+len(rest)-groups[start].Start)
	out = append(out, pinned...)
	out = append(out, rest[groups[start].Start:]...)
	return out
}
