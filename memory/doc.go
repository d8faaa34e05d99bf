// Package memory owns the ordered message log for one conversation.
//
// Responsibilities:
//   - Load the persisted log for a (student, book) identity, trimming from
//     the oldest end until the token budget fits; seed a system message when
//     no log exists yet.
//   - Append messages, keeping a running deterministic token estimate, and
//     flush the full log to the store once the auto-save threshold of
//     unflushed appends is reached.
//   - Enforce the budget between turns by evicting the oldest non-pinned
//     groups; a tool-use group (assistant invocation plus its results) is
//     never split.
//
// Invariant: a tool-role message must answer an unanswered invocation of the
// closest preceding assistant message, or the append is refused.
package memory
