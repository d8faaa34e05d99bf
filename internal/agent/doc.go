// Package agent runs the tutoring conversation loop: stream the model's
// reply, surface it as ordered events, execute any requested tools, feed
// the results back, and repeat until the model answers in plain text.
//
// Invariants:
//   - Events for one turn are emitted in stream order; emission blocks on
//     the consumer and aborts when the consumer's context is cancelled.
//   - The assistant message is recorded only after its stream completed
//     cleanly; a transport failure leaves no partial assistant message.
//   - Tool rounds per input are bounded; exceeding the bound is an error,
//     not a silent truncation.
package agent
