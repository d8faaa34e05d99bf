// Package tools defines tool contracts and the book tools the tutor exposes
// to the completion provider.
//
// Includes:
//   - Definition: name, description, JSON input schema, handler.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - Registry: name-keyed lookup plus batch dispatch with per-invocation
//     error containment (unknown tool, malformed arguments, and execution
//     failures become error results, never dispatch failures).
//   - Book tools: GetChapterContent, BookJump.
package tools
