package provider

import (
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/tidwall/gjson"

	"github.com/petasbytes/book-tutor/internal/chat"
	"github.com/petasbytes/book-tutor/tools"
)

// toMessageParams converts a conversation snapshot to API form. System
// messages become the system prompt; consecutive tool-role messages are
// coalesced into one user message of tool_result blocks, since the API
// requires all of a turn's results together, directly after the assistant
// message that requested them.
func toMessageParams(msgs []chat.Message) ([]anthropic.TextBlockParam, []anthropic.MessageParam, error) {
	var system []anthropic.TextBlockParam
	out := make([]anthropic.MessageParam, 0, len(msgs))

	for i := 0; i < len(msgs); {
		m := msgs[i]
		switch m.Role {
		case chat.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Type: "text", Text: m.Content})
			i++

		case chat.RoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
			i++

		case chat.RoleAssistant:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, 1+len(m.ToolCalls))
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			} else if m.Refusal != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Refusal))
			}
			for _, call := range m.ToolCalls {
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						Type:  "tool_use",
						ID:    call.ID,
						Name:  call.Name,
						Input: toolInput(call.Arguments),
					},
				})
			}
			if len(blocks) == 0 {
				return nil, nil, fmt.Errorf("message %d: empty assistant message", i)
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
			i++

		case chat.RoleTool:
			var blocks []anthropic.ContentBlockParamUnion
			for ; i < len(msgs) && msgs[i].Role == chat.RoleTool; i++ {
				blocks = append(blocks, anthropic.NewToolResultBlock(msgs[i].ToolCallID, msgs[i].Content, msgs[i].IsError))
			}
			out = append(out, anthropic.NewUserMessage(blocks...))

		default:
			return nil, nil, fmt.Errorf("message %d: unsupported role %q", i, m.Role)
		}
	}
	return system, out, nil
}

// toolInput passes well-formed argument JSON through verbatim; argument
// text that never became valid JSON is resent as a plain string, which is
// how the model saw its own malformed output answered.
func toolInput(args string) any {
	if gjson.Valid(args) {
		return json.RawMessage(args)
	}
	return args
}

// toToolParams exposes registered definitions to the API.
func toToolParams(defs []tools.Definition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, d := range defs {
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        d.Name,
			Description: anthropic.String(d.Description),
			InputSchema: d.InputSchema,
		}})
	}
	return out
}
