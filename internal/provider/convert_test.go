package provider

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/petasbytes/book-tutor/internal/chat"
)

func msgAt(role chat.Role, content string) chat.Message {
	return chat.Message{Role: role, Content: content, CreatedAt: time.Unix(0, 0).UTC()}
}

func TestToMessageParams_SystemSplitOut(t *testing.T) {
	system, msgs, err := toMessageParams([]chat.Message{
		msgAt(chat.RoleSystem, "You are a tutor."),
		msgAt(chat.RoleUser, "Hi"),
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if len(system) != 1 || system[0].Text != "You are a tutor." {
		t.Fatalf("system prompt not extracted: %+v", system)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 API message, got %d", len(msgs))
	}
}

func TestToMessageParams_CoalescesToolResults(t *testing.T) {
	assistant := chat.Message{
		Role: chat.RoleAssistant,
		ToolCalls: []chat.ToolCall{
			{ID: "c1", Name: "GetChapterContent", Arguments: `{"chapter":"1."}`},
			{ID: "c2", Name: "BookJump", Arguments: `{"chapter":"2."}`},
		},
		CreatedAt: time.Unix(0, 0).UTC(),
	}
	res1 := chat.Message{Role: chat.RoleTool, ToolCallID: "c1", Content: "body", CreatedAt: time.Unix(0, 0).UTC()}
	res2 := chat.Message{Role: chat.RoleTool, ToolCallID: "c2", Content: "nope", IsError: true, CreatedAt: time.Unix(0, 0).UTC()}

	_, msgs, err := toMessageParams([]chat.Message{
		msgAt(chat.RoleUser, "teach me"),
		assistant,
		res1,
		res2,
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	// user, assistant, then ONE user message holding both tool results.
	if len(msgs) != 3 {
		t.Fatalf("expected 3 API messages, got %d", len(msgs))
	}

	b, err := json.Marshal(msgs[2])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		Role    string `json:"role"`
		Content []struct {
			Type      string `json:"type"`
			ToolUseID string `json:"tool_use_id"`
			IsError   bool   `json:"is_error"`
		} `json:"content"`
	}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, b)
	}
	if decoded.Role != "user" || len(decoded.Content) != 2 {
		t.Fatalf("tool results not coalesced: %s", b)
	}
	if decoded.Content[0].ToolUseID != "c1" || decoded.Content[1].ToolUseID != "c2" {
		t.Fatalf("result order lost: %s", b)
	}
	if decoded.Content[0].IsError || !decoded.Content[1].IsError {
		t.Fatalf("is_error flags wrong: %s", b)
	}
}

func TestToolInput_MalformedArgsBecomeString(t *testing.T) {
	if got := toolInput(`{"chapter":"1."}`); string(got.(json.RawMessage)) != `{"chapter":"1."}` {
		t.Fatalf("valid JSON mangled: %v", got)
	}
	if got := toolInput(`{"chapter":`); got != `{"chapter":` {
		t.Fatalf("malformed args not passed as string: %v", got)
	}
}
