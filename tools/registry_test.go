package tools_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/petasbytes/book-tutor/internal/chat"
	"github.com/petasbytes/book-tutor/tools"
)

func constTool(name, out string) tools.Definition {
	return tools.Definition{
		Name: name,
		Function: func(ctx context.Context, input json.RawMessage) (string, error) {
			return out, nil
		},
	}
}

func TestRegister_Validation(t *testing.T) {
	reg := tools.NewRegistry()

	if err := reg.Register(tools.Definition{Name: ""}); err == nil {
		t.Fatal("expected error for empty name")
	}
	if err := reg.Register(tools.Definition{Name: "x"}); err == nil {
		t.Fatal("expected error for nil handler")
	}
	if err := reg.Register(constTool("x", "")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register(constTool("x", "")); err == nil {
		t.Fatal("expected error for duplicate name")
	}
}

func TestDefinitions_RegistrationOrder(t *testing.T) {
	reg := tools.NewRegistry()
	for _, name := range []string{"c", "a", "b"} {
		if err := reg.Register(constTool(name, "")); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	defs := reg.Definitions()
	if len(defs) != 3 || defs[0].Name != "c" || defs[1].Name != "a" || defs[2].Name != "b" {
		t.Fatalf("definitions out of order: %+v", defs)
	}
}

func TestCall_FailuresAreContainedPerInvocation(t *testing.T) {
	reg := tools.NewRegistry()
	if err := reg.Register(constTool("ok", "fine")); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := reg.Register(tools.Definition{
		Name: "slow-fail",
		Function: func(ctx context.Context, input json.RawMessage) (string, error) {
			time.Sleep(10 * time.Millisecond)
			return "", errors.New("backend down")
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	results := reg.Call(context.Background(), []chat.ToolCall{
		{ID: "c1", Name: "slow-fail", Arguments: `{}`},
		{ID: "c2", Name: "ok", Arguments: `{}`},
		{ID: "c3", Name: "missing", Arguments: `{}`},
		{ID: "c4", Name: "ok", Arguments: `{"broken":`},
	})

	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	// Results keep invocation order regardless of completion order.
	for i, id := range []string{"c1", "c2", "c3", "c4"} {
		if results[i].ToolCallID != id {
			t.Fatalf("result %d answers %s, want %s", i, results[i].ToolCallID, id)
		}
	}
	if !results[0].IsError || results[0].Content != "backend down" {
		t.Fatalf("execution failure not captured: %+v", results[0])
	}
	if results[1].IsError || results[1].Content != "fine" {
		t.Fatalf("sibling affected by failures: %+v", results[1])
	}
	if !results[2].IsError || results[2].Content != "tool not found: missing" {
		t.Fatalf("unknown tool not captured: %+v", results[2])
	}
	if !results[3].IsError || results[3].Content != "malformed tool arguments for ok" {
		t.Fatalf("malformed arguments not captured: %+v", results[3])
	}
}
