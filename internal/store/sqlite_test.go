package store_test

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/petasbytes/book-tutor/internal/chat"
	"github.com/petasbytes/book-tutor/internal/store"
	"github.com/petasbytes/book-tutor/memory"
)

func openTemp(t *testing.T) *store.SQLite {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "tutor.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_RoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	id := memory.Identity{StudentID: 3, BookID: 9}

	at := time.Date(2025, 6, 1, 12, 0, 0, 123456789, time.UTC)
	msgs := []chat.Message{
		{Role: chat.RoleSystem, Content: "You teach book 9.", CreatedAt: at},
		{Role: chat.RoleUser, Content: "Hi", CreatedAt: at.Add(time.Second)},
		{
			Role:    chat.RoleAssistant,
			Content: "Checking the chapter.",
			ToolCalls: []chat.ToolCall{
				{ID: "c1", Name: "GetChapterContent", Arguments: `{"chapter":"1.2."}`},
				{ID: "c2", Name: "BookJump", Arguments: `{"chapter":"1.2."}`},
			},
			CreatedAt: at.Add(2 * time.Second),
		},
		{Role: chat.RoleTool, ToolCallID: "c1", Content: "chapter body", CreatedAt: at.Add(3 * time.Second)},
		{Role: chat.RoleTool, ToolCallID: "c2", Content: "no such chapter", IsError: true, CreatedAt: at.Add(4 * time.Second)},
	}

	if err := s.SaveMessages(ctx, id, msgs); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.LoadMessages(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, msgs) {
		t.Fatalf("round-trip mismatch:\ngot:  %+v\nwant: %+v", got, msgs)
	}
}

func TestSQLite_SaveRewritesLog(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	id := memory.Identity{StudentID: 1, BookID: 1}
	at := time.Unix(0, 0).UTC()

	first := []chat.Message{
		{Role: chat.RoleUser, Content: "one", CreatedAt: at},
		{Role: chat.RoleUser, Content: "two", CreatedAt: at},
	}
	if err := s.SaveMessages(ctx, id, first); err != nil {
		t.Fatalf("save first: %v", err)
	}

	second := []chat.Message{{Role: chat.RoleUser, Content: "only", CreatedAt: at}}
	if err := s.SaveMessages(ctx, id, second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	got, err := s.LoadMessages(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, second) {
		t.Fatalf("expected rewritten log, got %+v", got)
	}
}

func TestSQLite_IdentitiesAreIsolated(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	at := time.Unix(0, 0).UTC()

	a := memory.Identity{StudentID: 1, BookID: 1}
	b := memory.Identity{StudentID: 2, BookID: 1}
	if err := s.SaveMessages(ctx, a, []chat.Message{{Role: chat.RoleUser, Content: "a", CreatedAt: at}}); err != nil {
		t.Fatalf("save a: %v", err)
	}
	if err := s.SaveMessages(ctx, b, []chat.Message{{Role: chat.RoleUser, Content: "b", CreatedAt: at}}); err != nil {
		t.Fatalf("save b: %v", err)
	}

	got, err := s.LoadMessages(ctx, a)
	if err != nil {
		t.Fatalf("load a: %v", err)
	}
	if len(got) != 1 || got[0].Content != "a" {
		t.Fatalf("identity a log polluted: %+v", got)
	}
}

func TestSQLite_EmptyLoad(t *testing.T) {
	s := openTemp(t)
	got, err := s.LoadMessages(context.Background(), memory.Identity{StudentID: 42, BookID: 42})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty log, got %+v", got)
	}
}
