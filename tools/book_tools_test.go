package tools_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/petasbytes/book-tutor/book"
	"github.com/petasbytes/book-tutor/tools"
)

func testLibrary() *book.StaticLibrary {
	return book.NewStaticLibrary(
		book.Info{ID: 1, Title: "The Go Programming Language", Author: "Donovan & Kernighan"},
		[]book.Chapter{
			{Number: book.ChapterNumber{1}, Name: "Tutorial", Content: "Hello, world."},
			{Number: book.ChapterNumber{1, 2}, Name: "Command-Line Arguments", Content: "os.Args"},
		},
	)
}

func TestGetChapter(t *testing.T) {
	def := tools.NewGetChapter(1, testLibrary())
	if def.Name != "GetChapterContent" {
		t.Fatalf("tool name = %q", def.Name)
	}

	out, err := def.Function(context.Background(), json.RawMessage(`{"chapter":"1.2."}`))
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	var ch book.Chapter
	if err := json.Unmarshal([]byte(out), &ch); err != nil {
		t.Fatalf("result is not chapter JSON: %v\n%s", err, out)
	}
	if ch.Name != "Command-Line Arguments" || ch.Content != "os.Args" {
		t.Fatalf("wrong chapter returned: %+v", ch)
	}
}

func TestGetChapter_MissingChapter(t *testing.T) {
	def := tools.NewGetChapter(1, testLibrary())
	_, err := def.Function(context.Background(), json.RawMessage(`{"chapter":"9."}`))
	if !errors.Is(err, book.ErrChapterNotFound) {
		t.Fatalf("expected ErrChapterNotFound, got %v", err)
	}
}

func TestBookJump(t *testing.T) {
	def := tools.NewBookJump(1, testLibrary())

	out, err := def.Function(context.Background(), json.RawMessage(`{"chapter":"1."}`))
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if out != "Jumped to 1. Tutorial" {
		t.Fatalf("jump message = %q", out)
	}

	out, err = def.Function(context.Background(),
		json.RawMessage(`{"chapter":"1.2.","section_title":"Flags"}`))
	if err != nil {
		t.Fatalf("call with section: %v", err)
	}
	if out != "Jumped to 1.2. Command-Line Arguments #Flags" {
		t.Fatalf("jump message = %q", out)
	}
}

func TestBookJump_UnknownBook(t *testing.T) {
	def := tools.NewBookJump(99, testLibrary())
	_, err := def.Function(context.Background(), json.RawMessage(`{"chapter":"1."}`))
	if !errors.Is(err, book.ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
}
