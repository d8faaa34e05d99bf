package book

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrChapterNotFound reports a lookup for a chapter the book does not have.
var ErrChapterNotFound = errors.New("chapter not found")

// ErrBookNotFound reports a lookup for an unknown book.
var ErrBookNotFound = errors.New("book not found")

// Info is the book-level metadata used to seed a conversation.
type Info struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author,omitempty"`
}

// Library provides read-only chapter lookup by hierarchical chapter number.
// Implementations must be safe for concurrent use.
type Library interface {
	Info(ctx context.Context, bookID int64) (*Info, error)
	Chapter(ctx context.Context, bookID int64, number ChapterNumber) (*Chapter, error)
}

// StaticLibrary is a Library over an in-memory set of books, typically
// loaded from a JSON file. Read-only after construction.
type StaticLibrary struct {
	books map[int64]*staticBook
}

type staticBook struct {
	Info     Info      `json:"info"`
	Chapters []Chapter `json:"chapters"`
}

// NewStaticLibrary builds a library holding a single book.
func NewStaticLibrary(info Info, chapters []Chapter) *StaticLibrary {
	return &StaticLibrary{books: map[int64]*staticBook{
		info.ID: {Info: info, Chapters: chapters},
	}}
}

// LoadFile reads a JSON book list from path.
func LoadFile(path string) (*StaticLibrary, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read book file: %w", err)
	}
	var books []staticBook
	if err := json.Unmarshal(b, &books); err != nil {
		return nil, fmt.Errorf("parse book file %s: %w", path, err)
	}
	lib := &StaticLibrary{books: make(map[int64]*staticBook, len(books))}
	for i := range books {
		lib.books[books[i].Info.ID] = &books[i]
	}
	return lib, nil
}

func (l *StaticLibrary) Info(_ context.Context, bookID int64) (*Info, error) {
	bk, ok := l.books[bookID]
	if !ok {
		return nil, fmt.Errorf("book %d: %w", bookID, ErrBookNotFound)
	}
	info := bk.Info
	return &info, nil
}

func (l *StaticLibrary) Chapter(_ context.Context, bookID int64, number ChapterNumber) (*Chapter, error) {
	bk, ok := l.books[bookID]
	if !ok {
		return nil, fmt.Errorf("book %d: %w", bookID, ErrBookNotFound)
	}
	for i := range bk.Chapters {
		if bk.Chapters[i].Number.Equal(number) {
			ch := bk.Chapters[i]
			return &ch, nil
		}
	}
	return nil, fmt.Errorf("chapter %s: %w", number, ErrChapterNotFound)
}
