package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/petasbytes/book-tutor/book"
)

type GetChapterInput struct {
	Chapter book.ChapterNumber `json:"chapter" jsonschema_description:"Chapter number in the form '1.2.3.' identifying the chapter to fetch."`
}

var getChapterInputSchema = GenerateSchema[GetChapterInput]()

// NewGetChapter returns the GetChapterContent tool bound to one book.
// The model calls it before starting to teach a chapter.
func NewGetChapter(bookID int64, lib book.Library) Definition {
	return Definition{
		Name: "GetChapterContent",
		Description: "Query the content of a chapter from the book. " +
			"Before starting to teach a new chapter, use this tool to get the content of this chapter.",
		InputSchema: getChapterInputSchema,
		Function: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in GetChapterInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", fmt.Errorf("invalid GetChapterContent arguments: %w", err)
			}
			ch, err := lib.Chapter(ctx, bookID, in.Chapter)
			if err != nil {
				return "", err
			}
			b, err := json.Marshal(ch)
			if err != nil {
				return "", err
			}
			return string(b), nil
		},
	}
}
