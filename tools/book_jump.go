package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/petasbytes/book-tutor/book"
)

type BookJumpInput struct {
	Chapter      book.ChapterNumber `json:"chapter" jsonschema_description:"The chapter number to navigate to."`
	SectionTitle string             `json:"section_title,omitempty" jsonschema_description:"Optional section title within the chapter."`
}

var bookJumpInputSchema = GenerateSchema[BookJumpInput]()

// NewBookJump returns the BookJump tool bound to one book. The model uses it
// to direct the student's attention to particular material.
func NewBookJump(bookID int64, lib book.Library) Definition {
	return Definition{
		Name: "BookJump",
		Description: "Use this tool to navigate to a specific chapter or section in the book " +
			"when you need the student to read particular content. It helps direct the " +
			"student's attention to the relevant material.",
		InputSchema: bookJumpInputSchema,
		Function: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in BookJumpInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", fmt.Errorf("invalid BookJump arguments: %w", err)
			}
			ch, err := lib.Chapter(ctx, bookID, in.Chapter)
			if err != nil {
				return "", err
			}
			section := ""
			if in.SectionTitle != "" {
				section = " #" + in.SectionTitle
			}
			return fmt.Sprintf("Jumped to %s %s%s", ch.Number, ch.Name, section), nil
		},
	}
}
